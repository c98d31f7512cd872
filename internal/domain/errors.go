package domain

import "errors"

var (
	// ErrUnauthorized - вызывающий не определен (нет или невалиден токен).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMembershipNotFound - у отправителя нет строки в hub_members.
	ErrMembershipNotFound = errors.New("sender not found in any hub")
	// ErrInvalidEvent - неизвестное имя функции.
	ErrInvalidEvent = errors.New("invalid function name")
	// ErrInvalidParams - отсутствует или некорректен обязательный параметр события.
	ErrInvalidParams = errors.New("invalid params")
	// ErrNotFound - запись не найдена в хранилище.
	ErrNotFound = errors.New("resource not found")
)

// DataLayerError - сбой запроса к хранилищу. Op описывает операцию для логов,
// клиенту уходит только текст Err.
type DataLayerError struct {
	Op  string
	Err error
}

func (e *DataLayerError) Error() string {
	return "db error " + e.Op + ": " + e.Err.Error()
}

func (e *DataLayerError) Unwrap() error {
	return e.Err
}
