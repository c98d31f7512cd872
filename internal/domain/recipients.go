package domain

// RecipientMode определяет, кому уходит уведомление.
type RecipientMode int

const (
	// RecipientsAllExceptSender - все участники хаба, кроме отправителя (по умолчанию).
	RecipientsAllExceptSender RecipientMode = iota
	// RecipientsSingle - ровно один пользователь (или никто, если цель не найдена).
	RecipientsSingle
	// RecipientsEntireHub - весь хаб, включая отправителя.
	RecipientsEntireHub
)

func (m RecipientMode) String() string {
	switch m {
	case RecipientsAllExceptSender:
		return "all_except_sender"
	case RecipientsSingle:
		return "single"
	case RecipientsEntireHub:
		return "entire_hub"
	default:
		return "unknown"
	}
}

// Recipients - выбор получателей, который возвращает каждая ветка роутера событий.
type Recipients struct {
	Mode   RecipientMode
	UserID string // только для RecipientsSingle; пусто = никому
}

// DefaultRecipients - все участники хаба, кроме отправителя.
func DefaultRecipients() Recipients {
	return Recipients{Mode: RecipientsAllExceptSender}
}

// SingleRecipient - только указанный пользователь. Пустой userID означает "никому".
func SingleRecipient(userID string) Recipients {
	return Recipients{Mode: RecipientsSingle, UserID: userID}
}

// EntireHub - все участники хаба вместе с отправителем.
func EntireHub() Recipients {
	return Recipients{Mode: RecipientsEntireHub}
}
