package repository

import (
	"context"
	"errors"
	"fmt"

	"hub-notifier/internal/domain"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	getMembershipByUserIDQuery = `
		SELECT id, user_id, hub_id, display_name
		FROM hub_members
		WHERE user_id = $1
		LIMIT 1`
	getMembershipByIDQuery = `
		SELECT id, user_id, hub_id, display_name
		FROM hub_members
		WHERE id = $1`
	listHubMemberIDsQuery = `
		SELECT user_id
		FROM hub_members
		WHERE hub_id = $1`
	listHubMemberIDsExceptQuery = `
		SELECT user_id
		FROM hub_members
		WHERE hub_id = $1 AND user_id <> $2`
	getProjectByIDQuery = `SELECT id, name FROM projects WHERE id = $1`
	getBugByIDQuery     = `SELECT id, title, project_id, status FROM bugs WHERE id = $1`
)

// HubRepository читает участников хаба, проекты и баги.
type HubRepository struct {
	db     DBTX
	logger *zap.Logger
}

func NewHubRepository(db DBTX, logger *zap.Logger) *HubRepository {
	return &HubRepository{
		db:     db,
		logger: logger.Named("hub_repo"),
	}
}

// MembershipByUserID возвращает строку hub_members пользователя или domain.ErrNotFound.
func (r *HubRepository) MembershipByUserID(ctx context.Context, userID string) (*domain.Membership, error) {
	if !isUUID(userID) {
		return nil, domain.ErrNotFound
	}
	var m domain.Membership
	if err := pgxscan.Get(ctx, r.db, &m, getMembershipByUserIDQuery, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get membership by user id", zap.String("userID", userID), zap.Error(err))
		return nil, &domain.DataLayerError{Op: fmt.Sprintf("getting membership for user %s", userID), Err: err}
	}
	return &m, nil
}

// MembershipByID возвращает строку hub_members по ее id или domain.ErrNotFound.
func (r *HubRepository) MembershipByID(ctx context.Context, id string) (*domain.Membership, error) {
	if !isUUID(id) {
		return nil, domain.ErrNotFound
	}
	var m domain.Membership
	if err := pgxscan.Get(ctx, r.db, &m, getMembershipByIDQuery, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get membership by id", zap.String("memberID", id), zap.Error(err))
		return nil, &domain.DataLayerError{Op: fmt.Sprintf("getting membership %s", id), Err: err}
	}
	return &m, nil
}

// HubMemberIDs возвращает user_id всех участников хаба.
func (r *HubRepository) HubMemberIDs(ctx context.Context, hubID string) ([]string, error) {
	ids := make([]string, 0)
	if err := pgxscan.Select(ctx, r.db, &ids, listHubMemberIDsQuery, hubID); err != nil {
		r.logger.Error("Failed to list hub members", zap.String("hubID", hubID), zap.Error(err))
		return nil, &domain.DataLayerError{Op: fmt.Sprintf("listing members of hub %s", hubID), Err: err}
	}
	return ids, nil
}

// HubMemberIDsExcept возвращает user_id участников хаба без указанного пользователя.
func (r *HubRepository) HubMemberIDsExcept(ctx context.Context, hubID, userID string) ([]string, error) {
	ids := make([]string, 0)
	if err := pgxscan.Select(ctx, r.db, &ids, listHubMemberIDsExceptQuery, hubID, userID); err != nil {
		r.logger.Error("Failed to list hub members",
			zap.String("hubID", hubID),
			zap.String("exceptUserID", userID),
			zap.Error(err),
		)
		return nil, &domain.DataLayerError{Op: fmt.Sprintf("listing members of hub %s", hubID), Err: err}
	}
	return ids, nil
}

// ProjectByID возвращает проект или domain.ErrNotFound.
func (r *HubRepository) ProjectByID(ctx context.Context, id string) (*domain.Project, error) {
	if !isUUID(id) {
		return nil, domain.ErrNotFound
	}
	var p domain.Project
	if err := pgxscan.Get(ctx, r.db, &p, getProjectByIDQuery, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get project", zap.String("projectID", id), zap.Error(err))
		return nil, &domain.DataLayerError{Op: fmt.Sprintf("getting project %s", id), Err: err}
	}
	return &p, nil
}

// BugByID возвращает баг или domain.ErrNotFound.
func (r *HubRepository) BugByID(ctx context.Context, id string) (*domain.Bug, error) {
	if !isUUID(id) {
		return nil, domain.ErrNotFound
	}
	var b domain.Bug
	if err := pgxscan.Get(ctx, r.db, &b, getBugByIDQuery, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get bug", zap.String("bugID", id), zap.Error(err))
		return nil, &domain.DataLayerError{Op: fmt.Sprintf("getting bug %s", id), Err: err}
	}
	return &b, nil
}

// Ключи таблиц - uuid; строка другого вида не может совпасть ни с одной записью.
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
