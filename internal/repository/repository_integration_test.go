//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"hub-notifier/internal/domain"
	"hub-notifier/internal/repository"
	"hub-notifier/migrations"
	"hub-notifier/pkg/migration"

	"github.com/docker/docker/client"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type RepositorySuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	pool        *pgxpool.Pool
	hubs        *repository.HubRepository
	devices     *repository.DeviceRepository

	hubID     string
	senderID  string
	memberBID string
	memberCID string
	projectID string
	bugID     string
}

func (s *RepositorySuite) SetupSuite() {
	s.ctx = context.Background()

	pgContainer, err := postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("hub_test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(s.T(), err)
	s.pgContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	s.pool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err)

	m := migration.NewMigrator(migration.Config{MigrationsFS: migrations.FS}, s.pool, zerolog.Nop())
	require.NoError(s.T(), m.Up())

	s.hubs = repository.NewHubRepository(s.pool, zap.NewNop())
	s.devices = repository.NewDeviceRepository(s.pool, zap.NewNop())

	s.seed()
}

func (s *RepositorySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
}

func (s *RepositorySuite) seed() {
	s.hubID = uuid.NewString()
	s.senderID = uuid.NewString()
	s.memberBID = uuid.NewString()
	s.memberCID = uuid.NewString()
	s.projectID = uuid.NewString()
	s.bugID = uuid.NewString()

	exec := func(sql string, args ...any) {
		_, err := s.pool.Exec(s.ctx, sql, args...)
		require.NoError(s.T(), err)
	}

	exec(`INSERT INTO hub_members (user_id, hub_id, display_name) VALUES ($1, $2, 'Amina')`, s.senderID, s.hubID)
	exec(`INSERT INTO hub_members (user_id, hub_id, display_name) VALUES ($1, $2, 'Bilal')`, s.memberBID, s.hubID)
	exec(`INSERT INTO hub_members (user_id, hub_id) VALUES ($1, $2)`, s.memberCID, s.hubID)
	// участник другого хаба
	exec(`INSERT INTO hub_members (user_id, hub_id) VALUES ($1, $2)`, uuid.NewString(), uuid.NewString())

	exec(`INSERT INTO projects (id, name) VALUES ($1, 'Alpha')`, s.projectID)
	exec(`INSERT INTO bugs (id, title, project_id, status) VALUES ($1, 'Crash on login', $2, 'in_progress')`, s.bugID, s.projectID)

	exec(`INSERT INTO user_devices (user_id, device_token) VALUES ($1, 'tok-b-1'), ($1, 'tok-b-2'), ($2, 'tok-c-1'), ($3, 'tok-a-1')`,
		s.memberBID, s.memberCID, s.senderID)
}

func (s *RepositorySuite) TestMembershipByUserID() {
	m, err := s.hubs.MembershipByUserID(s.ctx, s.senderID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.hubID, m.HubID)
	require.NotNil(s.T(), m.DisplayName)
	assert.Equal(s.T(), "Amina", *m.DisplayName)

	m, err = s.hubs.MembershipByUserID(s.ctx, s.memberCID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), m.DisplayName)

	_, err = s.hubs.MembershipByUserID(s.ctx, uuid.NewString())
	assert.ErrorIs(s.T(), err, domain.ErrNotFound)

	_, err = s.hubs.MembershipByUserID(s.ctx, "not-a-uuid")
	assert.ErrorIs(s.T(), err, domain.ErrNotFound)
}

func (s *RepositorySuite) TestMembershipByID() {
	sender, err := s.hubs.MembershipByUserID(s.ctx, s.memberBID)
	require.NoError(s.T(), err)

	m, err := s.hubs.MembershipByID(s.ctx, sender.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.memberBID, m.UserID)

	_, err = s.hubs.MembershipByID(s.ctx, uuid.NewString())
	assert.ErrorIs(s.T(), err, domain.ErrNotFound)
}

func (s *RepositorySuite) TestHubMemberIDs() {
	all, err := s.hubs.HubMemberIDs(s.ctx, s.hubID)
	require.NoError(s.T(), err)
	assert.ElementsMatch(s.T(), []string{s.senderID, s.memberBID, s.memberCID}, all)

	others, err := s.hubs.HubMemberIDsExcept(s.ctx, s.hubID, s.senderID)
	require.NoError(s.T(), err)
	assert.ElementsMatch(s.T(), []string{s.memberBID, s.memberCID}, others)
}

func (s *RepositorySuite) TestProjectAndBug() {
	p, err := s.hubs.ProjectByID(s.ctx, s.projectID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Alpha", p.Name)

	b, err := s.hubs.BugByID(s.ctx, s.bugID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Crash on login", b.Title)
	assert.Equal(s.T(), s.projectID, b.ProjectID)
	assert.Equal(s.T(), "in_progress", b.Status)

	_, err = s.hubs.ProjectByID(s.ctx, uuid.NewString())
	assert.ErrorIs(s.T(), err, domain.ErrNotFound)
	_, err = s.hubs.BugByID(s.ctx, "42")
	assert.ErrorIs(s.T(), err, domain.ErrNotFound)
}

func (s *RepositorySuite) TestTokensByUserIDs() {
	tokens, err := s.devices.TokensByUserIDs(s.ctx, []string{s.memberBID, s.memberCID})
	require.NoError(s.T(), err)
	assert.ElementsMatch(s.T(), []string{"tok-b-1", "tok-b-2", "tok-c-1"}, tokens)

	tokens, err = s.devices.TokensByUserIDs(s.ctx, nil)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), tokens)
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		t.Skipf("Docker client init error: %v", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		t.Skipf("Docker daemon is not running or accessible: %v", err)
	}
	cli.Close()

	suite.Run(t, new(RepositorySuite))
}
