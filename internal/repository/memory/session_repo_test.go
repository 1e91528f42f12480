package memory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fireenrich/internal/domain"
	"fireenrich/internal/repository/memory"
)

func newSession(clientID uuid.UUID) *domain.WizardSession {
	return &domain.WizardSession{ID: uuid.New(), ClientID: clientID, Step: domain.StepUpload}
}

func TestSessionRepo_CreateAndGet(t *testing.T) {
	repo := memory.NewSessionRepo()
	ctx := context.Background()
	client := uuid.New()
	s := newSession(client)

	require.NoError(t, repo.Create(ctx, s))
	assert.False(t, s.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, client, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, domain.StepUpload, got.Step)
}

func TestSessionRepo_GetByID_OtherClient(t *testing.T) {
	repo := memory.NewSessionRepo()
	ctx := context.Background()
	s := newSession(uuid.New())
	require.NoError(t, repo.Create(ctx, s))

	_, err := repo.GetByID(ctx, uuid.New(), s.ID)

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepo_ReturnsCopies(t *testing.T) {
	repo := memory.NewSessionRepo()
	ctx := context.Background()
	client := uuid.New()
	s := newSession(client)
	s.Fields = []domain.EnrichmentField{{Name: "industry"}}
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.GetByID(ctx, client, s.ID)
	require.NoError(t, err)
	got.Fields[0].Name = "changed"
	got.Step = domain.StepSetup

	again, err := repo.GetByID(ctx, client, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "industry", again.Fields[0].Name)
	assert.Equal(t, domain.StepUpload, again.Step)
}

func TestSessionRepo_Update(t *testing.T) {
	repo := memory.NewSessionRepo()
	ctx := context.Background()
	client := uuid.New()
	s := newSession(client)
	require.NoError(t, repo.Create(ctx, s))

	s.Step = domain.StepSetup
	s.EmailColumn = "email"
	require.NoError(t, repo.Update(ctx, s))

	got, err := repo.GetByID(ctx, client, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepSetup, got.Step)
	assert.Equal(t, "email", got.EmailColumn)
}

func TestSessionRepo_Update_Unknown(t *testing.T) {
	repo := memory.NewSessionRepo()

	err := repo.Update(context.Background(), newSession(uuid.New()))

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepo_Delete(t *testing.T) {
	repo := memory.NewSessionRepo()
	ctx := context.Background()
	client := uuid.New()
	s := newSession(client)
	require.NoError(t, repo.Create(ctx, s))

	require.NoError(t, repo.Delete(ctx, client, s.ID))

	_, err := repo.GetByID(ctx, client, s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, client, s.ID), domain.ErrSessionNotFound)
}
