package port

import (
	"context"

	"github.com/google/uuid"
)

// CredentialStore keeps client-supplied API keys, one namespace per client.
// Get reports ok=false when nothing is stored under name.
type CredentialStore interface {
	Get(ctx context.Context, clientID uuid.UUID, name string) (value string, ok bool, err error)
	Set(ctx context.Context, clientID uuid.UUID, name, value string) error
	Delete(ctx context.Context, clientID uuid.UUID, names ...string) error
}
