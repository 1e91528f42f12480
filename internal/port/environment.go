package port

import (
	"context"

	"fireenrich/internal/domain"
)

// EnvironmentProbe reports which vendor keys the server is configured with.
type EnvironmentProbe interface {
	Status(ctx context.Context) (*domain.EnvironmentStatus, error)
}
