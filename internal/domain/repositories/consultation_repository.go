package repositories

import (
	"context"

	"github.com/consilium-health/consilium/internal/domain/entities"
)

// ConsultationRepository defines the interface for consultation persistence.
type ConsultationRepository interface {
	Create(ctx context.Context, consultation *entities.Consultation) error
	GetByID(ctx context.Context, id string) (*entities.Consultation, error)
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*entities.Consultation, error)
}
