package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/consilium-health/consilium/internal/domain/entities"
	"github.com/consilium-health/consilium/internal/domain/repositories"
	"github.com/consilium-health/consilium/internal/infrastructure/clients/postgres"
	apperrors "github.com/consilium-health/consilium/pkg/errors"
)

// ConsultationAdapter implements consultation persistence in Postgres.
type ConsultationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewConsultationAdapter creates a new consultation adapter.
func NewConsultationAdapter(client *postgres.Client) repositories.ConsultationRepository {
	return &ConsultationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a consultation record.
func (a *ConsultationAdapter) Create(ctx context.Context, consultation *entities.Consultation) error {
	if consultation == nil {
		return apperrors.NewInternalError("consultation is nil", fmt.Errorf("consultation is nil"))
	}

	record := goqu.Record{
		"id":                consultation.ID,
		"session_id":        sql.NullString{String: consultation.SessionID, Valid: consultation.SessionID != ""},
		"query":             consultation.Query,
		"primary_specialty": consultation.PrimarySpecialty,
		"urgency_level":     consultation.Urgency,
		"emergency_score":   consultation.EmergencyScore,
		"response":          consultation.Response,
		"created_at":        consultation.CreatedAt,
	}

	query, args, err := a.db.Insert("consultations").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build consultation insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create consultation", err)
	}

	return nil
}

// GetByID retrieves one consultation record.
func (a *ConsultationAdapter) GetByID(ctx context.Context, id string) (*entities.Consultation, error) {
	query, args, err := a.db.From("consultations").
		Select("id", "session_id", "query", "primary_specialty", "urgency_level", "emergency_score", "response", "created_at").
		Where(goqu.C("id").Eq(id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build consultation select query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)
	consultation, err := scanConsultation(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("consultation not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get consultation", err)
	}
	return consultation, nil
}

// ListBySession returns a session's consultations, newest first.
func (a *ConsultationAdapter) ListBySession(ctx context.Context, sessionID string, limit int) ([]*entities.Consultation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query, args, err := a.db.From("consultations").
		Select("id", "session_id", "query", "primary_specialty", "urgency_level", "emergency_score", "response", "created_at").
		Where(goqu.C("session_id").Eq(sessionID)).
		Order(goqu.C("created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build consultation list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list consultations", err)
	}
	defer rows.Close()

	var consultations []*entities.Consultation
	for rows.Next() {
		consultation, err := scanConsultation(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan consultation", err)
		}
		consultations = append(consultations, consultation)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate consultations", err)
	}
	return consultations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConsultation(row rowScanner) (*entities.Consultation, error) {
	var consultation entities.Consultation
	var sessionID sql.NullString
	err := row.Scan(
		&consultation.ID,
		&sessionID,
		&consultation.Query,
		&consultation.PrimarySpecialty,
		&consultation.Urgency,
		&consultation.EmergencyScore,
		&consultation.Response,
		&consultation.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	consultation.SessionID = sessionID.String
	return &consultation, nil
}
