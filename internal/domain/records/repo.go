package records

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for record items.
type Repository interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*RecordItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*RecordItem, error)
	Create(ctx context.Context, item *RecordItem) error
	Update(ctx context.Context, item *RecordItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}
