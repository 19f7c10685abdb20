package records

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by the repository when no row matches.
var ErrNotFound = errors.New("record item not found")

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const recordCols = `id, patient_id, category, doctor_id, fields, created_at, updated_at`

func scanRecord(row pgx.Row) (*RecordItem, error) {
	var item RecordItem
	err := row.Scan(&item.ID, &item.PatientID, &item.Category, &item.DoctorID,
		&item.Fields, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &item, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*RecordItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+recordCols+` FROM medical_record
		WHERE patient_id = $1 ORDER BY created_at ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*RecordItem
	for rows.Next() {
		item, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*RecordItem, error) {
	return scanRecord(r.pool.QueryRow(ctx, `SELECT `+recordCols+` FROM medical_record WHERE id = $1`, id))
}

func (r *repoPG) Create(ctx context.Context, item *RecordItem) error {
	item.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO medical_record (id, patient_id, category, doctor_id, fields)
		VALUES ($1,$2,$3,$4,$5)`,
		item.ID, item.PatientID, item.Category, item.DoctorID, item.Fields)
	return err
}

func (r *repoPG) Update(ctx context.Context, item *RecordItem) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE medical_record SET fields=$2, updated_at=NOW() WHERE id = $1`,
		item.ID, item.Fields)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medical_record WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
