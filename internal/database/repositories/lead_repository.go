package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DMHCAIT/crm-backend-sub002/internal/database"
)

const (
	defaultLeadLimit = 50
	maxLeadLimit     = 200
)

const leadColumns = `id, full_name, email, phone, course, source, status, assigned_to, notes, created_at, updated_at`

type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *database.Lead) error {
	query := `
        INSERT INTO leads (id, full_name, email, phone, course, source, status, assigned_to, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.db.ExecContext(ctx, query, lead.ID, lead.FullName, lead.Email, lead.Phone,
		lead.Course, lead.Source, lead.Status, lead.AssignedTo, lead.Notes)
	return err
}

// GetByID retrieves a lead; sql.ErrNoRows when it does not exist
func (r *LeadRepository) GetByID(ctx context.Context, id string) (*database.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	var lead database.Lead
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&lead.ID, &lead.FullName, &lead.Email, &lead.Phone, &lead.Course, &lead.Source,
		&lead.Status, &lead.AssignedTo, &lead.Notes, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// List retrieves leads matching filter, newest first
func (r *LeadRepository) List(ctx context.Context, filter database.LeadFilter) ([]database.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	args := []interface{}{}

	if filter.AssignedTo != "" {
		args = append(args, filter.AssignedTo)
		query += fmt.Sprintf(" AND assigned_to = $%d", len(args))
	}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLeadLimit
	}
	if limit > maxLeadLimit {
		limit = maxLeadLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []database.Lead{}
	for rows.Next() {
		var lead database.Lead
		err := rows.Scan(
			&lead.ID, &lead.FullName, &lead.Email, &lead.Phone, &lead.Course, &lead.Source,
			&lead.Status, &lead.AssignedTo, &lead.Notes, &lead.CreatedAt, &lead.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

// UpdateStatus sets a lead's status; sql.ErrNoRows when the lead does not exist
func (r *LeadRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE leads SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	return execOne(ctx, r.db, query, status, id)
}

// Delete removes a lead; sql.ErrNoRows when the lead does not exist
func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, `DELETE FROM leads WHERE id = $1`, id)
}

func execOne(ctx context.Context, db *sql.DB, query string, args ...interface{}) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
