package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cablecom/leads-api/internal/entity"
)

const leadColumns = `id, name, email, phone, company, service, project_type, timeline, budget,
	message, status, notes, created_at, updated_at`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	now := time.Now().UTC().Truncate(time.Microsecond)

	query := `
		INSERT INTO leads (
			name, email, phone, company, service,
			project_type, timeline, budget, message, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id
	`

	err := r.DB.QueryRowContext(ctx, query,
		lead.Name,
		lead.Email,
		lead.Phone,
		nullString(lead.Company),
		lead.Service,
		nullString(lead.ProjectType),
		nullString(lead.Timeline),
		nullString(lead.Budget),
		lead.Message,
		string(entity.LeadStatusNew),
		now,
	).Scan(&lead.ID)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}

	lead.Status = entity.LeadStatusNew
	lead.CreatedAt = now
	lead.UpdatedAt = now
	return nil
}

func (r *LeadRepository) FindAll(ctx context.Context) ([]entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := []entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	return lead, err
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id int64, status entity.LeadStatus, notes string) error {
	query := `UPDATE leads SET status = $1, notes = $2, updated_at = $3 WHERE id = $4`
	res, err := r.DB.ExecContext(ctx, query, string(status), nullString(notes), time.Now().UTC().Truncate(time.Microsecond), id)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) Stats(ctx context.Context) (entity.LeadStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'new'),
			COUNT(*) FILTER (WHERE status = 'contacted'),
			COUNT(*) FILTER (WHERE status = 'qualified'),
			COUNT(*) FILTER (WHERE status = 'closed')
		FROM leads
	`
	var s entity.LeadStats
	err := r.DB.QueryRowContext(ctx, query).Scan(&s.Total, &s.New, &s.Contacted, &s.Qualified, &s.Closed)
	if err != nil {
		return entity.LeadStats{}, fmt.Errorf("lead stats: %w", err)
	}
	return s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(row scanner) (*entity.Lead, error) {
	var (
		lead                                          entity.Lead
		company, projectType, timeline, budget, notes sql.NullString
		status                                        string
	)
	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&company,
		&lead.Service,
		&projectType,
		&timeline,
		&budget,
		&lead.Message,
		&status,
		&notes,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	lead.Company = company.String
	lead.ProjectType = projectType.String
	lead.Timeline = timeline.String
	lead.Budget = budget.String
	lead.Notes = notes.String
	lead.Status = entity.LeadStatus(status)
	lead.CreatedAt = lead.CreatedAt.UTC()
	lead.UpdatedAt = lead.UpdatedAt.UTC()
	return &lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
