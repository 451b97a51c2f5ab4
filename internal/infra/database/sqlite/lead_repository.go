package sqlite

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
	now := time.Now().UTC()
	ts := formatTime(now)

	query := `
		INSERT INTO leads (
			name, email, phone, company, service,
			project_type, timeline, budget, message, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.DB.ExecContext(ctx, query,
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
		ts,
		ts,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}

	// Round-trip through the stored format so the caller sees what was persisted.
	stored, _ := parseTime(ts)
	lead.ID = id
	lead.Status = entity.LeadStatusNew
	lead.CreatedAt = stored
	lead.UpdatedAt = stored
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
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	return lead, err
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id int64, status entity.LeadStatus, notes string) error {
	query := `UPDATE leads SET status = ?, notes = ?, updated_at = ? WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, query, string(status), nullString(notes), formatTime(time.Now()), id)
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
			COUNT(CASE WHEN status = 'new' THEN 1 END),
			COUNT(CASE WHEN status = 'contacted' THEN 1 END),
			COUNT(CASE WHEN status = 'qualified' THEN 1 END),
			COUNT(CASE WHEN status = 'closed' THEN 1 END)
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
		status, createdAt, updatedAt                  string
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
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lead.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if lead.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	lead.Company = company.String
	lead.ProjectType = projectType.String
	lead.Timeline = timeline.String
	lead.Budget = budget.String
	lead.Notes = notes.String
	lead.Status = entity.LeadStatus(status)
	return &lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
