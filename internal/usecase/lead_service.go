package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cablecom/leads-api/internal/entity"
)

// SubmitLeadInput is the public contact form payload.
type SubmitLeadInput struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	Company     string `json:"company"`
	Service     string `json:"service" validate:"required,service_slug"`
	ProjectType string `json:"projectType"`
	Timeline    string `json:"timeline"`
	Budget      string `json:"budget"`
	Message     string `json:"message" validate:"required"`
}

func (in *SubmitLeadInput) trim() {
	for _, f := range []*string{
		&in.Name, &in.Email, &in.Phone, &in.Company, &in.Service,
		&in.ProjectType, &in.Timeline, &in.Budget, &in.Message,
	} {
		*f = strings.TrimSpace(*f)
	}
}

type UpdateLeadStatusInput struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

// LeadService validates and orchestrates lead intake and the admin pipeline.
// Everything except SubmitLead requires a session in the context.
type LeadService struct {
	Repo       entity.LeadRepositoryInterface
	Dispatcher LeadNotificationDispatcher
	Policy     entity.TransitionPolicy
	Log        *zap.Logger

	validate *validator.Validate
}

func NewLeadService(repo entity.LeadRepositoryInterface, dispatcher LeadNotificationDispatcher, log *zap.Logger) *LeadService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LeadService{
		Repo:       repo,
		Dispatcher: dispatcher,
		Policy:     entity.AllowAnyTransition,
		Log:        log,
		validate:   NewValidator(),
	}
}

// SubmitLead persists the lead and hands it to the dispatcher. The returned id
// never depends on notification delivery.
func (s *LeadService) SubmitLead(ctx context.Context, in SubmitLeadInput) (int64, error) {
	in.trim()
	if err := s.validate.Struct(in); err != nil {
		return 0, firstValidationError(err)
	}

	lead := &entity.Lead{
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Company:     in.Company,
		Service:     in.Service,
		ProjectType: in.ProjectType,
		Timeline:    in.Timeline,
		Budget:      in.Budget,
		Message:     in.Message,
	}
	if err := s.Repo.Create(ctx, lead); err != nil {
		return 0, storageError("Failed to submit lead. Please try again.", err)
	}

	s.Log.Info("lead submitted", zap.Int64("lead_id", lead.ID), zap.String("service", lead.Service))

	if s.Dispatcher != nil {
		s.Dispatcher.Dispatch(*lead)
	}
	return lead.ID, nil
}

func (s *LeadService) ListLeads(ctx context.Context) ([]entity.Lead, error) {
	if err := requireSession(ctx); err != nil {
		return nil, err
	}
	leads, err := s.Repo.FindAll(ctx)
	if err != nil {
		return nil, storageError("Failed to fetch leads", err)
	}
	return leads, nil
}

func (s *LeadService) GetLead(ctx context.Context, id int64) (*entity.Lead, error) {
	if err := requireSession(ctx); err != nil {
		return nil, err
	}
	lead, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, storageError("Failed to fetch lead", err)
	}
	return lead, nil
}

// SetLeadStatus overwrites status and notes. A nil Notes clears them.
func (s *LeadService) SetLeadStatus(ctx context.Context, id int64, in UpdateLeadStatusInput) error {
	if err := requireSession(ctx); err != nil {
		return err
	}

	raw := strings.TrimSpace(in.Status)
	if raw == "" {
		return ValidationError{Field: "status", Message: "Status is required"}
	}
	to, ok := entity.ParseLeadStatus(raw)
	if !ok {
		return ValidationError{Field: "status", Message: statusListMessage()}
	}

	current, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return ErrLeadNotFound
	}
	if err != nil {
		return storageError("Failed to update lead", err)
	}

	policy := s.Policy
	if policy == nil {
		policy = entity.AllowAnyTransition
	}
	if !policy(current.Status, to) {
		return ValidationError{Field: "status", Message: "Cannot move lead from " + string(current.Status) + " to " + string(to)}
	}

	var notes string
	if in.Notes != nil {
		notes = *in.Notes
	}

	err = s.Repo.UpdateStatus(ctx, id, to, notes)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return ErrLeadNotFound
	}
	if err != nil {
		return storageError("Failed to update lead", err)
	}

	s.Log.Info("lead status updated",
		zap.Int64("lead_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(to)),
	)
	return nil
}

func (s *LeadService) GetStats(ctx context.Context) (entity.LeadStats, error) {
	if err := requireSession(ctx); err != nil {
		return entity.LeadStats{}, err
	}
	stats, err := s.Repo.Stats(ctx)
	if err != nil {
		return entity.LeadStats{}, storageError("Failed to fetch statistics", err)
	}
	return stats, nil
}
