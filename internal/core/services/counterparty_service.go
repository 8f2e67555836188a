package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/openbooks/ledgercore/internal/apperrors"
	"github.com/openbooks/ledgercore/internal/core/domain"
	portsrepo "github.com/openbooks/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledgercore/internal/core/ports/services"
	"github.com/openbooks/ledgercore/internal/core/validation"
	"github.com/openbooks/ledgercore/internal/dto"
	"github.com/openbooks/ledgercore/internal/platform/logging"
)

// counterpartyService manages the registry of third parties.
type counterpartyService struct {
	counterpartyRepo portsrepo.CounterpartyRepositoryFacade
	clock            portssvc.Clock
	validate         *validator.Validate
}

// NewCounterpartyService creates a new counterparty service.
func NewCounterpartyService(counterpartyRepo portsrepo.CounterpartyRepositoryFacade, clock portssvc.Clock, validate *validator.Validate) portssvc.CounterpartySvcFacade {
	return &counterpartyService{
		counterpartyRepo: counterpartyRepo,
		clock:            clock,
		validate:         validate,
	}
}

var _ portssvc.CounterpartySvcFacade = (*counterpartyService)(nil)

// CreateCounterparty registers a counterparty. The tax id is cleaned of
// formatting and the check digit recomputed from scratch.
func (s *counterpartyService) CreateCounterparty(ctx context.Context, req dto.CreateCounterpartyRequest, actor domain.Actor) (*domain.Counterparty, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	taxID := validation.CleanTaxID(req.TaxID)
	checkDigit, err := validation.ComputeCheckDigit(taxID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	if existing, err := s.counterpartyRepo.FindCounterpartyByTaxID(ctx, taxID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: counterparty with tax id %s", apperrors.ErrDuplicate, validation.MaskTaxID(taxID))
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing counterparty: %w", err)
	}

	now := s.clock.Now()
	counterparty := domain.Counterparty{
		CounterpartyID: uuid.NewString(),
		TaxID:          taxID,
		CheckDigit:     checkDigit,
		LegalName:      req.LegalName,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.ActorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.ActorID,
		},
	}
	if err := s.counterpartyRepo.SaveCounterparty(ctx, counterparty); err != nil {
		return nil, fmt.Errorf("failed to save counterparty: %w", err)
	}

	logging.FromContext(ctx).Info("counterparty registered",
		slog.String("tax_id", validation.MaskTaxID(taxID)),
		slog.String("legal_name", req.LegalName))
	return &counterparty, nil
}

// GetCounterpartyByTaxID retrieves a counterparty by its bare tax id.
func (s *counterpartyService) GetCounterpartyByTaxID(ctx context.Context, taxID string) (*domain.Counterparty, error) {
	counterparty, err := s.counterpartyRepo.FindCounterpartyByTaxID(ctx, validation.CleanTaxID(taxID))
	if err != nil {
		return nil, fmt.Errorf("failed to find counterparty: %w", err)
	}
	return counterparty, nil
}

// ListCounterparties retrieves a paginated list ordered by legal name.
func (s *counterpartyService) ListCounterparties(ctx context.Context, limit int, offset int) ([]domain.Counterparty, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	counterparties, err := s.counterpartyRepo.ListCounterparties(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list counterparties: %w", err)
	}
	return counterparties, nil
}

// DeactivateCounterparty marks a counterparty as inactive.
func (s *counterpartyService) DeactivateCounterparty(ctx context.Context, taxID string, actor domain.Actor) error {
	counterparty, err := s.counterpartyRepo.FindCounterpartyByTaxID(ctx, validation.CleanTaxID(taxID))
	if err != nil {
		return fmt.Errorf("failed to find counterparty: %w", err)
	}
	if err := s.counterpartyRepo.DeactivateCounterparty(ctx, counterparty.CounterpartyID, actor.ActorID, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to deactivate counterparty: %w", err)
	}
	return nil
}
