package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/openbooks/ledgercore/internal/apperrors"
	"github.com/openbooks/ledgercore/internal/core/coa"
	"github.com/openbooks/ledgercore/internal/core/domain"
	portsrepo "github.com/openbooks/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledgercore/internal/core/ports/services"
	"github.com/openbooks/ledgercore/internal/dto"
	"github.com/openbooks/ledgercore/internal/platform/logging"
)

// accountService manages the chart of accounts.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	clock       portssvc.Clock
	validate    *validator.Validate
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, clock portssvc.Clock, validate *validator.Validate) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		clock:       clock,
		validate:    validate,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new account after deriving its level from the code
// and validating it against its parent in the hierarchy.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor domain.Actor) (*domain.Account, error) {
	logger := logging.FromContext(ctx)

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	level := coa.LevelForCode(req.Code)
	if level == domain.LevelInvalid {
		return nil, fmt.Errorf("%w: code %q is not a valid hierarchy code", apperrors.ErrValidation, req.Code)
	}

	if existing, err := s.accountRepo.FindAccountByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, req.Code)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing account: %w", err)
	}

	now := s.clock.Now()
	account := domain.Account{
		AccountID:      uuid.NewString(),
		Code:           req.Code,
		Name:           req.Name,
		Level:          level,
		Nature:         req.Nature,
		Kind:           req.Kind,
		AllowsPostings: req.AllowsPostings,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.ActorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.ActorID,
		},
	}

	var parent *domain.Account
	if level > domain.LevelClass {
		parentCode := coa.ParentCode(req.Code)
		p, err := s.accountRepo.FindAccountByCode(ctx, parentCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s does not exist", apperrors.ErrValidation, parentCode)
			}
			return nil, fmt.Errorf("failed to load parent account %s: %w", parentCode, err)
		}
		parent = p
		account.ParentAccountID = p.AccountID
	}

	if err := coa.ValidateHierarchy(account, parent); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("failed to save account", slog.String("code", req.Code), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("account created", slog.String("code", account.Code), slog.String("kind", string(account.Kind)))
	return &account, nil
}

// GetAccountByCode retrieves an account by its hierarchical code.
func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", code, err)
	}
	return account, nil
}

// ListAccounts retrieves a paginated list of accounts ordered by code.
func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount updates an account's name and posting flags. The code, level
// and hierarchy linkage are fixed at creation.
func (s *accountService) UpdateAccount(ctx context.Context, code string, req dto.UpdateAccountRequest, actor domain.Actor) (*domain.Account, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", code, err)
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.AllowsPostings != nil {
		if *req.AllowsPostings && account.Level != domain.LevelAuxiliary {
			return nil, fmt.Errorf("%w: only auxiliary accounts accept postings", apperrors.ErrValidation)
		}
		account.AllowsPostings = *req.AllowsPostings
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	account.LastUpdatedAt = s.clock.Now()
	account.LastUpdatedBy = actor.ActorID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account %s: %w", code, err)
	}
	return account, nil
}

// DeactivateAccount marks an account as inactive. History referencing it stays
// untouched; it just stops accepting new postings.
func (s *accountService) DeactivateAccount(ctx context.Context, code string, actor domain.Actor) error {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to find account %s: %w", code, err)
	}
	if err := s.accountRepo.DeactivateAccount(ctx, account.AccountID, actor.ActorID, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", code, err)
	}
	logging.FromContext(ctx).Info("account deactivated", slog.String("code", code))
	return nil
}
