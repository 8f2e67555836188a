package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks/ledgercore/internal/apperrors"
	"github.com/openbooks/ledgercore/internal/core/domain"
	portsrepo "github.com/openbooks/ledgercore/internal/core/ports/repositories"
	"github.com/openbooks/ledgercore/internal/models"
	"github.com/openbooks/ledgercore/internal/utils/mapping"
)

const counterpartyColumns = `counterparty_id, tax_id, check_digit, legal_name, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxCounterpartyRepository struct {
	BaseRepository
}

// newPgxCounterpartyRepository creates a new repository for counterparty data.
func newPgxCounterpartyRepository(pool *pgxpool.Pool) portsrepo.CounterpartyRepositoryFacade {
	return &PgxCounterpartyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CounterpartyRepositoryFacade = (*PgxCounterpartyRepository)(nil)

func scanCounterparty(row pgx.Row) (*domain.Counterparty, error) {
	var m models.Counterparty
	err := row.Scan(
		&m.CounterpartyID, &m.TaxID, &m.CheckDigit, &m.LegalName, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan counterparty: %w", err)
	}
	cp := mapping.ToDomainCounterparty(m)
	return &cp, nil
}

// SaveCounterparty persists a new counterparty.
func (r *PgxCounterpartyRepository) SaveCounterparty(ctx context.Context, counterparty domain.Counterparty) error {
	m := mapping.ToModelCounterparty(counterparty)
	query := `
		INSERT INTO counterparties (counterparty_id, tax_id, check_digit, legal_name, is_active,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.CounterpartyID, m.TaxID, m.CheckDigit, m.LegalName, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: tax id already registered", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert counterparty: %w", err)
	}
	return nil
}

// FindCounterpartyByID retrieves a counterparty by its unique identifier.
func (r *PgxCounterpartyRepository) FindCounterpartyByID(ctx context.Context, counterpartyID string) (*domain.Counterparty, error) {
	query := fmt.Sprintf(`SELECT %s FROM counterparties WHERE counterparty_id = $1;`, counterpartyColumns)
	return scanCounterparty(r.Pool.QueryRow(ctx, query, counterpartyID))
}

// FindCounterpartyByTaxID retrieves a counterparty by its bare tax id.
func (r *PgxCounterpartyRepository) FindCounterpartyByTaxID(ctx context.Context, taxID string) (*domain.Counterparty, error) {
	query := fmt.Sprintf(`SELECT %s FROM counterparties WHERE tax_id = $1;`, counterpartyColumns)
	return scanCounterparty(r.Pool.QueryRow(ctx, query, taxID))
}

// ListCounterparties retrieves a paginated list ordered by legal name.
func (r *PgxCounterpartyRepository) ListCounterparties(ctx context.Context, limit int, offset int) ([]domain.Counterparty, error) {
	query := fmt.Sprintf(`SELECT %s FROM counterparties ORDER BY legal_name LIMIT $1 OFFSET $2;`, counterpartyColumns)
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list counterparties: %w", err)
	}
	defer rows.Close()

	var counterparties []domain.Counterparty
	for rows.Next() {
		cp, err := scanCounterparty(rows)
		if err != nil {
			return nil, err
		}
		counterparties = append(counterparties, *cp)
	}
	return counterparties, rows.Err()
}

// UpdateCounterparty updates an existing counterparty's details.
func (r *PgxCounterpartyRepository) UpdateCounterparty(ctx context.Context, counterparty domain.Counterparty) error {
	m := mapping.ToModelCounterparty(counterparty)
	query := `
		UPDATE counterparties
		SET legal_name = $2, is_active = $3, last_updated_at = $4, last_updated_by = $5
		WHERE counterparty_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.CounterpartyID, m.LegalName, m.IsActive, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update counterparty %s: %w", counterparty.CounterpartyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateCounterparty marks a counterparty as inactive.
func (r *PgxCounterpartyRepository) DeactivateCounterparty(ctx context.Context, counterpartyID string, userID string, now time.Time) error {
	query := `
		UPDATE counterparties
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE counterparty_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, counterpartyID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate counterparty %s: %w", counterpartyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
