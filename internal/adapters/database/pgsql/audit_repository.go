package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks/ledgercore/internal/apperrors"
	"github.com/openbooks/ledgercore/internal/core/domain"
	portsrepo "github.com/openbooks/ledgercore/internal/core/ports/repositories"
	"github.com/openbooks/ledgercore/internal/models"
	"github.com/openbooks/ledgercore/internal/utils/mapping"
)

const auditLogColumns = `log_id, timestamp, kind, actor_id, actor_name, source_ip, user_agent,
	endpoint, method, COALESCE(entry_id::text, ''), COALESCE(period_id::text, ''),
	detail, outcome, severity, message`

// PgxAuditLogRepository persists the write-once audit trail. It implements no
// update or delete; the audit_logs table carries triggers that reject both.
type PgxAuditLogRepository struct {
	BaseRepository
}

func newPgxAuditLogRepository(pool *pgxpool.Pool) portsrepo.AuditLogRepositoryFacade {
	return &PgxAuditLogRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditLogRepositoryFacade = (*PgxAuditLogRepository)(nil)

func scanAuditLog(row pgx.Row) (*domain.AuditLog, error) {
	var m models.AuditLog
	err := row.Scan(
		&m.LogID, &m.Timestamp, &m.Kind, &m.ActorID, &m.ActorName, &m.SourceIP, &m.UserAgent,
		&m.Endpoint, &m.Method, &m.EntryID, &m.PeriodID,
		&m.Detail, &m.Outcome, &m.Severity, &m.Message,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan audit log: %w", err)
	}
	log := mapping.ToDomainAuditLog(m)
	return &log, nil
}

// SaveAuditLog appends one immutable record to the trail.
func (r *PgxAuditLogRepository) SaveAuditLog(ctx context.Context, log domain.AuditLog) error {
	m := mapping.ToModelAuditLog(log)
	query := `
		INSERT INTO audit_logs (log_id, timestamp, kind, actor_id, actor_name, source_ip, user_agent,
			endpoint, method, entry_id, period_id, detail, outcome, severity, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, '')::uuid, NULLIF($11, '')::uuid, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.LogID, m.Timestamp, m.Kind, m.ActorID, m.ActorName, m.SourceIP, m.UserAgent,
		m.Endpoint, m.Method, m.EntryID, m.PeriodID, m.Detail, m.Outcome, m.Severity, m.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

// FindAuditLogByID retrieves a single audit record.
func (r *PgxAuditLogRepository) FindAuditLogByID(ctx context.Context, auditID string) (*domain.AuditLog, error) {
	query := fmt.Sprintf(`SELECT %s FROM audit_logs WHERE log_id = $1;`, auditLogColumns)
	return scanAuditLog(r.Pool.QueryRow(ctx, query, auditID))
}

// filterClauses builds the WHERE fragment and argument list for a filter.
func filterClauses(filter portsrepo.AuditLogFilter) (string, []any) {
	var clauses []string
	var args []any
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.Kind != "" {
		add("kind = $%d", string(filter.Kind))
	}
	if filter.Severity != "" {
		add("severity = $%d", string(filter.Severity))
	}
	if filter.ActorID != "" {
		add("actor_id = $%d", filter.ActorID)
	}
	if filter.EntryID != "" {
		add("entry_id = $%d", filter.EntryID)
	}
	if filter.PeriodID != "" {
		add("period_id = $%d", filter.PeriodID)
	}
	if !filter.From.IsZero() {
		add("timestamp >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("timestamp <= $%d", filter.To)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// ListAuditLogs retrieves a filtered, paginated list of records, newest first.
func (r *PgxAuditLogRepository) ListAuditLogs(ctx context.Context, filter portsrepo.AuditLogFilter, limit int, offset int) ([]domain.AuditLog, error) {
	where, args := filterClauses(filter)
	query := fmt.Sprintf(`SELECT %s FROM audit_logs%s ORDER BY timestamp DESC LIMIT $%d OFFSET $%d;`,
		auditLogColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		log, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *log)
	}
	return logs, rows.Err()
}

// CountAuditLogs returns the number of records matching the filter.
func (r *PgxAuditLogRepository) CountAuditLogs(ctx context.Context, filter portsrepo.AuditLogFilter) (int64, error) {
	where, args := filterClauses(filter)
	var count int64
	err := r.Pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM audit_logs%s;`, where), args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit logs: %w", err)
	}
	return count, nil
}
