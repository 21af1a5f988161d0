package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storeops/internal/platform/postgres"
	"storeops/internal/storehours"
	"storeops/internal/timeclock/models"
	id "storeops/pkg/domain"
	"storeops/pkg/platform/sentinel"
)

// PostgresStore persists clock sessions in PostgreSQL.
// This store is pure I/O; state transitions are decided by the service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const sessionColumns = `id, tenant_id, employee_id, employee_name, store_id,
	to_char(business_date, 'YYYY-MM-DD'), clock_in, clock_out, COALESCE(clock_out_type, ''),
	hours_worked, confidence_in, confidence_out`

func (s *PostgresStore) Create(ctx context.Context, session *models.Session) error {
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO clock_sessions (id, tenant_id, employee_id, employee_name, store_id, business_date,
			clock_in, clock_out, clock_out_type, hours_worked, confidence_in, confidence_out)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, NULLIF($9, ''), $10, $11, $12)
	`, uuid.UUID(session.ID), uuid.UUID(session.TenantID), uuid.UUID(session.EmployeeID),
		session.EmployeeName, string(session.StoreID), session.BusinessDate.String(),
		session.ClockIn, session.ClockOut, string(session.ClockOutType), session.HoursWorked,
		session.ConfidenceIn, session.ConfidenceOut)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, tenantID id.TenantID, sessionID id.SessionID) (*models.Session, error) {
	row := postgres.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM clock_sessions WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(sessionID))
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

func (s *PostgresStore) FindOpen(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID, date storehours.Date) (*models.Session, error) {
	row := postgres.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM clock_sessions
		 WHERE tenant_id = $1 AND employee_id = $2 AND business_date = $3::date AND clock_out IS NULL`,
		uuid.UUID(tenantID), uuid.UUID(employeeID), date.String())
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find open session: %w", err)
	}
	return session, nil
}

// CloseIfOpen is a single conditional UPDATE; a zero row count means the
// session was already closed (or never existed for this tenant).
func (s *PostgresStore) CloseIfOpen(ctx context.Context, cmd models.CloseCommand) (bool, error) {
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE clock_sessions
		SET clock_out = $3, clock_out_type = $4, hours_worked = $5, confidence_out = $6
		WHERE tenant_id = $1 AND id = $2 AND clock_out IS NULL
	`, uuid.UUID(cmd.TenantID), uuid.UUID(cmd.SessionID), cmd.ClockOut, string(cmd.Type),
		cmd.HoursWorked, cmd.ConfidenceOut)
	if err != nil {
		return false, fmt.Errorf("close session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("close session rows affected: %w", err)
	}
	return n == 1, nil
}

func (s *PostgresStore) ListOpenByStore(ctx context.Context, tenantID id.TenantID, storeID id.StoreID, through storehours.Date) ([]models.Session, error) {
	return s.list(ctx, "list open sessions",
		`SELECT `+sessionColumns+` FROM clock_sessions
		 WHERE tenant_id = $1 AND store_id = $2 AND business_date <= $3::date AND clock_out IS NULL
		 ORDER BY clock_in ASC`,
		uuid.UUID(tenantID), string(storeID), through.String())
}

func (s *PostgresStore) ListByStoreDate(ctx context.Context, tenantID id.TenantID, storeID id.StoreID, date storehours.Date) ([]models.Session, error) {
	return s.list(ctx, "list store sessions for date",
		`SELECT `+sessionColumns+` FROM clock_sessions
		 WHERE tenant_id = $1 AND store_id = $2 AND business_date = $3::date
		 ORDER BY clock_in DESC`,
		uuid.UUID(tenantID), string(storeID), date.String())
}

func (s *PostgresStore) ListByStore(ctx context.Context, tenantID id.TenantID, storeID id.StoreID, since time.Time) ([]models.Session, error) {
	return s.list(ctx, "list store sessions",
		`SELECT `+sessionColumns+` FROM clock_sessions
		 WHERE tenant_id = $1 AND store_id = $2 AND clock_in >= $3
		 ORDER BY clock_in DESC`,
		uuid.UUID(tenantID), string(storeID), since)
}

func (s *PostgresStore) ListByEmployee(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID, since time.Time) ([]models.Session, error) {
	return s.list(ctx, "list employee sessions",
		`SELECT `+sessionColumns+` FROM clock_sessions
		 WHERE tenant_id = $1 AND employee_id = $2 AND clock_in >= $3
		 ORDER BY clock_in DESC`,
		uuid.UUID(tenantID), uuid.UUID(employeeID), since)
}

func (s *PostgresStore) list(ctx context.Context, op, query string, args ...any) ([]models.Session, error) {
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*models.Session, error) {
	var (
		sid, tid, eid uuid.UUID
		storeID       string
		date          string
		clockOut      sql.NullTime
		outType       string
		hours         sql.NullFloat64
		confIn        sql.NullFloat64
		confOut       sql.NullFloat64
		session       models.Session
	)
	if err := row.Scan(&sid, &tid, &eid, &session.EmployeeName, &storeID, &date,
		&session.ClockIn, &clockOut, &outType, &hours, &confIn, &confOut); err != nil {
		return nil, err
	}
	bd, err := storehours.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("parse business date: %w", err)
	}
	session.ID = id.SessionID(sid)
	session.TenantID = id.TenantID(tid)
	session.EmployeeID = id.EmployeeID(eid)
	session.StoreID = id.StoreID(storeID)
	session.BusinessDate = bd
	session.ClockIn = session.ClockIn.UTC()
	if clockOut.Valid {
		out := clockOut.Time.UTC()
		session.ClockOut = &out
	}
	session.ClockOutType = models.ClockOutType(outType)
	session.HoursWorked = nullFloat(hours)
	session.ConfidenceIn = nullFloat(confIn)
	session.ConfidenceOut = nullFloat(confOut)
	return &session, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
