package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storeops/internal/directory/models"
	"storeops/internal/face"
	"storeops/internal/platform/postgres"
	"storeops/internal/storehours"
	id "storeops/pkg/domain"
	"storeops/pkg/platform/sentinel"
)

// PostgresStore persists the directory in PostgreSQL.
// This store is pure I/O; validation belongs to the services.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) PutTenant(ctx context.Context, t *models.Tenant) error {
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO tenants (id, name, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, status = EXCLUDED.status
	`, uuid.UUID(t.ID), t.Name, string(t.Status))
	if err != nil {
		return fmt.Errorf("put tenant: %w", err)
	}
	return nil
}

func (s *PostgresStore) PutStore(ctx context.Context, st *models.Store) error {
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO stores (tenant_id, store_id, opening_time, closing_time, timezone, manager_username)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
		ON CONFLICT (tenant_id, store_id) DO UPDATE SET
			opening_time = EXCLUDED.opening_time,
			closing_time = EXCLUDED.closing_time,
			timezone = EXCLUDED.timezone,
			manager_username = EXCLUDED.manager_username
	`, uuid.UUID(st.TenantID), string(st.ID), st.Hours.Opening, st.Hours.Closing, st.Hours.Timezone, st.ManagerUsername)
	if err != nil {
		return fmt.Errorf("put store: %w", err)
	}
	return nil
}

func (s *PostgresStore) PutEmployee(ctx context.Context, e *models.Employee) error {
	descriptors, err := encodeDescriptors(e.Descriptors)
	if err != nil {
		return err
	}
	_, err = postgres.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO employees (id, tenant_id, store_id, name, active, face_registered, face_descriptors, face_image, face_registered_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, NULLIF($8, ''), $9)
		ON CONFLICT (id) DO UPDATE SET
			store_id = EXCLUDED.store_id,
			name = EXCLUDED.name,
			active = EXCLUDED.active,
			face_registered = EXCLUDED.face_registered,
			face_descriptors = EXCLUDED.face_descriptors,
			face_image = EXCLUDED.face_image,
			face_registered_at = EXCLUDED.face_registered_at
	`, uuid.UUID(e.ID), uuid.UUID(e.TenantID), string(e.StoreID), e.Name, e.Active, e.FaceRegistered,
		descriptors, e.FaceImage, e.FaceRegisteredAt)
	if err != nil {
		return fmt.Errorf("put employee: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListActiveTenants(ctx context.Context) ([]models.Tenant, error) {
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT id, name, status FROM tenants WHERE status = 'active' ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var out []models.Tenant
	for rows.Next() {
		var (
			tid    uuid.UUID
			t      models.Tenant
			status string
		)
		if err := rows.Scan(&tid, &t.Name, &status); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		t.ID = id.TenantID(tid)
		t.Status = models.TenantStatus(status)
		out = append(out, t)
	}
	return out, rows.Err()
}

const storeColumns = `tenant_id, store_id, COALESCE(opening_time, ''), COALESCE(closing_time, ''), COALESCE(timezone, ''), COALESCE(manager_username, '')`

func (s *PostgresStore) GetStore(ctx context.Context, tenantID id.TenantID, storeID id.StoreID) (*models.Store, error) {
	row := postgres.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE tenant_id = $1 AND store_id = $2`,
		uuid.UUID(tenantID), string(storeID))
	st, err := scanStore(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return st, nil
}

func (s *PostgresStore) ListStores(ctx context.Context, tenantID id.TenantID) ([]models.Store, error) {
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE tenant_id = $1 ORDER BY store_id`,
		uuid.UUID(tenantID))
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var out []models.Store
	for rows.Next() {
		st, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

const employeeColumns = `id, tenant_id, COALESCE(store_id, ''), name, active, face_registered, face_descriptors, COALESCE(face_image, ''), face_registered_at`

func (s *PostgresStore) GetEmployee(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID) (*models.Employee, error) {
	row := postgres.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(employeeID))
	e, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) ListRegistered(ctx context.Context, tenantID id.TenantID) ([]face.Profile, error) {
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees
		 WHERE tenant_id = $1 AND active AND face_registered
		 ORDER BY name, id`,
		uuid.UUID(tenantID))
	if err != nil {
		return nil, fmt.Errorf("list registered faces: %w", err)
	}
	defer rows.Close()

	var out []face.Profile
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, e.Profile())
	}
	return out, rows.Err()
}

// AppendDescriptor appends probe and trims to the newest limit descriptors in
// a single statement, so concurrent learners cannot lose each other's writes.
func (s *PostgresStore) AppendDescriptor(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID, probe face.Descriptor, limit int) error {
	raw, err := json.Marshal(probe)
	if err != nil {
		return fmt.Errorf("encode descriptor: %w", err)
	}
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE employees SET face_descriptors = (
			SELECT COALESCE(jsonb_agg(elem ORDER BY ord), '[]'::jsonb)
			FROM jsonb_array_elements(face_descriptors || jsonb_build_array($3::jsonb)) WITH ORDINALITY AS t(elem, ord)
			WHERE ord > jsonb_array_length(face_descriptors) + 1 - $4
		)
		WHERE tenant_id = $1 AND id = $2
	`, uuid.UUID(tenantID), uuid.UUID(employeeID), string(raw), limit)
	if err != nil {
		return fmt.Errorf("append descriptor: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Enroll(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID, descriptors []face.Descriptor, image string, at time.Time) error {
	raw, err := encodeDescriptors(descriptors)
	if err != nil {
		return err
	}
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE employees SET
			face_descriptors = $3,
			face_registered = TRUE,
			face_registered_at = $4,
			face_image = COALESCE(NULLIF($5, ''), face_image)
		WHERE tenant_id = $1 AND id = $2
	`, uuid.UUID(tenantID), uuid.UUID(employeeID), raw, at, image)
	if err != nil {
		return fmt.Errorf("enroll face: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStore(row scanner) (*models.Store, error) {
	var (
		tid uuid.UUID
		sid string
		st  models.Store
		h   storehours.Hours
	)
	if err := row.Scan(&tid, &sid, &h.Opening, &h.Closing, &h.Timezone, &st.ManagerUsername); err != nil {
		return nil, err
	}
	st.TenantID = id.TenantID(tid)
	st.ID = id.StoreID(sid)
	st.Hours = h
	return &st, nil
}

func scanEmployee(row scanner) (*models.Employee, error) {
	var (
		eid, tid     uuid.UUID
		sid          string
		e            models.Employee
		descriptors  []byte
		registeredAt sql.NullTime
	)
	if err := row.Scan(&eid, &tid, &sid, &e.Name, &e.Active, &e.FaceRegistered, &descriptors, &e.FaceImage, &registeredAt); err != nil {
		return nil, err
	}
	e.ID = id.EmployeeID(eid)
	e.TenantID = id.TenantID(tid)
	e.StoreID = id.StoreID(sid)
	if len(descriptors) > 0 {
		if err := json.Unmarshal(descriptors, &e.Descriptors); err != nil {
			return nil, fmt.Errorf("decode descriptors: %w", err)
		}
	}
	if registeredAt.Valid {
		t := registeredAt.Time
		e.FaceRegisteredAt = &t
	}
	return &e, nil
}

func encodeDescriptors(d []face.Descriptor) (string, error) {
	if d == nil {
		d = []face.Descriptor{}
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode descriptors: %w", err)
	}
	return string(raw), nil
}
