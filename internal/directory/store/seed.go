package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"storeops/internal/directory/models"
	"storeops/internal/face"
	"storeops/internal/storehours"
	id "storeops/pkg/domain"
)

// Seed is the YAML fixture format for bootstrapping a directory.
type Seed struct {
	Tenants []SeedTenant `yaml:"tenants"`
}

type SeedTenant struct {
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	Status    string         `yaml:"status"`
	Stores    []SeedStore    `yaml:"stores"`
	Employees []SeedEmployee `yaml:"employees"`
}

type SeedStore struct {
	ID              string           `yaml:"store_id"`
	Hours           storehours.Hours `yaml:",inline"`
	ManagerUsername string           `yaml:"manager_username"`
}

type SeedEmployee struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	StoreID     string      `yaml:"store_id"`
	Active      *bool       `yaml:"active"`
	Descriptors [][]float64 `yaml:"face_descriptors"`
}

// Writer is the subset of a directory store a seed is applied to.
type Writer interface {
	PutTenant(ctx context.Context, t *models.Tenant) error
	PutStore(ctx context.Context, st *models.Store) error
	PutEmployee(ctx context.Context, e *models.Employee) error
}

// LoadSeedFile reads and parses a YAML seed file.
func LoadSeedFile(path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}

// LoadSeed parses a YAML seed document.
func LoadSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &seed, nil
}

// Apply writes every seeded record through w. Records are upserts, so
// applying the same seed twice is harmless.
func (s *Seed) Apply(ctx context.Context, w Writer) error {
	for _, st := range s.Tenants {
		tenantID, err := id.ParseTenantID(st.ID)
		if err != nil {
			return fmt.Errorf("tenant %q: %w", st.Name, err)
		}
		status := models.TenantStatus(strings.TrimSpace(st.Status))
		if status == "" {
			status = models.TenantStatusActive
		}
		if err := w.PutTenant(ctx, &models.Tenant{ID: tenantID, Name: st.Name, Status: status}); err != nil {
			return err
		}

		for _, store := range st.Stores {
			storeID, err := id.ParseStoreID(store.ID)
			if err != nil {
				return fmt.Errorf("tenant %q store: %w", st.Name, err)
			}
			err = w.PutStore(ctx, &models.Store{
				TenantID:        tenantID,
				ID:              storeID,
				Hours:           store.Hours,
				ManagerUsername: store.ManagerUsername,
			})
			if err != nil {
				return err
			}
		}

		for _, se := range st.Employees {
			e, err := se.toModel(tenantID)
			if err != nil {
				return fmt.Errorf("tenant %q employee %q: %w", st.Name, se.Name, err)
			}
			if err := w.PutEmployee(ctx, e); err != nil {
				return err
			}
		}
	}
	return nil
}

func (se SeedEmployee) toModel(tenantID id.TenantID) (*models.Employee, error) {
	var employeeID id.EmployeeID
	if se.ID == "" {
		employeeID = id.EmployeeID(uuid.New())
	} else {
		parsed, err := id.ParseEmployeeID(se.ID)
		if err != nil {
			return nil, err
		}
		employeeID = parsed
	}
	active := true
	if se.Active != nil {
		active = *se.Active
	}
	descriptors := make([]face.Descriptor, 0, len(se.Descriptors))
	for _, d := range se.Descriptors {
		descriptors = append(descriptors, face.Descriptor(d))
	}
	return &models.Employee{
		ID:             employeeID,
		TenantID:       tenantID,
		StoreID:        id.StoreID(strings.TrimSpace(se.StoreID)),
		Name:           se.Name,
		Active:         active,
		FaceRegistered: len(descriptors) > 0,
		Descriptors:    descriptors,
	}, nil
}
