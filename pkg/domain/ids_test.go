package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "storeops/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseEmployeeID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseEmployeeID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseTenantID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID with surrounding whitespace", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseSessionID("  " + validUUID.String() + " ")
		require.NoError(t, err)
		assert.Equal(t, SessionID(validUUID), id)
	})
}

func TestParseStoreID(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		id, err := ParseStoreID("  Lawrence ")
		require.NoError(t, err)
		assert.Equal(t, StoreID("Lawrence"), id)
	})

	t.Run("rejects blank", func(t *testing.T) {
		_, err := ParseStoreID("   ")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects overlong codes", func(t *testing.T) {
		_, err := ParseStoreID(strings.Repeat("s", 101))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
func TestTypeDistinction(t *testing.T) {
	employeeID := EmployeeID(uuid.New())
	tenantID := TenantID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ EmployeeID = tenantID
	// var _ TenantID = employeeID

	assert.NotEqual(t, uuid.UUID(employeeID), uuid.UUID(tenantID))
}

func TestIDsRoundTripThroughJSON(t *testing.T) {
	in := struct {
		Employee EmployeeID `json:"employee_id"`
	}{Employee: EmployeeID(uuid.New())}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), in.Employee.String())

	var out struct {
		Employee EmployeeID `json:"employee_id"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in.Employee, out.Employee)
}
