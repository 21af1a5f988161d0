package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "storeops/internal/jwt_token"
)

const testTenant = "6f1c1d1e-4b7a-4c39-9f7e-2d5b3c4a1e10"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "storeopsctl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"policy", "sweep", "seed", "token"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "Command %s should exist", name)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	_, err := execute(t, "policy", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestSweepCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	sub, _, err := cmd.Find([]string{"sweep"})
	require.NoError(t, err)
	modeFlag := sub.Flags().Lookup("mode")
	require.NotNil(t, modeFlag)
	assert.Equal(t, "tenant", modeFlag.DefValue)
	require.NotNil(t, sub.Flags().Lookup("tenant"))
	require.NotNil(t, sub.Flags().Lookup("at"))

	_, err = execute(t, "sweep", "--mode", "nightly")
	require.Error(t, err)
	_, err = execute(t, "sweep", "--tenant", "not-a-uuid")
	require.Error(t, err)
}

func TestPolicyCommand(t *testing.T) {
	base := []string{"policy", "--opening", "09:00", "--closing", "17:00", "--timezone", "UTC", "--format", "json"}

	t.Run("login grace still open", func(t *testing.T) {
		out, err := execute(t, append(base, "--at", "2024-06-03T17:45:00Z")...)
		require.NoError(t, err)

		var report PolicyReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		require.NotNil(t, report.Login)
		require.NotNil(t, report.Clock)
		assert.True(t, report.Login.Allowed)
		assert.False(t, report.Clock.Allowed)
		assert.Equal(t, "OUTSIDE_CLOCK_WINDOW", report.Clock.ErrorCode)
		assert.Equal(t, "2024-06-03", report.BusinessDate.String())
		require.NotNil(t, report.AutoClockout)
		assert.Equal(t, "17:30", report.AutoClockout.UTC().Format("15:04"))
	})

	t.Run("login window closed", func(t *testing.T) {
		out, err := execute(t, append(base, "--at", "2024-06-03T17:46:00Z", "--window", "login")...)
		require.NoError(t, err)

		var report PolicyReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		require.NotNil(t, report.Login)
		assert.Nil(t, report.Clock)
		assert.False(t, report.Login.Allowed)
		assert.Equal(t, "STORE_CLOSED_LOGIN", report.Login.ErrorCode)
	})

	t.Run("text output", func(t *testing.T) {
		out, err := execute(t, "policy", "--opening", "09:00", "--closing", "17:00", "--timezone", "UTC",
			"--at", "2024-06-03T12:00:00Z")
		require.NoError(t, err)
		assert.Contains(t, out, "business date: 2024-06-03")
		assert.Contains(t, out, "login: allowed")
		assert.Contains(t, out, "clock: allowed")
	})

	t.Run("no hours fails open", func(t *testing.T) {
		out, err := execute(t, "policy", "--at", "2024-06-03T03:00:00Z")
		require.NoError(t, err)
		assert.Contains(t, out, "login: allowed")
		assert.NotContains(t, out, "auto clock-out")
	})

	t.Run("bad window", func(t *testing.T) {
		_, err := execute(t, "policy", "--window", "lunch")
		require.Error(t, err)
	})
}

func TestSeedCommandDryRun(t *testing.T) {
	_, file, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(file), "..", "..", "configs", "seed.dev.yaml")

	out, err := execute(t, "seed", path, "--dry-run", "--format", "json")
	require.NoError(t, err)

	var summary SeedSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.False(t, summary.Applied)
	assert.GreaterOrEqual(t, summary.Tenants, 1)
	assert.GreaterOrEqual(t, summary.Stores, 3)

	_, err = execute(t, "seed", filepath.Join(t.TempDir(), "missing.yaml"), "--dry-run")
	require.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	out, err := execute(t, "token", "--tenant", testTenant, "--username", "maria", "--signing-key", "test-key")
	require.NoError(t, err)

	claims, err := jwttoken.NewJWTService("test-key", "storeops").ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, testTenant, claims.TenantID)
	assert.Equal(t, "maria", claims.Username)
	assert.Equal(t, jwttoken.RoleManager, claims.Role)

	_, err = execute(t, "token", "--tenant", testTenant, "--signing-key", "")
	require.Error(t, err)
}
