package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
server:
  port: 8080
database:
  host: localhost
  port: 5432
  user: njangi
  database: ledger
jwt:
  secret: 0123456789abcdef0123456789abcdef
admin_emails: [Treasurer@Example.com]
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.GRPCPort)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 14, cfg.Rotation.PeriodDays)
	assert.Equal(t, 14*24*time.Hour, cfg.Rotation.Period())
	assert.Equal(t, int32(17), cfg.Rotation.GroupSize)
	assert.Equal(t, "contribution", cfg.Rotation.ActiveKind)
	assert.Equal(t, "paid", cfg.Rotation.SettledKind)
	assert.False(t, cfg.Rotation.BoundedWindow)
	assert.Equal(t, time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), cfg.Rotation.SeasonStart())

	assert.InDelta(t, 0.70, cfg.Lending.FoundationCreditRate, 1e-9)
	assert.Equal(t, InterestModelFlat, cfg.Lending.InterestModel)
	assert.InDelta(t, 0.10, cfg.Lending.InterestRate(), 1e-9)
	assert.False(t, cfg.Lending.SingleOpenLoan)
	assert.Equal(t, []string{"active", "open", "ongoing"}, cfg.Lending.ActiveStatuses)

	assert.Equal(t, []string{"total_due", "balance", "principal_current", "principal"}, cfg.FieldMapping.LoanTotalColumns)
	assert.Empty(t, cfg.Scheduler.AccrueMonthlyInterest)
	assert.Equal(t, "0 0 1 * * *", cfg.Scheduler.CloseSettledLoans)

	assert.True(t, cfg.IsAdminEmail("treasurer@example.com"))
	assert.False(t, cfg.IsAdminEmail("member@example.com"))
	assert.False(t, cfg.IsAdminEmail(""))
	assert.Equal(t, "postgres://njangi:@localhost:5432/ledger?sslmode=disable", cfg.GetDatabaseConnectionString())
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ROTATION_GROUP_SIZE", "5")
	t.Setenv("ROTATION_BOUNDED_WINDOW", "true")
	t.Setenv("LENDING_INTEREST_MODEL", "monthly")
	t.Setenv("LENDING_MONTHLY_INTEREST_RATE", "0.02")
	t.Setenv("ADMIN_EMAILS", "a@example.com,b@example.com")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int32(5), cfg.Rotation.GroupSize)
	assert.True(t, cfg.Rotation.BoundedWindow)
	assert.Equal(t, InterestModelMonthly, cfg.Lending.InterestModel)
	assert.InDelta(t, 0.02, cfg.Lending.InterestRate(), 1e-9)
	assert.Nil(t, cfg.Lending.FlatInterestRate)
	assert.True(t, cfg.IsAdminEmail("b@example.com"))
}

func TestParse_FlatRate(t *testing.T) {
	t.Run("Explicit zero is kept", func(t *testing.T) {
		cfg, err := Parse([]byte(minimalYAML + "lending:\n  interest_model: flat\n  flat_interest_rate: 0\n"))
		require.NoError(t, err)
		require.NotNil(t, cfg.Lending.FlatInterestRate)
		assert.Zero(t, cfg.Lending.InterestRate())
	})

	t.Run("Absent key takes the default", func(t *testing.T) {
		cfg, err := Parse([]byte(minimalYAML + "lending:\n  interest_model: flat\n"))
		require.NoError(t, err)
		assert.InDelta(t, 0.10, cfg.Lending.InterestRate(), 1e-9)
	})

	t.Run("Explicit rate", func(t *testing.T) {
		cfg, err := Parse([]byte(minimalYAML + "lending:\n  flat_interest_rate: 0.05\n"))
		require.NoError(t, err)
		assert.InDelta(t, 0.05, cfg.Lending.InterestRate(), 1e-9)
	})

	t.Run("Environment zero overrides the file", func(t *testing.T) {
		t.Setenv("LENDING_FLAT_INTEREST_RATE", "0")
		cfg, err := Parse([]byte(minimalYAML + "lending:\n  flat_interest_rate: 0.05\n"))
		require.NoError(t, err)
		assert.Zero(t, cfg.Lending.InterestRate())
	})

	t.Run("Negative", func(t *testing.T) {
		_, err := Parse([]byte(minimalYAML + "lending:\n  flat_interest_rate: -0.1\n"))
		assert.ErrorContains(t, err, "cannot be negative")
	})
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		extra string
	}{
		{"Bad season start", "rotation:\n  season_start_date: 03/01/2026\n"},
		{"Credit rate above one", "lending:\n  foundation_credit_rate: 1.5\n"},
		{"Both interest rates", "lending:\n  interest_model: flat\n  monthly_interest_rate: 0.02\n"},
		{"Monthly without rate", "lending:\n  interest_model: monthly\n"},
		{"Unknown interest model", "lending:\n  interest_model: compound\n"},
		{"Same kinds", "rotation:\n  active_kind: paid\n  settled_kind: paid\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(minimalYAML + tt.extra))
			assert.Error(t, err)
		})
	}
}

func TestParse_ShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	_, err := Parse([]byte(minimalYAML))
	assert.ErrorContains(t, err, "32 characters")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:8081", cfg.GetGRPCAddress())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel("healthz"))
	assert.Equal(t, SecurityMember, GetSecurityLevel("loans.create"))
	assert.Equal(t, SecurityAdmin, GetSecurityLevel("rotation.payout"))
	assert.Equal(t, SecurityAdmin, GetSecurityLevel("no.such.route"))
}
