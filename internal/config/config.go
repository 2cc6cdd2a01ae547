package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"        envconfig:"SERVER"`
	Database     DatabaseConfig     `yaml:"database"      envconfig:"DB"`
	JWT          JWTConfig          `yaml:"jwt"           envconfig:"JWT"`
	AdminEmails  []string           `yaml:"admin_emails"  envconfig:"ADMIN_EMAILS"`
	Log          LogConfig          `yaml:"log"           envconfig:"LOG"`
	Rotation     RotationConfig     `yaml:"rotation"      envconfig:"ROTATION"`
	Lending      LendingConfig      `yaml:"lending"       envconfig:"LENDING"`
	FieldMapping FieldMappingConfig `yaml:"field_mapping" envconfig:"FIELD_MAPPING"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"     envconfig:"SCHEDULER"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host                   string `yaml:"host"                     envconfig:"HOST"`
	Port                   int    `yaml:"port"                     envconfig:"PORT"`
	GRPCPort               int    `yaml:"grpc_port"                envconfig:"GRPC_PORT"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds" envconfig:"SHUTDOWN_TIMEOUT_SECONDS"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host          string `yaml:"host"           envconfig:"HOST"`
	Port          int    `yaml:"port"           envconfig:"PORT"`
	User          string `yaml:"user"           envconfig:"USER"`
	Password      string `yaml:"password"       envconfig:"PASSWORD"`
	Database      string `yaml:"database"       envconfig:"NAME"`
	SSLMode       string `yaml:"ssl_mode"       envconfig:"SSL_MODE"`
	RunMigrations bool   `yaml:"run_migrations" envconfig:"RUN_MIGRATIONS"`
}

// JWTConfig contains bearer token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"                      envconfig:"SECRET"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes" envconfig:"ACCESS_TOKEN_EXPIRY_MINUTES"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"  envconfig:"LEVEL"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format" envconfig:"FORMAT"` // "json" or "text"
}

// RotationConfig drives the pot window and the beneficiary rotation
type RotationConfig struct {
	PeriodDays      int    `yaml:"period_days"       envconfig:"PERIOD_DAYS"`
	SeasonStartDate string `yaml:"season_start_date" envconfig:"SEASON_START_DATE"` // yyyy-mm-dd, UTC
	GroupSize       int32  `yaml:"group_size"        envconfig:"GROUP_SIZE"`
	ActiveKind      string `yaml:"active_kind"       envconfig:"ACTIVE_KIND"`
	SettledKind     string `yaml:"settled_kind"      envconfig:"SETTLED_KIND"`
	BoundedWindow   bool   `yaml:"bounded_window"    envconfig:"BOUNDED_WINDOW"`
	PayoutProcedure string `yaml:"payout_procedure"  envconfig:"PAYOUT_PROCEDURE"`

	seasonStart time.Time
}

// Interest models
const (
	InterestModelFlat    = "flat"
	InterestModelMonthly = "monthly"
	InterestModelNone    = "none"
)

// LendingConfig contains borrowing capacity and interest policy
type LendingConfig struct {
	FoundationCreditRate float64  `yaml:"foundation_credit_rate" envconfig:"FOUNDATION_CREDIT_RATE"`
	InterestModel        string   `yaml:"interest_model"         envconfig:"INTEREST_MODEL"`
	FlatInterestRate     *float64 `yaml:"flat_interest_rate"     envconfig:"FLAT_INTEREST_RATE"`
	MonthlyInterestRate  float64  `yaml:"monthly_interest_rate"  envconfig:"MONTHLY_INTEREST_RATE"`
	SingleOpenLoan       bool     `yaml:"single_open_loan"       envconfig:"SINGLE_OPEN_LOAN"`
	ActiveStatuses       []string `yaml:"active_statuses"        envconfig:"ACTIVE_STATUSES"`
}

// FieldMappingConfig lists candidate columns in priority order; the first one
// present in the schema is used.
type FieldMappingConfig struct {
	LoanTotalColumns       []string `yaml:"loan_total_columns"       envconfig:"LOAN_TOTAL_COLUMNS"`
	RepaymentAmountColumns []string `yaml:"repayment_amount_columns" envconfig:"REPAYMENT_AMOUNT_COLUMNS"`
}

// SchedulerConfig contains cron schedule settings (seconds precision, UTC)
type SchedulerConfig struct {
	AccrueMonthlyInterest string `yaml:"accrue_monthly_interest" envconfig:"ACCRUE_MONTHLY_INTEREST"`
	CloseSettledLoans     string `yaml:"close_settled_loans"     envconfig:"CLOSE_SETTLED_LOANS"`
	PayoutDueCheck        string `yaml:"payout_due_check"        envconfig:"PAYOUT_DUE_CHECK"`
}

// Load reads configuration from a YAML file, applies environment overrides and validates
func Load(configPath string) (*Config, error) {
	// A local .env is optional
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a configuration from YAML bytes plus the process environment
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration and fills defaults
func (c *Config) Validate() error {
	c.applyDefaults()

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.GRPCPort <= 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.Server.GRPCPort)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	if c.Rotation.PeriodDays <= 0 {
		return fmt.Errorf("rotation period must be positive: %d", c.Rotation.PeriodDays)
	}
	if c.Rotation.GroupSize < 1 {
		return fmt.Errorf("rotation group size must be at least 1: %d", c.Rotation.GroupSize)
	}
	if c.Rotation.ActiveKind == c.Rotation.SettledKind {
		return fmt.Errorf("rotation active and settled kinds must differ: %q", c.Rotation.ActiveKind)
	}
	start, err := time.Parse("2006-01-02", c.Rotation.SeasonStartDate)
	if err != nil {
		return fmt.Errorf("invalid season start date %q: %w", c.Rotation.SeasonStartDate, err)
	}
	c.Rotation.seasonStart = start.UTC()

	if c.Lending.FoundationCreditRate <= 0 || c.Lending.FoundationCreditRate > 1 {
		return fmt.Errorf("foundation credit rate must be in (0, 1]: %v", c.Lending.FoundationCreditRate)
	}
	switch c.Lending.InterestModel {
	case InterestModelFlat:
		if c.Lending.MonthlyInterestRate != 0 {
			return fmt.Errorf("monthly interest rate cannot be set with the flat interest model")
		}
		if c.Lending.FlatRate() < 0 {
			return fmt.Errorf("flat interest rate cannot be negative: %v", c.Lending.FlatRate())
		}
	case InterestModelMonthly:
		if c.Lending.FlatRate() != 0 {
			return fmt.Errorf("flat interest rate cannot be set with the monthly interest model")
		}
		if c.Lending.MonthlyInterestRate <= 0 {
			return fmt.Errorf("monthly interest model requires a positive monthly rate")
		}
	case InterestModelNone:
		if c.Lending.FlatRate() != 0 || c.Lending.MonthlyInterestRate != 0 {
			return fmt.Errorf("interest rates cannot be set when the interest model is none")
		}
	default:
		return fmt.Errorf("unknown interest model %q", c.Lending.InterestModel)
	}

	if len(c.FieldMapping.LoanTotalColumns) == 0 {
		return fmt.Errorf("at least one loan total column is required")
	}
	if len(c.FieldMapping.RepaymentAmountColumns) == 0 {
		return fmt.Errorf("at least one repayment amount column is required")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.GRPCPort == 0 && c.Server.Port > 0 {
		c.Server.GRPCPort = c.Server.Port + 1
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 15
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Rotation.PeriodDays == 0 {
		c.Rotation.PeriodDays = 14
	}
	if c.Rotation.SeasonStartDate == "" {
		c.Rotation.SeasonStartDate = "2026-01-03"
	}
	if c.Rotation.GroupSize == 0 {
		c.Rotation.GroupSize = 17
	}
	if c.Rotation.ActiveKind == "" {
		c.Rotation.ActiveKind = "contribution"
	}
	if c.Rotation.SettledKind == "" {
		c.Rotation.SettledKind = "paid"
	}

	if c.Lending.FoundationCreditRate == 0 {
		c.Lending.FoundationCreditRate = 0.70
	}
	if c.Lending.InterestModel == "" {
		c.Lending.InterestModel = InterestModelFlat
	}
	c.Lending.InterestModel = strings.ToLower(c.Lending.InterestModel)
	// An explicit flat_interest_rate of 0 is kept.
	if c.Lending.InterestModel == InterestModelFlat && c.Lending.FlatInterestRate == nil {
		rate := 0.10
		c.Lending.FlatInterestRate = &rate
	}
	if len(c.Lending.ActiveStatuses) == 0 {
		c.Lending.ActiveStatuses = []string{"active", "open", "ongoing"}
	}

	if len(c.FieldMapping.LoanTotalColumns) == 0 {
		c.FieldMapping.LoanTotalColumns = []string{"total_due", "balance", "principal_current", "principal"}
	}
	if len(c.FieldMapping.RepaymentAmountColumns) == 0 {
		c.FieldMapping.RepaymentAmountColumns = []string{"amount_paid", "amount"}
	}

	if c.Scheduler.CloseSettledLoans == "" {
		c.Scheduler.CloseSettledLoans = "0 0 1 * * *" // 1 AM UTC
	}
	if c.Scheduler.PayoutDueCheck == "" {
		c.Scheduler.PayoutDueCheck = "0 0 8 * * *" // 8 AM UTC
	}
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetGRPCAddress returns the gRPC health listen address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

// IsAdminEmail reports whether the email is in the configured admin list
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, admin := range c.AdminEmails {
		if strings.ToLower(strings.TrimSpace(admin)) == email {
			return true
		}
	}
	return false
}

// SeasonStart is the parsed season start date (valid after Validate)
func (r RotationConfig) SeasonStart() time.Time {
	if r.seasonStart.IsZero() {
		if t, err := time.Parse("2006-01-02", r.SeasonStartDate); err == nil {
			return t.UTC()
		}
	}
	return r.seasonStart
}

// Period is the configured rotation cycle length
func (r RotationConfig) Period() time.Duration {
	return time.Duration(r.PeriodDays) * 24 * time.Hour
}

// FlatRate is the configured flat rate, zero when unset
func (l LendingConfig) FlatRate() float64 {
	if l.FlatInterestRate == nil {
		return 0
	}
	return *l.FlatInterestRate
}

// InterestRate returns the rate for the selected interest model
func (l LendingConfig) InterestRate() float64 {
	switch l.InterestModel {
	case InterestModelFlat:
		return l.FlatRate()
	case InterestModelMonthly:
		return l.MonthlyInterestRate
	}
	return 0
}
