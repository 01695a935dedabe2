package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Ingest  IngestConfig
	Ledger  LedgerConfig
	DB      DBConfig
	Archive ArchiveConfig
	S3      S3Config
	Log     LogConfig
	Email   EmailConfig
}

// IngestConfig holds the per-run pipeline settings.
type IngestConfig struct {
	InboundDir    string        `mapstructure:"inbound_dir"`
	ArchiveDir    string        `mapstructure:"archive_dir"`
	Distributor   string        `mapstructure:"distributor"`
	PDFVariant    string        `mapstructure:"pdf_variant"`
	XMLVariant    string        `mapstructure:"xml_variant"`
	PCSDivisor    int64         `mapstructure:"pcs_divisor"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`

	// DistributorFromFilename prefers a _GN_<NAME>_ filename tag over Distributor.
	DistributorFromFilename bool `mapstructure:"distributor_from_filename"`
}

// LedgerConfig selects and locates the ledger store.
type LedgerConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	Sheet   string `mapstructure:"sheet"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// ArchiveConfig selects where ingested documents are relocated.
type ArchiveConfig struct {
	Provider string `mapstructure:"provider"`
	Prefix   string `mapstructure:"prefix"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// EmailConfig holds batch report delivery settings.
type EmailConfig struct {
	Provider    string   `mapstructure:"provider"`
	Region      string   `mapstructure:"region"`
	FromAddress string   `mapstructure:"from_address"`
	FromName    string   `mapstructure:"from_name"`
	ToAddresses []string `mapstructure:"to_addresses"`
}

const (
	LedgerBackendXLSX     = "xlsx"
	LedgerBackendPostgres = "postgres"

	ArchiveProviderLocal = "local"
	ArchiveProviderS3    = "s3"
)

// Load reads configuration from environment variables with the FATURAS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FATURAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Ingest defaults
	v.SetDefault("ingest.inbound_dir", "faturas")
	v.SetDefault("ingest.archive_dir", "faturas/processadas")
	v.SetDefault("ingest.distributor", "Cegás")
	v.SetDefault("ingest.distributor_from_filename", false)
	v.SetDefault("ingest.pdf_variant", "cegas-pdf")
	v.SetDefault("ingest.xml_variant", "nfe-xml")
	v.SetDefault("ingest.pcs_divisor", 9400)
	v.SetDefault("ingest.watch_debounce", "2s")

	// Ledger defaults
	v.SetDefault("ledger.backend", LedgerBackendXLSX)
	v.SetDefault("ledger.path", "faturas/dados_faturas.xlsx")
	v.SetDefault("ledger.sheet", "Sheet1")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "faturas")
	v.SetDefault("db.password", "faturas_secret")
	v.SetDefault("db.name", "faturas_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 5)
	v.SetDefault("db.max_idle", 2)

	// Archive defaults
	v.SetDefault("archive.provider", ArchiveProviderLocal)
	v.SetDefault("archive.prefix", "faturas/processadas")

	// S3 defaults
	v.SetDefault("s3.region", "sa-east-1")
	v.SetDefault("s3.bucket", "faturas-archive")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "sa-east-1")
	v.SetDefault("email.from_address", "noreply@faturas.local")
	v.SetDefault("email.from_name", "Faturas")
	v.SetDefault("email.to_addresses", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"ingest.inbound_dir":    "FATURAS_INGEST_INBOUND_DIR",
		"ingest.archive_dir":    "FATURAS_INGEST_ARCHIVE_DIR",
		"ingest.distributor":    "FATURAS_INGEST_DISTRIBUTOR",
		"ingest.pdf_variant":    "FATURAS_INGEST_PDF_VARIANT",
		"ingest.xml_variant":    "FATURAS_INGEST_XML_VARIANT",
		"ingest.pcs_divisor":    "FATURAS_INGEST_PCS_DIVISOR",
		"ingest.watch_debounce": "FATURAS_INGEST_WATCH_DEBOUNCE",
		"ledger.backend":        "FATURAS_LEDGER_BACKEND",
		"ledger.path":           "FATURAS_LEDGER_PATH",
		"ledger.sheet":          "FATURAS_LEDGER_SHEET",
		"db.host":               "FATURAS_DB_HOST",
		"db.port":               "FATURAS_DB_PORT",
		"db.user":               "FATURAS_DB_USER",
		"db.password":           "FATURAS_DB_PASSWORD",
		"db.name":               "FATURAS_DB_NAME",
		"db.sslmode":            "FATURAS_DB_SSLMODE",
		"db.max_open":           "FATURAS_DB_MAX_OPEN",
		"db.max_idle":           "FATURAS_DB_MAX_IDLE",
		"archive.provider":      "FATURAS_ARCHIVE_PROVIDER",
		"archive.prefix":        "FATURAS_ARCHIVE_PREFIX",
		"s3.region":             "FATURAS_S3_REGION",
		"s3.bucket":             "FATURAS_S3_BUCKET",
		"s3.endpoint":           "FATURAS_S3_ENDPOINT",
		"s3.access_key":         "FATURAS_S3_ACCESS_KEY",
		"s3.secret_key":         "FATURAS_S3_SECRET_KEY",
		"log.level":             "FATURAS_LOG_LEVEL",
		"log.format":            "FATURAS_LOG_FORMAT",
		"log.file":              "FATURAS_LOG_FILE",
		"log.max_size_mb":       "FATURAS_LOG_MAX_SIZE_MB",
		"log.max_backups":       "FATURAS_LOG_MAX_BACKUPS",
		"log.max_age_days":      "FATURAS_LOG_MAX_AGE_DAYS",
		"email.provider":        "FATURAS_EMAIL_PROVIDER",
		"email.region":          "FATURAS_EMAIL_REGION",
		"email.from_address":    "FATURAS_EMAIL_FROM_ADDRESS",
		"email.from_name":       "FATURAS_EMAIL_FROM_NAME",
		"email.to_addresses":    "FATURAS_EMAIL_TO_ADDRESSES",

		"ingest.distributor_from_filename": "FATURAS_INGEST_DISTRIBUTOR_FROM_FILENAME",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	cfg.Ingest = IngestConfig{
		InboundDir:    v.GetString("ingest.inbound_dir"),
		ArchiveDir:    v.GetString("ingest.archive_dir"),
		Distributor:   v.GetString("ingest.distributor"),
		PDFVariant:    v.GetString("ingest.pdf_variant"),
		XMLVariant:    v.GetString("ingest.xml_variant"),
		PCSDivisor:    v.GetInt64("ingest.pcs_divisor"),
		WatchDebounce: v.GetDuration("ingest.watch_debounce"),

		DistributorFromFilename: v.GetBool("ingest.distributor_from_filename"),
	}
	cfg.Ledger = LedgerConfig{
		Backend: strings.ToLower(v.GetString("ledger.backend")),
		Path:    v.GetString("ledger.path"),
		Sheet:   v.GetString("ledger.sheet"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Archive = ArchiveConfig{
		Provider: strings.ToLower(v.GetString("archive.provider")),
		Prefix:   v.GetString("archive.prefix"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:      v.GetString("log.level"),
		Format:     v.GetString("log.format"),
		File:       v.GetString("log.file"),
		MaxSizeMB:  v.GetInt("log.max_size_mb"),
		MaxBackups: v.GetInt("log.max_backups"),
		MaxAgeDays: v.GetInt("log.max_age_days"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		ToAddresses: splitList(v.GetString("email.to_addresses")),
	}

	return cfg, nil
}

// Validate checks settings that would otherwise fail midway through a batch.
func (c *Config) Validate() error {
	if c.Ingest.InboundDir == "" {
		return errors.New("ingest.inbound_dir is required")
	}
	if c.Ingest.PCSDivisor <= 0 {
		return fmt.Errorf("ingest.pcs_divisor must be positive, got %d", c.Ingest.PCSDivisor)
	}

	switch c.Ledger.Backend {
	case LedgerBackendXLSX:
		if c.Ledger.Path == "" {
			return errors.New("ledger.path is required for the xlsx backend")
		}
	case LedgerBackendPostgres:
	default:
		return fmt.Errorf("unknown ledger backend %q", c.Ledger.Backend)
	}

	switch c.Archive.Provider {
	case ArchiveProviderLocal:
		info, err := os.Stat(c.Ingest.ArchiveDir)
		if err != nil {
			return fmt.Errorf("archive dir %q: %w", c.Ingest.ArchiveDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("archive dir %q is not a directory", c.Ingest.ArchiveDir)
		}
	case ArchiveProviderS3:
		if c.S3.Bucket == "" {
			return errors.New("s3.bucket is required for the s3 archive provider")
		}
	default:
		return fmt.Errorf("unknown archive provider %q", c.Archive.Provider)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
