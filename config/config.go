package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// OpenAlex ist der primäre bibliographische Index. Die Mail-Adresse
	// schaltet den "polite pool" frei.
	OpenAlexBaseURL string `envconfig:"OPENALEX_BASE_URL" default:"https://api.openalex.org"`
	OpenAlexMailto  string `envconfig:"OPENALEX_MAILTO" required:"true"`

	// Sekundärer HTTP-Check über den DOI-Resolver.
	DOIResolverBaseURL string `envconfig:"DOI_RESOLVER_BASE_URL" default:"https://doi.org"`

	// Öffentliche ORCID-API für Personen-Metadaten.
	ORCIDBaseURL string `envconfig:"ORCID_BASE_URL" default:"https://pub.orcid.org/v3.0"`

	// Matching-Schwellen. Merging ist destruktiv und verlangt daher
	// stärkere Evidenz als das Verlinken.
	LinkThreshold  float64 `envconfig:"LINK_THRESHOLD" default:"0.70"`
	MergeThreshold float64 `envconfig:"MERGE_THRESHOLD" default:"0.80"`

	AuditWorkers  int    `envconfig:"AUDIT_WORKERS" default:"10"`
	AuditStrategy string `envconfig:"AUDIT_STRATEGY" default:"hybrid"`
	CronSchedule  string `envconfig:"CRON_SCHEDULE" default:"0 3 * * *"`

	// Kennzahlen älter als diese Schwelle werden beim Sync neu geholt.
	MetricsSyncThresholdDays int `envconfig:"METRICS_SYNC_THRESHOLD_DAYS" default:"30"`

	DocStoreS3Key    string `envconfig:"DOCSTORE_S3_KEY" required:"true"`
	DocStoreS3Secret string `envconfig:"DOCSTORE_S3_SECRET" required:"true"`
	DocStoreS3URL    string `envconfig:"DOCSTORE_S3_URL" required:"true"`
	DocStoreS3Region string `envconfig:"DOCSTORE_S3_REGION" required:"true"`
	DocStoreS3Bucket string `envconfig:"DOCSTORE_S3_BUCKET" required:"true"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
