package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"adoptdash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Analysis AnalysisConfig
	S3       S3Config
	Metrics  MetricsConfig
	Log      LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// DataConfig describes where the dataset lives and how to decode it
type DataConfig struct {
	// Source is a file path, s3://bucket/key, postgres://... or sqlite://path.
	Source    string
	Delimiter rune
	Decimal   rune
	Encoding  string
	Sheet     string
	// PeriodOrder pins the chronological order of period labels.
	PeriodOrder []string
	Table       string
}

// AnalysisConfig holds the probability estimator defaults
type AnalysisConfig struct {
	Threshold       float64
	Baseline        string
	ConclusionsFile string
}

// S3Config holds object storage settings
type S3Config struct {
	Region    string
	Endpoint  string
	PathStyle bool
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	config.Server = *loadServerConfig()

	dataConfig, err := loadDataConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load data configuration")
	}
	config.Data = *dataConfig

	analysisConfig, err := loadAnalysisConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}
	config.Analysis = *analysisConfig

	config.S3 = *loadS3Config()
	config.Metrics = MetricsConfig{Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true)}
	config.Log = LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		GinMode:         getEnvOrDefault("GIN_MODE", "release"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadDataConfig() (*DataConfig, error) {
	delimiter, err := getEnvRuneOrDefault("CSV_DELIMITER", ';')
	if err != nil {
		return nil, err
	}
	decimal, err := getEnvRuneOrDefault("CSV_DECIMAL", ',')
	if err != nil {
		return nil, err
	}

	return &DataConfig{
		Source:      getEnvOrDefault("DATA_SOURCE", "data/database.csv"),
		Delimiter:   delimiter,
		Decimal:     decimal,
		Encoding:    strings.ToLower(getEnvOrDefault("CSV_ENCODING", "utf-8")),
		Sheet:       getEnvOrDefault("XLSX_SHEET", ""),
		PeriodOrder: getEnvListOrDefault("PERIOD_ORDER", nil),
		Table:       getEnvOrDefault("DATA_TABLE", "observations"),
	}, nil
}

func loadAnalysisConfig() (*AnalysisConfig, error) {
	return &AnalysisConfig{
		Threshold:       getEnvFloatOrDefault("ADOPTION_THRESHOLD", 40),
		Baseline:        strings.ToLower(getEnvOrDefault("INVESTMENT_BASELINE", "mean")),
		ConclusionsFile: getEnvOrDefault("CONCLUSIONS_FILE", ""),
	}, nil
}

func loadS3Config() *S3Config {
	return &S3Config{
		Region:    getEnvOrDefault("S3_REGION", "us-east-1"),
		Endpoint:  getEnvOrDefault("S3_ENDPOINT", ""),
		PathStyle: getEnvBoolOrDefault("S3_PATH_STYLE", false),
	}
}

func validateConfig(config *Config) error {
	if config.Data.Source == "" {
		return errors.ConfigInvalid("DATA_SOURCE is required")
	}
	if config.Data.Delimiter == config.Data.Decimal {
		return errors.ConfigInvalid("CSV_DELIMITER and CSV_DECIMAL must differ")
	}
	switch config.Data.Encoding {
	case "utf-8", "utf8", "latin1", "iso-8859-1", "windows-1252", "cp1252":
	default:
		return errors.ConfigInvalid("unsupported CSV_ENCODING " + strconv.Quote(config.Data.Encoding))
	}
	switch config.Analysis.Baseline {
	case "mean", "median":
	default:
		return errors.ConfigInvalid("INVESTMENT_BASELINE must be mean or median")
	}
	if config.Analysis.Threshold < 0 || config.Analysis.Threshold > 100 {
		return errors.ConfigInvalid("ADOPTION_THRESHOLD must lie in [0,100]")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvRuneOrDefault reads a single-character setting. "\t" and "tab" name a tab.
func getEnvRuneOrDefault(key string, defaultValue rune) (rune, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if value == `\t` || strings.EqualFold(value, "tab") {
		return '\t', nil
	}
	runes := []rune(value)
	if len(runes) != 1 {
		return 0, errors.ConfigInvalid(key + " must be a single character")
	}
	return runes[0], nil
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
