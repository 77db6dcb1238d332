package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mlpipe/domain/core"
	"mlpipe/internal/errors"
)

// Object store backends
const (
	StoreS3    = "s3"
	StoreGCS   = "gcs"
	StoreLocal = "local"
)

// Solvers supported by the trainer
const (
	SolverLBFGS    = "lbfgs"
	SolverNewtonCG = "newton-cg"
)

// Config represents the complete configuration for one pipeline run.
// It is built once by Load and passed explicitly to every component.
type Config struct {
	Pipeline PipelineConfig
	Source   SourceConfig
	Store    StoreConfig
	Schema   SchemaConfig
	Split    SplitConfig
	Trainer  TrainerConfig
	Registry RegistryConfig
	Ledger   LedgerConfig
	Report   ReportConfig
	LogLevel string
	Paths    Paths
}

// PipelineConfig names the run and fixes its timestamp
type PipelineConfig struct {
	Name        string
	ArtifactDir string
	CreatedAt   core.Timestamp
}

// SourceConfig locates the document collection to ingest
type SourceConfig struct {
	MongoURL       string
	DatabaseName   string
	CollectionName string
}

// StoreConfig selects and configures the object store
type StoreConfig struct {
	Backend  string
	Bucket   string
	Region   string
	Endpoint string
	LocalDir string
}

// SchemaConfig locates the dataset schema file
type SchemaConfig struct {
	Path string
}

// SplitConfig controls the stratified train/test split
type SplitConfig struct {
	TestSize float64
	Seed     int64
}

// TrainerConfig holds logistic regression settings
type TrainerConfig struct {
	MaxIter       int
	Solver        string
	C             float64
	ExpectedScore float64
}

// RegistryConfig locates the production model
type RegistryConfig struct {
	ProductionModelKey string
}

// LedgerConfig selects the run ledger database
type LedgerConfig struct {
	Driver string
	DSN    string
}

// ReportConfig toggles the XLSX run report
type ReportConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	return LoadAt(time.Now())
}

// LoadAt is Load with an explicit run time
func LoadAt(now time.Time) (*Config, error) {
	config := &Config{}

	pipelineConfig := loadPipelineConfig(now)
	config.Pipeline = *pipelineConfig

	config.Source = SourceConfig{
		MongoURL:       getEnvOrDefault("MONGODB_URL", "mongodb://localhost:27017"),
		DatabaseName:   getEnvOrDefault("DATABASE_NAME", "personality"),
		CollectionName: getEnvOrDefault("COLLECTION_NAME", "personality_data"),
	}

	config.Store = StoreConfig{
		Backend:  strings.ToLower(getEnvOrDefault("OBJECT_STORE", StoreS3)),
		Bucket:   getEnvOrDefault("MODEL_BUCKET_NAME", "personality-model-bucket"),
		Region:   getEnvOrDefault("AWS_DEFAULT_REGION", "us-east-1"),
		Endpoint: getEnvOrDefault("AWS_ENDPOINT_URL", "http://localhost:4566"),
		LocalDir: getEnvOrDefault("LOCAL_STORE_DIR", filepath.Join(config.Pipeline.ArtifactDir, "bucket")),
	}

	config.Schema = SchemaConfig{
		Path: getEnvOrDefault("SCHEMA_FILE_PATH", filepath.Join("config", "schema.yaml")),
	}

	splitConfig, err := loadSplitConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load split configuration")
	}
	config.Split = *splitConfig

	trainerConfig, err := loadTrainerConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load trainer configuration")
	}
	config.Trainer = *trainerConfig

	config.Registry = RegistryConfig{
		ProductionModelKey: getEnvOrDefault("PRODUCTION_MODEL_KEY", "model-registry/model.json"),
	}

	config.Ledger = LedgerConfig{
		Driver: strings.ToLower(getEnvOrDefault("LEDGER_DRIVER", "sqlite")),
		DSN:    getEnvOrDefault("LEDGER_DSN", filepath.Join(config.Pipeline.ArtifactDir, "ledger.db")),
	}

	reportEnabled, err := getEnvBool("REPORT_ENABLED", true)
	if err != nil {
		return nil, err
	}
	config.Report = ReportConfig{Enabled: reportEnabled}
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", "INFO")

	config.Paths = NewPaths(config.Pipeline.ArtifactDir, config.Pipeline.CreatedAt.Stamp())

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Settings returns the values that change what a run produces, for fingerprinting
func (c *Config) Settings() map[string]interface{} {
	return map[string]interface{}{
		"source.database":     c.Source.DatabaseName,
		"source.collection":   c.Source.CollectionName,
		"split.test_size":     c.Split.TestSize,
		"split.seed":          c.Split.Seed,
		"trainer.max_iter":    c.Trainer.MaxIter,
		"trainer.solver":      c.Trainer.Solver,
		"trainer.c":           c.Trainer.C,
		"trainer.expected":    c.Trainer.ExpectedScore,
		"registry.production": c.Registry.ProductionModelKey,
		"store.bucket":        c.Store.Bucket,
		"pipeline.name":       c.Pipeline.Name,
	}
}

func loadPipelineConfig(now time.Time) *PipelineConfig {
	return &PipelineConfig{
		Name:        getEnvOrDefault("PIPELINE_NAME", "personality"),
		ArtifactDir: getEnvOrDefault("ARTIFACT_DIR", "artifact"),
		CreatedAt:   core.NewTimestamp(now),
	}
}

func loadSplitConfig() (*SplitConfig, error) {
	testSize, err := getEnvFloat("SPLIT_SIZE", 0.2)
	if err != nil {
		return nil, err
	}
	seed, err := getEnvInt("RANDOM_SEED", 42)
	if err != nil {
		return nil, err
	}
	return &SplitConfig{TestSize: testSize, Seed: int64(seed)}, nil
}

func loadTrainerConfig() (*TrainerConfig, error) {
	maxIter, err := getEnvInt("MODEL_TRAINER_MAX_ITER", 1000)
	if err != nil {
		return nil, err
	}
	c, err := getEnvFloat("MODEL_TRAINER_C", 1.0)
	if err != nil {
		return nil, err
	}
	expected, err := getEnvFloat("MODEL_TRAINER_EXPECTED_SCORE", 0.6)
	if err != nil {
		return nil, err
	}
	return &TrainerConfig{
		MaxIter:       maxIter,
		Solver:        strings.ToLower(getEnvOrDefault("MODEL_TRAINER_SOLVER", SolverLBFGS)),
		C:             c,
		ExpectedScore: expected,
	}, nil
}

func validateConfig(config *Config) error {
	switch config.Store.Backend {
	case StoreS3, StoreGCS, StoreLocal:
	default:
		return errors.ConfigInvalid("unknown OBJECT_STORE: " + config.Store.Backend)
	}
	if config.Store.Bucket == "" {
		return errors.ConfigInvalid("MODEL_BUCKET_NAME is required")
	}
	if config.Split.TestSize <= 0 || config.Split.TestSize >= 1 {
		return errors.ConfigInvalid("SPLIT_SIZE must be in (0, 1)")
	}
	switch config.Trainer.Solver {
	case SolverLBFGS, SolverNewtonCG:
	default:
		return errors.ConfigInvalid("unsupported MODEL_TRAINER_SOLVER: " + config.Trainer.Solver)
	}
	if config.Trainer.MaxIter <= 0 {
		return errors.ConfigInvalid("MODEL_TRAINER_MAX_ITER must be positive")
	}
	if config.Trainer.C <= 0 {
		return errors.ConfigInvalid("MODEL_TRAINER_C must be positive")
	}
	if config.Registry.ProductionModelKey == "" {
		return errors.ConfigInvalid("PRODUCTION_MODEL_KEY is required")
	}
	switch config.Ledger.Driver {
	case "sqlite", "postgres":
	default:
		return errors.ConfigInvalid("unknown LEDGER_DRIVER: " + config.Ledger.Driver)
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

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer: " + value)
	}
	return intValue, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be a number: " + value)
	}
	return floatValue, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.ConfigInvalid(key + " must be a boolean: " + value)
	}
	return boolValue, nil
}
