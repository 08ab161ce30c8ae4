package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"sigs.k8s.io/yaml"

	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/dataprep"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/model"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/stats"
)

// DefaultSource is the public passenger table.
const DefaultSource = "https://raw.githubusercontent.com/datasciencedojo/datasets/master/titanic.csv"

// Cross-validation scopes.
const (
	ScopeTest = "test" // folds over the held-out test partition
	ScopeAll  = "all"  // folds over every cleaned row
)

// Config holds every knob of a run.
type Config struct {
	// Input
	Source       string `json:"source"`
	Sheet        string `json:"sheet,omitempty"`
	Target       string `json:"target"`
	FetchTimeout string `json:"fetch_timeout"`

	// Split
	TestFraction float64 `json:"test_fraction"`
	Seed         int64   `json:"seed"`

	// Preprocessing
	BaselineImpute string `json:"baseline_impute"`
	FitOnTrain     bool   `json:"fit_on_train"`
	Degenerate     string `json:"degenerate"`

	// Classifier
	MaxIterations int     `json:"max_iterations"`
	C             float64 `json:"C"`
	Tolerance     float64 `json:"tolerance"`
	Solver        string  `json:"solver"`
	LearningRate  float64 `json:"learning_rate"`

	// Cross-validation
	CVFolds      int    `json:"cv_folds"`
	RefitPerFold bool   `json:"refit_per_fold"`
	CVStratified bool   `json:"cv_stratified"`
	CVShuffle    bool   `json:"cv_shuffle"`
	CVScope      string `json:"cv_scope"`

	// Output
	LogLevel string `json:"log_level"`
	Plot     string `json:"plot,omitempty"`
}

func Default() *Config {
	return &Config{
		Source:         DefaultSource,
		Target:         "Survived",
		FetchTimeout:   "30s",
		TestFraction:   0.2,
		Seed:           42,
		BaselineImpute: string(dataprep.PerSplit),
		Degenerate:     string(stats.DegenerateReject),
		MaxIterations:  1000,
		C:              1.0,
		Tolerance:      1e-4,
		Solver:         string(model.LBFGS),
		LearningRate:   0.1,
		CVFolds:        5,
		RefitPerFold:   true,
		CVStratified:   true,
		CVScope:        ScopeTest,
		LogLevel:       "info",
	}
}

// Load starts from Default, applies the YAML file at path (if any), then the
// environment. Unknown keys in the file are an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.UnmarshalStrict(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadEnvFile reads KEY=value pairs from an env file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Environment overrides for the settings most often changed between runs.
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("SURVIVAL_SOURCE"); v != "" {
		cfg.Source = v
	}
	if v := os.Getenv("SURVIVAL_SHEET"); v != "" {
		cfg.Sheet = v
	}
	if v := os.Getenv("SURVIVAL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SURVIVAL_PLOT"); v != "" {
		cfg.Plot = v
	}
	if v := os.Getenv("SURVIVAL_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SURVIVAL_SEED: %w", err)
		}
		cfg.Seed = n
	}
	return nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Source == "" {
		errs = append(errs, errors.New("source is required"))
	}
	if c.Target == "" {
		errs = append(errs, errors.New("target is required"))
	}
	if d, err := time.ParseDuration(c.FetchTimeout); err != nil || d <= 0 {
		errs = append(errs, fmt.Errorf("fetch_timeout must be a positive duration, got %q", c.FetchTimeout))
	}
	if !(c.TestFraction > 0 && c.TestFraction < 1) {
		errs = append(errs, fmt.Errorf("test_fraction must be in (0,1), got %v", c.TestFraction))
	}
	switch dataprep.SplitPolicy(c.BaselineImpute) {
	case dataprep.PerSplit, dataprep.TrainOnly:
	default:
		errs = append(errs, fmt.Errorf("baseline_impute must be per_split or train, got %q", c.BaselineImpute))
	}
	switch stats.DegeneratePolicy(c.Degenerate) {
	case stats.DegenerateReject, stats.DegenerateZero:
	default:
		errs = append(errs, fmt.Errorf("degenerate must be reject or zero, got %q", c.Degenerate))
	}
	if c.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("max_iterations must be positive, got %d", c.MaxIterations))
	}
	if !(c.C > 0) {
		errs = append(errs, fmt.Errorf("C must be positive, got %v", c.C))
	}
	if !(c.Tolerance > 0) {
		errs = append(errs, fmt.Errorf("tolerance must be positive, got %v", c.Tolerance))
	}
	if _, err := model.ParseSolver(c.Solver); err != nil {
		errs = append(errs, err)
	}
	if !(c.LearningRate > 0) {
		errs = append(errs, fmt.Errorf("learning_rate must be positive, got %v", c.LearningRate))
	}
	if c.CVFolds < 2 {
		errs = append(errs, fmt.Errorf("cv_folds must be at least 2, got %d", c.CVFolds))
	}
	if c.CVScope != ScopeTest && c.CVScope != ScopeAll {
		errs = append(errs, fmt.Errorf("cv_scope must be test or all, got %q", c.CVScope))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		errs = append(errs, fmt.Errorf("log_level %q is not a level", c.LogLevel))
	}
	return errors.Join(errs...)
}

// Timeout returns FetchTimeout as a duration. Call after Validate.
func (c *Config) Timeout() time.Duration {
	d, _ := time.ParseDuration(c.FetchTimeout)
	return d
}

// YAML renders the configuration in the file format Load reads.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
