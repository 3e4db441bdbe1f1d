package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "time"

    "github.com/go-playground/validator/v10"
    "github.com/kelseyhightower/envconfig"

    "macroagg/internal/etlerr"
)

// Leaf fields read <SECTION>_<FIELD_IN_WORDS>, e.g. FRED_BASE_URL or
// FRED_MAX_REQUESTS_PER_MINUTE. There is no unprefixed fallback.
type FRED struct {
    BaseURL              string `json:"base_url" split_words:"true" validate:"required,url"`
    TimeoutSec           int    `json:"timeout_sec" split_words:"true" validate:"gte=0"`
    MaxRequestsPerMinute int    `json:"max_requests_per_minute" split_words:"true" validate:"gte=0"`
    Burst                int    `json:"burst" split_words:"true" validate:"gte=0"`
}

type ECB struct {
    BaseURL    string `json:"base_url" split_words:"true" validate:"required,url"`
    TimeoutSec int    `json:"timeout_sec" split_words:"true" validate:"gte=0"`
}

type Files struct {
    // Root resolves the relative file identifiers of the registry.
    Root    string `json:"root" split_words:"true"`
    Workers int    `json:"workers" split_words:"true" validate:"gte=1,lte=64"`
}

type Pipeline struct {
    Workers    int    `json:"workers" split_words:"true" validate:"gte=0"`
    TimeoutSec int    `json:"timeout_sec" split_words:"true" validate:"gte=0"`
    Policy     string `json:"policy" split_words:"true" validate:"oneof=fail_fast isolate"`
}

// Output holds the sink destinations. An empty path disables that sink.
type Output struct {
    CSVPath     string `json:"csv_path" split_words:"true"`
    ParquetPath string `json:"parquet_path" split_words:"true"`
    XLSXPath    string `json:"xlsx_path" split_words:"true"`
    XLSXSheet   string `json:"xlsx_sheet" split_words:"true"`
    GraphDir    string `json:"graph_dir" split_words:"true"`
}

type Log struct {
    Level  string `json:"level" split_words:"true" validate:"oneof=debug info warn error"`
    Format string `json:"format" split_words:"true" validate:"oneof=json text"`
}

type Metrics struct {
    TextfilePath string `json:"textfile_path" split_words:"true"`
}

type Config struct {
    APIKey   string   `json:"api_key" envconfig:"API_KEY"`
    FRED     FRED     `json:"fred" envconfig:"FRED"`
    ECB      ECB      `json:"ecb" envconfig:"ECB"`
    Files    Files    `json:"files" envconfig:"FILES"`
    Pipeline Pipeline `json:"pipeline" envconfig:"PIPELINE"`
    Output   Output   `json:"output" envconfig:"OUTPUT"`
    Log      Log      `json:"log" envconfig:"LOG"`
    Metrics  Metrics  `json:"metrics" envconfig:"METRICS"`
}

func Default() Config {
    return Config{
        FRED: FRED{
            BaseURL:              "https://api.stlouisfed.org/fred/series/observations",
            TimeoutSec:           30,
            MaxRequestsPerMinute: 120,
            Burst:                5,
        },
        ECB: ECB{
            BaseURL:    "https://data-api.ecb.europa.eu/service/data/",
            TimeoutSec: 30,
        },
        Files:    Files{Workers: 2},
        Pipeline: Pipeline{Policy: "fail_fast"},
        Output: Output{
            CSVPath:     "outputs/csv/result.csv",
            ParquetPath: "outputs/parquet/result.parquet",
            XLSXPath:    "outputs/xlsx/result.xlsx",
            XLSXSheet:   "result",
            GraphDir:    "outputs/graph",
        },
        Log: Log{Level: "info", Format: "json"},
    }
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it starts from defaults. Environment variables override any field.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        if _, err := os.Stat("config.json"); err == nil {
            path = "config.json"
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, etlerr.NewIOError(path, err)
        }
        if err == nil {
            if err := json.Unmarshal(b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config %s: %w", path, err)
            }
        }
    }
    if err := envconfig.Process("", &cfg); err != nil {
        return cfg, fmt.Errorf("read environment: %w", err)
    }
    if err := cfg.Validate(); err != nil {
        return cfg, err
    }
    return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks ranges, URLs and enums.
func (c Config) Validate() error {
    if err := validate.Struct(c); err != nil {
        return fmt.Errorf("invalid config: %w", err)
    }
    return nil
}

// RequireAPIKey fails when no FRED credential is configured.
func (c Config) RequireAPIKey() error {
    if c.APIKey == "" { return etlerr.NewConfigError("API_KEY") }
    return nil
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func (f FRED) Timeout() time.Duration     { return seconds(f.TimeoutSec) }
func (e ECB) Timeout() time.Duration      { return seconds(e.TimeoutSec) }
func (p Pipeline) Timeout() time.Duration { return seconds(p.TimeoutSec) }
