package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const weightSumTolerance = 1e-9

type Config struct {
	HTTPPort    string `envconfig:"HTTP_PORT" default:"3000"`
	ObsHTTPAddr string `envconfig:"OBS_HTTP_ADDR" default:":9090"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"chatsim"`

	DialogsCount    int           `envconfig:"DIALOGS_COUNT" default:"10" validate:"gte=1"`
	MessageInterval time.Duration `envconfig:"MESSAGE_INTERVAL" default:"1s" validate:"gt=0"`

	DefaultPageSize int `envconfig:"DEFAULT_PAGE_SIZE" default:"10" validate:"gte=1"`
	MaxPageSize     int `envconfig:"MAX_PAGE_SIZE" default:"50" validate:"gte=1"`

	TextWeight  float64 `envconfig:"TEXT_WEIGHT" default:"0.7" validate:"gte=0,lte=1"`
	ImageWeight float64 `envconfig:"IMAGE_WEIGHT" default:"0.2" validate:"gte=0,lte=1"`
	VideoWeight float64 `envconfig:"VIDEO_WEIGHT" default:"0.1" validate:"gte=0,lte=1"`

	DeliverySuccessRate float64 `envconfig:"DELIVERY_SUCCESS_RATE" default:"0.7" validate:"gte=0,lte=1"`

	// RandSeed of 0 seeds from entropy; anything else replays identical traffic.
	RandSeed uint64 `envconfig:"RAND_SEED" default:"0"`

	TracingEnabled bool   `envconfig:"TRACING_ENABLED" default:"false"`
	JaegerURL      string `envconfig:"JAEGER_URL" default:"http://localhost:14268/api/traces"`
}

// Load reads configuration from the environment (plus an optional .env
// file) and validates it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.HTTPPort = fixPort(cfg.HTTPPort)
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	sum := c.TextWeight + c.ImageWeight + c.VideoWeight
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("invalid config: message type weights must sum to 1.0, got %v", sum)
	}
	if c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("invalid config: DEFAULT_PAGE_SIZE %d exceeds MAX_PAGE_SIZE %d", c.DefaultPageSize, c.MaxPageSize)
	}
	return nil
}

func fixPort(port string) string {
	if port != "" && !strings.HasPrefix(port, ":") {
		return ":" + port
	}
	return port
}
