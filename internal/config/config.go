package config

import (
	"fmt"
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	DefaultLineTolerance = 10.0
	DefaultCanvasWidth   = 800
	DefaultCanvasMargin  = 10
	DefaultFontSize      = 40.0
	DefaultLineSpacing   = 10
	DefaultInkColor      = "#0000ff"
	DefaultFontPath      = "static/fonts/EduQLDHand-Regular.ttf"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	OCRTimeout         time.Duration
	MaxRequestBodySize int64
	LogLevel           string

	OCR         OCRConfig
	Handwriting HandwritingConfig
	Azure       AzureConfig
}

// OCRConfig controls the text extraction pipeline
type OCRConfig struct {
	Language       string
	Workers        int
	MinConfidence  float64
	Preprocess     bool
	TessdataPrefix string
	LineTolerance  float64
}

// HandwritingConfig controls the handwriting renderer
type HandwritingConfig struct {
	FontPath    string
	FontSize    float64
	CanvasWidth int
	Margin      int
	LineSpacing int
	InkColor    string
}

// AzureConfig enables archiving of generated images and blob image sources
type AzureConfig struct {
	AccountName string
	AccountKey  string
	Container   string
}

// Enabled reports whether blob storage credentials are present
func (a AzureConfig) Enabled() bool {
	return a.AccountName != "" && a.AccountKey != ""
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		OCRTimeout:         parseDurationOrDefault("OCR_TIMEOUT", 20*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		OCR: OCRConfig{
			Language:       getEnvOrDefault("OCR_LANGUAGE", "eng"),
			Workers:        int(parseIntOrDefault("OCR_WORKERS", 0)),
			MinConfidence:  parseFloatOrDefault("OCR_MIN_CONFIDENCE", 0),
			Preprocess:     parseBoolOrDefault("OCR_PREPROCESS", true),
			TessdataPrefix: os.Getenv("TESSDATA_PREFIX"),
			LineTolerance:  parseFloatOrDefault("LINE_TOLERANCE", DefaultLineTolerance),
		},
		Handwriting: HandwritingConfig{
			FontPath:    getEnvOrDefault("FONT_PATH", DefaultFontPath),
			FontSize:    parseFloatOrDefault("FONT_SIZE", DefaultFontSize),
			CanvasWidth: int(parseIntOrDefault("CANVAS_WIDTH", DefaultCanvasWidth)),
			Margin:      int(parseIntOrDefault("CANVAS_MARGIN", DefaultCanvasMargin)),
			LineSpacing: int(parseIntOrDefault("LINE_SPACING", DefaultLineSpacing)),
			InkColor:    getEnvOrDefault("INK_COLOR", DefaultInkColor),
		},
		Azure: AzureConfig{
			AccountName: os.Getenv("AZURE_STORAGE_ACCOUNT"),
			AccountKey:  os.Getenv("AZURE_STORAGE_KEY"),
			Container:   getEnvOrDefault("AZURE_STORAGE_CONTAINER", "handwriting"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and formats of every setting
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.OCRTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, ocr=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.OCRTimeout)
	}

	if c.OCR.LineTolerance < 0 || !finite(c.OCR.LineTolerance) {
		return fmt.Errorf("LINE_TOLERANCE must be a finite number >= 0 (got %g)", c.OCR.LineTolerance)
	}
	if c.OCR.Workers < 0 {
		return fmt.Errorf("OCR_WORKERS must be >= 0 (got %d)", c.OCR.Workers)
	}
	if !finite(c.OCR.MinConfidence) || c.OCR.MinConfidence < 0 || c.OCR.MinConfidence > 1 {
		return fmt.Errorf("OCR_MIN_CONFIDENCE must be within [0,1] (got %g)", c.OCR.MinConfidence)
	}
	if strings.TrimSpace(c.OCR.Language) == "" {
		return fmt.Errorf("OCR_LANGUAGE must not be empty")
	}

	hw := c.Handwriting
	if strings.TrimSpace(hw.FontPath) == "" {
		return fmt.Errorf("FONT_PATH must not be empty")
	}
	if hw.FontSize <= 0 || !finite(hw.FontSize) {
		return fmt.Errorf("FONT_SIZE must be a finite number > 0 (got %g)", hw.FontSize)
	}
	if hw.CanvasWidth <= 0 {
		return fmt.Errorf("CANVAS_WIDTH must be > 0 (got %d)", hw.CanvasWidth)
	}
	if hw.Margin < 0 || hw.LineSpacing < 0 {
		return fmt.Errorf("CANVAS_MARGIN and LINE_SPACING must be >= 0 (got margin=%d, spacing=%d)",
			hw.Margin, hw.LineSpacing)
	}
	if _, err := colorful.Hex(hw.InkColor); err != nil {
		return fmt.Errorf("invalid INK_COLOR %q: %w", hw.InkColor, err)
	}

	if (c.Azure.AccountName == "") != (c.Azure.AccountKey == "") {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
