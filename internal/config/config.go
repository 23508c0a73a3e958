/**
 * Configuration for the OCR wrapper
 *
 * Loads configuration from environment variables (optionally seeded from a
 * .env file by the command).
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adverant/nexus/ocr-engine/internal/logging"
	"github.com/adverant/nexus/ocr-engine/internal/processor"
)

// Backend names
const (
	BackendCLI     = "cli"
	BackendLibrary = "library"
)

// Config holds OCR wrapper configuration
type Config struct {
	// Backend selects the tesseract executable ("cli") or libtesseract ("library")
	Backend string

	// Tesseract installation
	TesseractPath  string
	TessdataPrefix string
	Language       string

	// Recognition parameters
	OEM         string
	PSM         string
	Whitelist   string
	ExtraParams string // serialized form, e.g. "-c load_system_dawg=0"

	// Failure handling
	FailurePolicy string
	Timeout       time.Duration

	// Logging
	LogLevel string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Backend:        getEnvOrDefault("OCR_BACKEND", BackendCLI),
		TesseractPath:  getEnvOrDefault("TESSERACT_PATH", "/usr/bin/tesseract"),
		TessdataPrefix: getEnvOrDefault("TESSDATA_PREFIX", ""),
		Language:       getEnvOrDefault("OCR_LANGUAGE", ""),
		OEM:            getEnvOrDefault("OCR_OEM", processor.DefaultOEM),
		PSM:            getEnvOrDefault("OCR_PSM", processor.DefaultPSM),
		Whitelist:      getEnvOrDefault("OCR_WHITELIST", processor.DefaultWhitelist),
		ExtraParams:    getEnvOrDefault("OCR_EXTRA_PARAMS", ""),
		FailurePolicy:  getEnvOrDefault("OCR_FAILURE_POLICY", "safe"),
		Timeout:        time.Duration(getEnvAsIntOrDefault("OCR_TIMEOUT_MS", 0)) * time.Millisecond,
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Backend != BackendCLI && c.Backend != BackendLibrary {
		return fmt.Errorf("OCR_BACKEND must be %q or %q, got %q", BackendCLI, BackendLibrary, c.Backend)
	}

	if c.Backend == BackendCLI && c.TesseractPath == "" {
		return fmt.Errorf("TESSERACT_PATH is required for the cli backend")
	}

	if c.OEM != "" {
		if err := intInRange("OCR_OEM", c.OEM, 0, 3); err != nil {
			return err
		}
	}

	if c.PSM != "" {
		if err := intInRange("OCR_PSM", c.PSM, 0, 13); err != nil {
			return err
		}
	}

	if strings.ContainsAny(c.Whitelist, " \t\n") {
		return fmt.Errorf("OCR_WHITELIST must not contain whitespace")
	}

	if _, err := processor.ParseParams(c.ExtraParams); err != nil {
		return fmt.Errorf("OCR_EXTRA_PARAMS: %w", err)
	}

	if _, err := processor.ParseFailurePolicy(c.FailurePolicy); err != nil {
		return fmt.Errorf("OCR_FAILURE_POLICY: %w", err)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("OCR_TIMEOUT_MS must not be negative, got %v", c.Timeout)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return nil
}

// Params assembles the recognition parameters: --oem, --psm and the
// whitelist first, then OCR_EXTRA_PARAMS, which may override them.
func (c *Config) Params() (*processor.Params, error) {
	p := processor.NewParams()
	if c.OEM != "" {
		p.SetOEM(c.OEM)
	}
	if c.PSM != "" {
		p.SetPSM(c.PSM)
	}
	if c.Whitelist != "" {
		p.SetWhitelist(c.Whitelist)
	}

	extra, err := processor.ParseParams(c.ExtraParams)
	if err != nil {
		return nil, fmt.Errorf("OCR_EXTRA_PARAMS: %w", err)
	}
	for _, k := range extra.Keys() {
		v, _ := extra.Get(k)
		p.Set(k, v)
	}
	return p, nil
}

// TesseractConfig returns the backend installation settings.
func (c *Config) TesseractConfig() *processor.TesseractConfig {
	return &processor.TesseractConfig{
		TesseractPath:  c.TesseractPath,
		Language:       c.Language,
		TessdataPrefix: c.TessdataPrefix,
	}
}

// NewEngine builds the configured backend.
func (c *Config) NewEngine() processor.Engine {
	if c.Backend == BackendLibrary {
		return processor.NewTesseractLibrary(c.TesseractConfig())
	}
	return processor.NewTesseractCLI(c.TesseractConfig())
}

// NewOCREngine builds the wrapper described by the configuration.
func (c *Config) NewOCREngine(logger *logging.Logger, deviceType string) (*processor.OCREngine, error) {
	params, err := c.Params()
	if err != nil {
		return nil, err
	}
	policy, err := processor.ParseFailurePolicy(c.FailurePolicy)
	if err != nil {
		return nil, err
	}
	return processor.NewOCREngine(c.NewEngine(),
		processor.WithParams(params),
		processor.WithFailurePolicy(policy),
		processor.WithTimeout(c.Timeout),
		processor.WithLogger(logger),
		processor.WithDeviceType(deviceType),
	), nil
}

func intInRange(name, value string, lo, hi int) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer, got %q", name, value)
	}
	if v < lo || v > hi {
		return fmt.Errorf("%s must be between %d and %d, got %d", name, lo, hi, v)
	}
	return nil
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
