package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Storage drivers.
const (
	StorageSQLite = "sqlite"
	StorageFS     = "fs"
)

// Generation providers.
const (
	ProviderMock = "mock"
	ProviderHTTP = "http"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Storage    StorageConfig     `yaml:"storage"`
	Generation GenerationConfig  `yaml:"generation"`
	Events     EventsConfig      `yaml:"events"`
	Auth       AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Generation.Validate(); err != nil {
		return err
	}
	if err := c.Events.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
	CORS     CORSConfig `yaml:"cors"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig selects where saved itineraries live.
type StorageConfig struct {
	Driver string       `yaml:"driver"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	FS     FSConfig     `yaml:"fs"`
}

// Validate validates the storage configuration. Only the path of the
// selected driver is required.
func (c *StorageConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(StorageSQLite, StorageFS)),
	); err != nil {
		return err
	}
	if c.Driver == StorageFS {
		return c.FS.Validate()
	}
	return c.SQLite.Validate()
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// FSConfig holds the directory for file-per-slot storage.
type FSConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the FS configuration.
func (c *FSConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// GenerationConfig configures the itinerary generator.
//
// Provider "mock" serves canned itineraries after a random delay;
// "http" calls the backend at BaseURL.
type GenerationConfig struct {
	Provider  string        `yaml:"provider"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	Fencing   bool          `yaml:"fencing"`
	RateLimit float64       `yaml:"rate_limit"`
	Burst     int           `yaml:"burst"`
	Mock      MockConfig    `yaml:"mock"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// Validate validates the generation configuration.
func (c *GenerationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In(ProviderMock, ProviderHTTP)),
		validation.Field(&c.BaseURL, validation.When(c.Provider == ProviderHTTP, validation.Required)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.RateLimit, validation.Min(0.0)),
		validation.Field(&c.Burst, validation.Min(0)),
		validation.Field(&c.CacheTTL, validation.Min(time.Duration(0))),
	); err != nil {
		return err
	}
	return c.Mock.Validate()
}

// MockConfig bounds the simulated latency of the mock provider.
type MockConfig struct {
	MinDelay time.Duration `yaml:"min_delay"`
	MaxDelay time.Duration `yaml:"max_delay"`
}

// Validate validates the mock configuration.
func (c *MockConfig) Validate() error {
	if c.MaxDelay < c.MinDelay {
		return fmt.Errorf("generation.mock: max_delay %s is below min_delay %s", c.MaxDelay, c.MinDelay)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.MinDelay, validation.Min(time.Duration(0))),
	)
}

// EventsConfig configures the SSE stream.
type EventsConfig struct {
	// MapThrottle is the minimum gap between two map.updated events.
	MapThrottle time.Duration `yaml:"map_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MapThrottle, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			CORS: CORSConfig{
				AllowedOrigins: []string{"*"},
			},
		},
		Storage: StorageConfig{
			Driver: StorageSQLite,
			SQLite: SQLiteConfig{Path: "./itinera.db"},
			FS:     FSConfig{Path: "./saved"},
		},
		Generation: GenerationConfig{
			Provider:  ProviderMock,
			BaseURL:   "http://localhost:8000",
			Fencing:   true,
			RateLimit: 2,
			Burst:     4,
			Mock: MockConfig{
				MinDelay: 1500 * time.Millisecond,
				MaxDelay: 3 * time.Second,
			},
			CacheTTL: 10 * time.Minute,
		},
		Events: EventsConfig{
			MapThrottle: 2 * time.Second,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
