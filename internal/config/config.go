package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override (RULEGATE_SERVER_PORT)
const EnvPrefix = "RULEGATE"

// Config is the process-wide configuration, loaded once at startup
type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Server ServerConfig `mapstructure:"server"`
	CORS   CORSConfig   `mapstructure:"cors"`
	Log    LogConfig    `mapstructure:"log"`
	Export ExportConfig `mapstructure:"export"`
}

// StoreConfig locates the remote REST store
type StoreConfig struct {
	URL     string        `mapstructure:"url"`
	Key     string        `mapstructure:"key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	BindAttempts   int           `mapstructure:"bind_attempts"`
	BindRetryDelay time.Duration `mapstructure:"bind_retry_delay"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout must cover the interactive save dialog
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CORSConfig lists browser origins allowed to call the API
type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

// LogConfig selects level and encoder
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ExportConfig selects how export destinations are chosen
type ExportConfig struct {
	// Chooser is "dialog" (native save dialog) or "static" (headless)
	Chooser string `mapstructure:"chooser"`
	// Dir is the static chooser's root; empty means the documents directory
	Dir string `mapstructure:"dir"`
}

// Chooser kinds
const (
	ChooserDialog = "dialog"
	ChooserStatic = "static"
)

// Addr returns host:port
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Init loads .env and the optional YAML config file into the global viper
func Init(cfgFile string) {
	// Load .env file (ignore if not exists)
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
	}

	Setup(viper.GetViper())

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}
}

// Setup registers defaults and environment bindings on v
func Setup(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// the store credentials also answer to their legacy names
	_ = v.BindEnv("store.url", EnvPrefix+"_STORE_URL", "SUPABASE_URL")
	_ = v.BindEnv("store.key", EnvPrefix+"_STORE_KEY", "SUPABASE_SERVICE_KEY")

	v.SetDefault("store.timeout", 30*time.Second)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.bind_attempts", 3)
	v.SetDefault("server.bind_retry_delay", 2*time.Second)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Minute)
	v.SetDefault("cors.origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("export.chooser", ChooserDialog)
	v.SetDefault("export.dir", "")
}

// Load reads the global viper into a validated Config
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads v into a validated Config. Missing store credentials are an error.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the process cannot start without
func (c *Config) Validate() error {
	var errs []error
	if c.Store.URL == "" {
		errs = append(errs, errors.New("store.url is required (SUPABASE_URL)"))
	}
	if c.Store.Key == "" {
		errs = append(errs, errors.New("store.key is required (SUPABASE_SERVICE_KEY)"))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Export.Chooser {
	case ChooserDialog, ChooserStatic:
	default:
		errs = append(errs, fmt.Errorf("export.chooser must be %q or %q, got %q", ChooserDialog, ChooserStatic, c.Export.Chooser))
	}
	return errors.Join(errs...)
}
