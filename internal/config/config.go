package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	appName        = "motionberry"
	configBaseName = ".motionberry"
	envPrefix      = "MOTIONBERRY"
)

// ActionConfig is one user-defined action link under the "actions" key.
type ActionConfig struct {
	URL         string `mapstructure:"url"`
	Body        string `mapstructure:"body"`
	Description string `mapstructure:"description"`
}

// Settings is the resolved configuration used by every command.
type Settings struct {
	BaseURL       string                  `mapstructure:"base_url"`
	Insecure      bool                    `mapstructure:"insecure"`
	Timeout       time.Duration           `mapstructure:"timeout"`
	StreamPath    string                  `mapstructure:"stream_path"`
	OpenAPIPath   string                  `mapstructure:"openapi_path"`
	DownloadDir   string                  `mapstructure:"download_dir"`
	RecordSeconds int                     `mapstructure:"record_seconds"`
	Layout        map[string]int          `mapstructure:"layout"`
	Actions       map[string]ActionConfig `mapstructure:"actions"`
	Log           LogSettings             `mapstructure:"log"`
	Exporter      ExporterSettings        `mapstructure:"exporter"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ExporterSettings struct {
	Port     string `mapstructure:"port"`
	LockFile string `mapstructure:"lock_file"`
}

// SetDefaults registers default values on v.
// Every Settings key needs one, even if empty, so Unmarshal picks up values
// that only arrive through the environment.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "")
	v.SetDefault("insecure", false)
	v.SetDefault("stream_path", "/api/status_stream")
	v.SetDefault("openapi_path", "/openapi.json")
	v.SetDefault("download_dir", DefaultDownloadDir())
	v.SetDefault("record_seconds", 10)
	v.SetDefault("timeout", 0)
	v.SetDefault("layout.camera", 1)
	v.SetDefault("layout.recording", 1)
	v.SetDefault("layout.motion", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("exporter.port", "9101")
	v.SetDefault("exporter.lock_file", filepath.Join(xdg.RuntimeDir, "motionberry-exporter.lock"))
}

// DefaultDownloadDir is the user's download directory plus "motionberry".
func DefaultDownloadDir() string {
	if xdg.UserDirs.Download != "" {
		return filepath.Join(xdg.UserDirs.Download, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return appName
	}
	return filepath.Join(home, "Downloads", appName)
}

// InitConfig reads in config file and ENV variables if set.
// A .env file in the working directory is loaded first so its values are
// visible to AutomaticEnv.
func InitConfig(cfgFile string) {
	_ = godotenv.Load()
	initViper(viper.GetViper(), cfgFile)
}

func initViper(v *viper.Viper, cfgFile string) {
	SetDefaults(v)

	if cfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, appName))
		v.SetConfigType("yaml")
		v.SetConfigName(configBaseName)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // read in environment variables that match

	// A missing file is fine; base_url can also come from the environment.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Warning: could not read config %s: %v\n", cfgFile, err)
		}
	}
}

// Load resolves Settings from v.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if s.RecordSeconds <= 0 {
		return nil, fmt.Errorf("record_seconds must be positive, got %d", s.RecordSeconds)
	}
	for name, n := range s.Layout {
		if n < 0 {
			return nil, fmt.Errorf("layout.%s must not be negative", name)
		}
	}
	return &s, nil
}

// SaveServer updates the config file with the server base URL.
func SaveServer(baseURL string) error {
	viper.Set("base_url", baseURL)

	// Ensure the file exists before writing
	if err := viper.WriteConfig(); err != nil {
		// If file doesn't exist, create it
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return viper.SafeWriteConfig()
		}
		// If it exists but failed to write, try writing to default path
		home, _ := os.UserHomeDir()
		path := filepath.Join(home, configBaseName+".yaml")
		return viper.WriteConfigAs(path)
	}
	return nil
}
