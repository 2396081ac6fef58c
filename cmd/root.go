package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"motionberry-cli/internal/client"
	"motionberry-cli/internal/config"
	"motionberry-cli/internal/logging"
)

var cfgFile string
var jsonOutput bool
var hostOverride string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "motionberry",
	Short: "A console for the Motionberry motion capture server",
	Long: `Watch camera, recording and motion detection status, trigger snapshots
and recordings, and download captures from a Motionberry server.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() { config.InitConfig(cfgFile) })

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.motionberry.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().StringVar(&hostOverride, "host", "", "Server base URL, overrides the saved one")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (console, json)")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// loadSettings resolves the config, exiting on invalid values.
func loadSettings() *config.Settings {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if hostOverride != "" {
		settings.BaseURL = strings.TrimRight(hostOverride, "/")
	}
	return settings
}

func newLogger(settings *config.Settings) *slog.Logger {
	logger, err := logging.New(logging.Options{
		Level:  settings.Log.Level,
		Format: settings.Log.Format,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// Helper to initialize a client for the configured server.
func setupClient(settings *config.Settings) *client.MotionClient {
	if settings.BaseURL == "" {
		fmt.Println("Error: No server configured. Please run 'motionberry connect --host <url>' first.")
		os.Exit(1)
	}

	return client.New(client.ClientConfig{
		BaseURL:     settings.BaseURL,
		StreamPath:  settings.StreamPath,
		OpenAPIPath: settings.OpenAPIPath,
		Timeout:     settings.Timeout,
		Insecure:    settings.Insecure,
	})
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Printf("Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
