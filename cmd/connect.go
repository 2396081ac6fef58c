package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"motionberry-cli/internal/client"
	"motionberry-cli/internal/config"
)

// connectCmd checks a server and remembers it for later commands.
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Save the Motionberry server to use",
	Long: `Checks that the server answers on /api/status and saves its base URL in
the config file for future commands.

Example:
  motionberry connect --host "http://raspberrypi.local:5000"`,
	Run: func(cmd *cobra.Command, args []string) {
		host, err := connectTarget(hostOverride)
		if err != nil {
			log.Fatalf("Fatal: %v", err)
		}

		fmt.Printf("Checking %s ...\n", host)

		api := client.New(client.ClientConfig{BaseURL: host})
		st, err := api.Health()
		if err != nil {
			log.Fatalf("Fatal: Server check failed: %v", err)
		}

		fmt.Printf("Server status: %s. Saving configuration...\n", st)

		if err := config.SaveServer(host); err != nil {
			log.Fatalf("Failed to save configuration file: %v", err)
		}

		fmt.Println("Server saved. You can now run commands like 'motionberry watch'.")
	},
}

// connectTarget normalises the root --host value for connect.
func connectTarget(host string) (string, error) {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return "", errors.New("--host is required")
	}
	return host, nil
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
