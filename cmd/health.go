package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the server API is up",
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings()
		api := setupClient(settings)

		st, err := api.Health()
		if err != nil {
			fmt.Printf("Error checking health: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(map[string]string{"server": settings.BaseURL, "status": st})
			return
		}
		fmt.Printf("%s: %s\n", settings.BaseURL, st)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
