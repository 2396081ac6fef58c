package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"motionberry-cli/internal/render"
)

var docsPath string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Show the server's API documentation",
	Long:  `Fetches the server's OpenAPI document and lists the operations it describes.`,
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings()
		api := setupClient(settings)

		doc, err := api.GetOpenAPI(context.Background(), docsPath)
		if err != nil {
			fmt.Printf("Failed to load API document: %v\n", err)
			os.Exit(1)
		}

		ops := doc.Operations()
		if jsonOutput {
			printJSON(ops)
			return
		}

		title := doc.Info.Title
		if title == "" {
			title = settings.BaseURL
		}
		fmt.Printf("%s %s (OpenAPI %s)\n", title, doc.Info.Version, doc.Version())

		rows := make([][]string, 0, len(ops))
		for _, op := range ops {
			rows = append(rows, []string{op.Method, op.Path, op.Summary, strings.Join(op.Tags, ",")})
		}
		fmt.Println(render.Table([]string{"METHOD", "PATH", "SUMMARY", "TAGS"}, rows, nil))
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.Flags().StringVar(&docsPath, "path", "", "Path of the OpenAPI document (default from config)")
}
