package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"motionberry-cli/internal/action"
	"motionberry-cli/internal/render"
)

var capturesFilter string

var capturesCmd = &cobra.Command{
	Use:   "captures",
	Short: "Browse and download captures",
	Long:  `List the snapshots and clips stored on the server, or download one by name.`,
}

var capturesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List captures on the server",
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings()
		api := setupClient(settings)

		captures, err := api.ListCaptures(context.Background())
		if err != nil {
			fmt.Printf("Error fetching captures: %v\n", err)
			os.Exit(1)
		}

		var filtered []string
		for _, c := range captures {
			if capturesFilter == "" || strings.Contains(c, capturesFilter) {
				filtered = append(filtered, c)
			}
		}
		sort.Strings(filtered)

		// --- JSON OUTPUT ---
		if jsonOutput {
			printJSON(filtered)
			return
		}
		// -------------------

		if len(filtered) == 0 {
			fmt.Println("No captures found.")
			return
		}

		rows := make([][]string, 0, len(filtered))
		for _, c := range filtered {
			kind := strings.TrimPrefix(strings.ToLower(filepath.Ext(c)), ".")
			if kind == "" {
				kind = "-"
			}
			rows = append(rows, []string{c, kind})
		}
		fmt.Println(render.Table([]string{"NAME", "TYPE"}, rows, nil))
	},
}

var capturesGetCmd = &cobra.Command{
	Use:     "get <filename> [filename...]",
	Short:   "Download captures by name",
	Example: `  motionberry captures get clip1.mp4 --output-dir ./clips`,
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings()
		api := setupClient(settings)

		dir := settings.DownloadDir
		if outputDir != "" {
			dir = outputDir
		}
		saver := action.DirSaver{Dir: dir}

		failed := false
		for _, name := range args {
			ctx := context.Background()
			path, n, err := saver.Save(ctx, name, func(w io.Writer) (int64, error) {
				return api.FetchCapture(ctx, name, w)
			})
			if err != nil {
				fmt.Printf("Error downloading %s: %v\n", name, err)
				failed = true
				continue
			}
			fmt.Printf("Saved %s to %s (%s)\n", name, path, humanize.Bytes(uint64(n)))
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(capturesCmd)
	capturesCmd.AddCommand(capturesListCmd)
	capturesCmd.AddCommand(capturesGetCmd)

	capturesListCmd.Flags().StringVar(&capturesFilter, "filter", "", "Only show names containing this text")
	capturesGetCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for downloaded captures (default from config)")
}
