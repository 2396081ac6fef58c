package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"motionberry-cli/internal/config"
	"motionberry-cli/internal/render"
	"motionberry-cli/internal/status"
)

var (
	watchOnce    bool
	watchCompact bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow camera, recording and motion detection status",
	Long: `Subscribes to the server's status stream and keeps the indicators up to
date until interrupted. Connection errors are logged and the stream is
reopened automatically.`,
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings()
		logger := newLogger(settings)
		api := setupClient(settings)

		url, err := api.StreamURL()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		syncer := status.NewSynchronizer(api, status.NewBoard(boardLayout(settings)), status.WithLogger(logger))
		done := make(chan error, 1)
		go func() { done <- syncer.Run(ctx) }()

		printer := render.NewBoardPrinter(render.ShouldColorize(os.Stdout))
		if !jsonOutput {
			fmt.Printf("Watching %s (Ctrl+C to stop)\n", url)
		}

		for u := range syncer.Updates() {
			switch {
			case jsonOutput:
				printJSON(u.Status)
			case watchCompact || watchOnce:
				fmt.Println(printer.Compact(u.At, u.Snapshot))
			default:
				fmt.Println()
				for _, line := range printer.Lines(u.Snapshot) {
					fmt.Println(line)
				}
			}
			if watchOnce {
				stop()
				break
			}
		}

		if err := <-done; err != nil {
			fmt.Printf("Error watching status: %v\n", err)
			os.Exit(1)
		}
	},
}

// boardLayout converts the configured layout into indicator counts.
func boardLayout(settings *config.Settings) status.Layout {
	layout := status.Layout{}
	for _, cat := range status.Categories {
		if n, ok := settings.Layout[string(cat)]; ok {
			layout[cat] = n
		}
	}
	return layout
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Print the first status received and exit")
	watchCmd.Flags().BoolVar(&watchCompact, "compact", false, "Print one line per update")
}
