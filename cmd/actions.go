package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"motionberry-cli/internal/action"
	"motionberry-cli/internal/config"
	"motionberry-cli/internal/render"
)

// Variables to hold flag values
var (
	noDownload     bool
	outputDir      string
	recordDuration int
	postURL        string
	postBody       string
)

// setupDispatcher builds the dispatcher and catalog from the config.
func setupDispatcher() (*action.Dispatcher, action.Catalog, *config.Settings) {
	settings := loadSettings()
	logger := newLogger(settings)
	api := setupClient(settings)

	var saver action.Saver
	if !noDownload {
		dir := settings.DownloadDir
		if outputDir != "" {
			dir = outputDir
		}
		saver = action.DirSaver{Dir: dir}
	}

	extra := make(map[string]action.Link, len(settings.Actions))
	for name, a := range settings.Actions {
		extra[name] = action.Link{URL: a.URL, Body: a.Body, Description: a.Description}
	}

	return action.NewDispatcher(api, saver, logger), action.NewCatalog(settings.RecordSeconds, extra), settings
}

// runLinks dispatches links and reports every result. It exits non-zero if
// any trigger failed; download failures are reported but do not fail.
func runLinks(links []action.Link) {
	d, _, _ := setupDispatcher()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results := d.DispatchAll(ctx, links)

	if jsonOutput {
		printJSON(resultViews(results))
	} else {
		for _, r := range results {
			printResult(r)
		}
	}

	for _, r := range results {
		if !r.OK() {
			os.Exit(1)
		}
	}
}

type resultView struct {
	Action        string `json:"action"`
	URL           string `json:"url"`
	OK            bool   `json:"ok"`
	Message       string `json:"message,omitempty"`
	Filename      string `json:"filename,omitempty"`
	SavedTo       string `json:"saved_to,omitempty"`
	Bytes         int64  `json:"bytes,omitempty"`
	Error         string `json:"error,omitempty"`
	DownloadError string `json:"download_error,omitempty"`
}

func resultViews(results []action.Result) []resultView {
	views := make([]resultView, 0, len(results))
	for _, r := range results {
		v := resultView{Action: r.Link.Name, URL: r.Link.URL, OK: r.OK()}
		if r.Response != nil {
			v.Message = firstNonEmpty(r.Response.Message, r.Response.Status)
			v.Filename = r.Response.Filename
		}
		if r.Download != nil {
			v.SavedTo = r.Download.Path
			v.Bytes = r.Download.Bytes
		}
		if r.TriggerErr != nil {
			v.Error = r.TriggerErr.Error()
		}
		if r.DownloadErr != nil {
			v.DownloadError = r.DownloadErr.Error()
		}
		views = append(views, v)
	}
	return views
}

func printResult(r action.Result) {
	name := r.Link.Name
	if name == "" {
		name = r.Link.URL
	}
	if !r.OK() {
		fmt.Printf("%s: failed: %v\n", name, r.TriggerErr)
		return
	}

	msg := "done"
	if r.Response != nil {
		msg = firstNonEmpty(r.Response.Message, r.Response.Status, msg)
	}
	fmt.Printf("%s: %s (%s)\n", name, msg, r.Elapsed.Round(time.Millisecond))

	switch {
	case r.Download != nil:
		fmt.Printf("  saved %s to %s (%s)\n", r.Download.Filename, r.Download.Path, humanize.Bytes(uint64(r.Download.Bytes)))
	case r.DownloadErr != nil:
		fmt.Printf("  download failed: %v\n", r.DownloadErr)
	case r.Response != nil && r.Response.Filename != "":
		fmt.Printf("  capture on server: %s\n", r.Response.Filename)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Parent Command
var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Run server actions",
	Long:  `List and run the built-in and configured action links.`,
}

var actionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available actions",
	Run: func(cmd *cobra.Command, args []string) {
		_, catalog, _ := setupDispatcher()

		if jsonOutput {
			links := make([]action.Link, 0, len(catalog))
			for _, name := range catalog.Names() {
				links = append(links, catalog[name])
			}
			printJSON(links)
			return
		}

		rows := make([][]string, 0, len(catalog))
		for _, name := range catalog.Names() {
			l := catalog[name]
			rows = append(rows, []string{l.Name, "POST " + l.URL, l.Body, l.Description})
		}
		fmt.Println(render.Table([]string{"NAME", "REQUEST", "BODY", "DESCRIPTION"}, rows, nil))
	},
}

var actionRunCmd = &cobra.Command{
	Use:     "run <name> [name...]",
	Short:   "Run one or more actions by name",
	Example: `  motionberry action run snapshot enable-detection`,
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, catalog, _ := setupDispatcher()

		links := make([]action.Link, 0, len(args))
		for _, name := range args {
			l, err := catalog.Lookup(name)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			links = append(links, l)
		}
		runLinks(links)
	},
}

var actionPostCmd = &cobra.Command{
	Use:     "post",
	Short:   "POST to an arbitrary action URL",
	Example: `  motionberry action post --url /api/record --body '{"duration": 5}'`,
	Run: func(cmd *cobra.Command, args []string) {
		runLinks([]action.Link{{Name: postURL, URL: postURL, Body: postBody}})
	},
}

// Snapshot Command
var snapshotCmd = &cobra.Command{
	Use:     "snapshot",
	Short:   "Take a snapshot and download it",
	Example: `  motionberry snapshot --output-dir ./captures`,
	Run: func(cmd *cobra.Command, args []string) {
		runLinks([]action.Link{action.Snapshot()})
	},
}

// Record Command
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a clip and download it",
	Long:  `Asks the server to record for the given duration. The command returns once the clip is finished and downloaded.`,
	Example: `  motionberry record --seconds 30
  motionberry record --seconds 30 --no-download`,
	Run: func(cmd *cobra.Command, args []string) {
		seconds := recordDuration
		if !cmd.Flags().Changed("seconds") {
			seconds = loadSettings().RecordSeconds
		}
		if seconds <= 0 {
			fmt.Println("Error: --seconds must be positive.")
			os.Exit(1)
		}
		fmt.Printf("Recording for %d seconds...\n", seconds)
		runLinks([]action.Link{action.Record(seconds)})
	},
}

var detectionCmd = &cobra.Command{
	Use:   "detection",
	Short: "Enable or disable motion detection",
}

var detectionEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Start motion detection",
	Run: func(cmd *cobra.Command, args []string) {
		runLinks([]action.Link{action.EnableDetection()})
	},
}

var detectionDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Stop motion detection",
	Run: func(cmd *cobra.Command, args []string) {
		runLinks([]action.Link{action.DisableDetection()})
	},
}

func addDownloadFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().BoolVar(&noDownload, "no-download", false, "Leave captures on the server")
		c.Flags().StringVar(&outputDir, "output-dir", "", "Directory for downloaded captures (default from config)")
	}
}

func init() {
	// Register Parents
	rootCmd.AddCommand(actionCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(detectionCmd)

	// Register Subcommands
	actionCmd.AddCommand(actionListCmd)
	actionCmd.AddCommand(actionRunCmd)
	actionCmd.AddCommand(actionPostCmd)
	detectionCmd.AddCommand(detectionEnableCmd)
	detectionCmd.AddCommand(detectionDisableCmd)

	addDownloadFlags(actionRunCmd, actionPostCmd, snapshotCmd, recordCmd)

	// Flags for Post
	actionPostCmd.Flags().StringVar(&postURL, "url", "", "Action URL, relative to the server or absolute")
	actionPostCmd.Flags().StringVar(&postBody, "body", "", "Optional JSON request body")
	_ = actionPostCmd.MarkFlagRequired("url")

	// Flags for Record
	recordCmd.Flags().IntVar(&recordDuration, "seconds", 10, "Duration in seconds (default from config)")
}
