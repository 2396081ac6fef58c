package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/kardianos/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"motionberry-cli/internal/client"
	"motionberry-cli/internal/metrics"
	"motionberry-cli/internal/status"
)

// Variables to hold flag values
var (
	expPort       string
	serviceAction string // "install", "uninstall", "start", "stop"
)

// --- SERVICE WRAPPER ---

// program implements the kardianos/service interface
type program struct {
	api      *client.MotionClient
	layout   status.Layout
	port     string
	lockPath string
	logger   *slog.Logger

	server *http.Server
	lock   *flock.Flock
	cancel context.CancelFunc
	done   chan struct{}
}

func (p *program) Start(s service.Service) error {
	// Start should not block. Do the actual work async.
	if err := os.MkdirAll(filepath.Dir(p.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	p.lock = flock.New(p.lockPath)
	locked, err := p.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire exporter lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another exporter is already running (lock %s)", p.lockPath)
	}

	// 1. Status stream
	syncer := status.NewSynchronizer(p.api, status.NewBoard(p.layout), status.WithLogger(p.logger))

	// 2. Setup Prometheus
	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewStatusCollector(syncer))
	registry.MustRegister(collectors.NewGoCollector())

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	p.server = &http.Server{
		Addr:              fmt.Sprintf(":%s", p.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, syncer)
	return nil
}

func (p *program) run(ctx context.Context, syncer *status.Synchronizer) {
	defer close(p.done)

	go func() {
		if err := syncer.Run(ctx); err != nil {
			p.logger.Error("status synchronizer stopped", "error", err)
		}
	}()
	// Drain updates; the collector reads the board directly.
	go func() {
		for u := range syncer.Updates() {
			p.logger.Debug("status update", "applied", u.Applied)
		}
	}()

	p.logger.Info("Motionberry exporter listening", "addr", p.server.Addr)

	// Blocking call to listen
	if err := p.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		p.logger.Error("HTTP server error", "error", err)
	}
}

func (p *program) Stop(s service.Service) error {
	p.logger.Info("Stopping service...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if p.cancel != nil {
		p.cancel()
	}
	if p.server != nil {
		if err := p.server.Shutdown(ctx); err != nil {
			p.logger.Warn("Server forced to shutdown", "error", err)
		}
	}
	if p.done != nil {
		select {
		case <-p.done:
		case <-ctx.Done():
		}
	}
	if p.lock != nil {
		_ = p.lock.Unlock()
	}
	return nil
}

// --- COMMAND ---

var exporterCmd = &cobra.Command{
	Use:   "exporter",
	Short: "Start Prometheus Exporter service",
	Long: `Starts a long-running HTTP server that exposes the camera, recording and
motion detection status as Prometheus metrics.
Can be installed as a system service.`,
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings()
		logger := newLogger(settings)
		api := setupClient(settings)

		port := settings.Exporter.Port
		if cmd.Flags().Changed("port") {
			port = expPort
		}

		// 1. Define Service Configuration
		svcConfig := &service.Config{
			Name:        "motionberry-exporter",
			DisplayName: "Motionberry Prometheus Exporter",
			Description: "Exposes Motionberry camera status to Prometheus",
			// Arguments passed to the binary when run as a service
			Arguments: []string{
				"exporter",
				"--host", settings.BaseURL,
				"--port", port,
			},
		}
		if cfgFile != "" {
			svcConfig.Arguments = append(svcConfig.Arguments, "--config", cfgFile)
		}

		prg := &program{
			api:      api,
			layout:   boardLayout(settings),
			port:     port,
			lockPath: settings.Exporter.LockFile,
			logger:   logger,
		}

		s, err := service.New(prg, svcConfig)
		if err != nil {
			log.Fatal(err)
		}

		// 2. Handle Service Control Actions (Install, Start, Stop, Uninstall)
		if serviceAction != "" {
			err = service.Control(s, serviceAction)
			if err != nil {
				log.Fatalf("Failed to %s service: %v", serviceAction, err)
			}
			fmt.Printf("Service action '%s' completed successfully.\n", serviceAction)
			return
		}

		// 3. Run the Service (Blocking)
		// This happens when the Service Manager starts the binary, OR when run interactively without flags
		svcLogger, err := s.Logger(nil)
		if err != nil {
			log.Fatal(err)
		}
		if err = s.Run(); err != nil {
			_ = svcLogger.Error(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(exporterCmd)
	exporterCmd.Flags().StringVar(&expPort, "port", "9101", "Port to listen on (default from config)")
	exporterCmd.Flags().StringVar(&serviceAction, "service", "", "Service action: install, uninstall, start, stop")
}
