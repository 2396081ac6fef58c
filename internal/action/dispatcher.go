// Package action dispatches action links against the server and saves any
// capture the action produces.
package action

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"motionberry-cli/internal/logging"
	"motionberry-cli/pkg/models"
)

// Link is a declarative trigger: POST to URL, with Body as the JSON request
// body when it is not empty.
type Link struct {
	Name        string
	URL         string
	Body        string
	Description string
}

// API is the part of the server client the dispatcher needs.
type API interface {
	Trigger(ctx context.Context, target, body string) (*models.TriggerResponse, error)
	FetchCapture(ctx context.Context, filename string, w io.Writer) (int64, error)
}

// Download describes a capture saved after an action.
type Download struct {
	Filename string // as reported by the server
	Path     string // where it was written locally
	Bytes    int64
}

// Result records both stages of a dispatch. A download failure never
// changes TriggerErr.
type Result struct {
	Link        Link
	Response    *models.TriggerResponse
	Download    *Download
	TriggerErr  error
	DownloadErr error
	Elapsed     time.Duration
}

// OK reports whether the triggering request succeeded.
func (r Result) OK() bool { return r.TriggerErr == nil }

type Dispatcher struct {
	api    API
	saver  Saver
	logger *slog.Logger
}

// NewDispatcher builds a dispatcher. A nil saver disables the download stage,
// so actions that report a filename only trigger.
func NewDispatcher(api API, saver Saver, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		api:    api,
		saver:  saver,
		logger: logging.OrDiscard(logger),
	}
}

// Dispatch runs one action. Errors are logged and returned inside the
// Result; Dispatch itself never fails.
func (d *Dispatcher) Dispatch(ctx context.Context, link Link) Result {
	start := time.Now()
	res := Result{Link: link}
	log := d.logger.With("action", link.Name, "url", link.URL)

	resp, err := d.api.Trigger(ctx, link.URL, link.Body)
	res.Response = resp
	if err != nil {
		res.TriggerErr = err
		res.Elapsed = time.Since(start)
		log.Error("API action failed", "error", err)
		return res
	}
	log.Debug("action triggered", "status", resp.Status, "message", resp.Message, "filename", resp.Filename)

	if resp.Filename == "" {
		res.Elapsed = time.Since(start)
		return res
	}
	if d.saver == nil {
		log.Info("download disabled, capture left on server", "filename", resp.Filename)
		res.Elapsed = time.Since(start)
		return res
	}

	path, n, err := d.saver.Save(ctx, resp.Filename, func(w io.Writer) (int64, error) {
		return d.api.FetchCapture(ctx, resp.Filename, w)
	})
	if err != nil {
		res.DownloadErr = err
		log.Error("Error downloading the file", "filename", resp.Filename, "error", err)
	} else {
		res.Download = &Download{Filename: resp.Filename, Path: path, Bytes: n}
		log.Info("capture saved", "path", path, "bytes", n)
	}

	res.Elapsed = time.Since(start)
	return res
}

// DispatchAll runs every link concurrently and returns results in the order
// of links. Completions may happen in any order.
func (d *Dispatcher) DispatchAll(ctx context.Context, links []Link) []Result {
	results := make([]Result, len(links))
	var wg sync.WaitGroup
	for i, link := range links {
		wg.Add(1)
		go func(i int, link Link) {
			defer wg.Done()
			results[i] = d.Dispatch(ctx, link)
		}(i, link)
	}
	wg.Wait()
	return results
}
