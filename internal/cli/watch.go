package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/kbukum/fetchkit/dispatch"
	"github.com/kbukum/fetchkit/logger"
)

// WatchDebounceDelay is how long watch waits after the last file event
// before reloading.
const WatchDebounceDelay = 200 * time.Millisecond

// watchFile runs the request in path and runs it again whenever the file is
// saved with a different request. It returns when ctx is done.
func watchFile(ctx context.Context, d *dispatch.Dispatcher, path string, out io.Writer, debounce time.Duration, log *logger.Logger) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()
	// Editors often replace the file, so the directory is watched.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := d.Watch()
	defer w.Close()

	dim := color.New(color.Faint).SprintFunc()
	submit := func() {
		rf, err := LoadRequestFile(abs)
		if err != nil {
			fmt.Fprintf(out, "%s %v\n", color.RedString("invalid request file:"), err)
			return
		}
		req, err := rf.Build()
		if err != nil {
			fmt.Fprintf(out, "%s %v\n", color.RedString("invalid request:"), err)
			return
		}
		if !w.Submit(ctx, req) {
			fmt.Fprintf(out, "%s\n", dim("request unchanged, not re-run"))
		}
	}

	trigger := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	submit()
	fmt.Fprintf(out, "%s\n", dim(fmt.Sprintf("watching %s (press Ctrl+C to stop)", path)))

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-trigger:
			submit()

		case res, ok := <-w.Results():
			if !ok {
				return nil
			}
			if err := writeResult(out, res); err != nil {
				return err
			}

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn("file watcher error", logger.ErrorFields("watch", err))
		}
	}
}

// writeResult prints one published state. A Success response is closed.
func writeResult(out io.Writer, res dispatch.Result) error {
	switch res.State() {
	case dispatch.StateLoading:
		fmt.Fprintf(out, "%s\n", color.New(color.Faint).Sprint("fetching..."))
	case dispatch.StateError:
		fmt.Fprintf(out, "%s %v\n", color.RedString("error:"), res.Err())
	case dispatch.StateSuccess:
		resp := res.Response()
		defer resp.Close()
		code, err := resp.StatusCode()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", statusLine(code), color.New(color.Faint).Sprint(resp.URL()))
		if err := writeBody(out, resp, true); err != nil {
			fmt.Fprintf(out, "%s %v\n", color.RedString("error:"), err)
			return nil
		}
		fmt.Fprintln(out)
	}
	return nil
}

func newWatchCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <request-file>",
		Short: "Re-run a request file whenever it changes",
		Long: `Run the request described by a YAML request file, then run it again
each time the file is saved. Saves that leave the request unchanged
(same url, headers, params, auth and payload) are not re-run, and a
call still in flight is cancelled when a newer one starts.

Example:
  fetchkit watch search.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, nil, func(ctx context.Context, rt *runtime) error {
				return watchFile(ctx, rt.pool.Dispatcher(), args[0], cmd.OutOrStdout(), WatchDebounceDelay, rt.app.Logger)
			})
		},
	}
}
