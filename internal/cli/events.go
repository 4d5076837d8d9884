package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kbukum/fetchkit/httpclient"
	"github.com/kbukum/fetchkit/sse"
)

// eventRecord is the JSON line form of an event.
type eventRecord struct {
	Event   string `json:"event,omitempty"`
	ID      string `json:"id,omitempty"`
	Data    string `json:"data"`
	RetryMS int64  `json:"retry_ms,omitempty"`
}

func writeEvent(w io.Writer, ev *sse.Event, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(eventRecord{
			Event:   ev.Event,
			ID:      ev.ID,
			Data:    ev.Data,
			RetryMS: ev.Retry.Milliseconds(),
		})
	}
	name := ev.Event
	if name == "" {
		name = "message"
	}
	header := color.New(color.FgCyan, color.Bold).Sprint(name)
	if ev.ID != "" {
		header += color.New(color.Faint).Sprintf(" #%s", ev.ID)
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n\n", header, ev.Data)
	return err
}

func newEventsCommand(g *globalFlags) *cobra.Command {
	var (
		rf          requestFlags
		lastEventID string
		maxEvents   int
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "events <url>",
		Short: "Tail a server-sent event stream",
		Long: `Open a text/event-stream and print each event as it arrives.

Examples:
  fetchkit events https://example.com/updates
  fetchkit events --jsonl --max 10 https://example.com/updates`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := rf.options()
			if err != nil {
				return withExitCode(ExitUsageError, err)
			}
			if lastEventID != "" {
				opts = append(opts, httpclient.WithHeader("Last-Event-ID", lastEventID))
			}

			return g.run(cmd, nil, func(ctx context.Context, rt *runtime) error {
				reader, err := sse.Open(ctx, rt.clients.Client(), args[0], opts...)
				if err != nil {
					return err
				}
				defer reader.Close()

				seen := 0
				for ev, err := range reader.All() {
					if err != nil {
						if ctx.Err() != nil {
							return nil
						}
						return err
					}
					if err := writeEvent(cmd.OutOrStdout(), ev, asJSON); err != nil {
						return err
					}
					seen++
					if maxEvents > 0 && seen >= maxEvents {
						break
					}
				}
				return nil
			})
		},
	}

	rf.register(cmd)
	for _, name := range []string{"method", "file", "data", "json"} {
		_ = cmd.Flags().MarkHidden(name)
	}
	fl := cmd.Flags()
	fl.StringVar(&lastEventID, "last-event-id", "", "Resume after this event id")
	fl.IntVar(&maxEvents, "max", 0, "Stop after this many events (0 means no limit)")
	fl.BoolVar(&asJSON, "jsonl", false, "Print events as JSON lines")
	return cmd
}
