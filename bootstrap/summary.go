package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/kbukum/fetchkit/component"
)

// ClientInfo describes a remote endpoint the program talks to.
type ClientInfo struct {
	Name   string
	Target string
	Type   string
}

// Summary renders the startup report: the components with their details,
// the tracked clients and a live health check.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	clients         []ClientInfo
	out             io.Writer
}

// NewSummary creates a summary that writes to stderr.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
		out:         os.Stderr,
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackClient records a remote endpoint.
func (s *Summary) TrackClient(name, target, clientType string) {
	s.clients = append(s.clients, ClientInfo{Name: name, Target: target, Type: clientType})
}

// Display writes the summary including live health from the registry.
// It does nothing when the output is nil.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	if s.out == nil {
		return
	}
	w := s.out
	bold := color.New(color.Bold).SprintFunc()

	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n\n", bold(s.serviceName), version, s.startupDuration.Seconds())

	var comps []component.Component
	if registry != nil {
		comps = registry.All()
	}
	if len(comps) == 0 {
		fmt.Fprintf(w, "   └── No components registered\n")
	} else {
		fmt.Fprintf(w, "%s\n", bold("Components"))
		for i, c := range comps {
			line := c.Name()
			if d, ok := c.(component.Describable); ok {
				desc := d.Describe()
				line = fmt.Sprintf("%s [%s] %s", desc.Name, desc.Type, desc.Details)
			}
			fmt.Fprintf(w, "   %s %s\n", treePrefix(i, len(comps)), line)
		}
	}

	if len(s.clients) > 0 {
		fmt.Fprintf(w, "\n%s\n", bold("Clients"))
		for i, c := range s.clients {
			fmt.Fprintf(w, "   %s %s → %s [%s]\n", treePrefix(i, len(s.clients)), c.Name, c.Target, c.Type)
		}
	}

	if registry != nil {
		results := registry.HealthAll(ctx)
		if len(results) > 0 {
			fmt.Fprintf(w, "\n%s\n", bold("Health"))
			for i, h := range results {
				msg := ""
				if h.Message != "" {
					msg = " - " + h.Message
				}
				fmt.Fprintf(w, "   %s %s: %s%s\n", treePrefix(i, len(results)), h.Name, healthStatus(h.Status), msg)
			}
		}
	}
	fmt.Fprintf(w, "\n")
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatus(status component.HealthStatus) string {
	text := strings.ToLower(string(status))
	switch status {
	case component.StatusHealthy:
		return color.GreenString(text)
	case component.StatusDegraded:
		return color.YellowString(text)
	case component.StatusUnhealthy:
		return color.RedString(text)
	default:
		return text
	}
}
