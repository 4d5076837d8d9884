package httpclient

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/fetchkit/component"
	"github.com/kbukum/fetchkit/testutil/httpfixture"
)

func TestComponent_Lifecycle(t *testing.T) {
	ctx := context.Background()
	comp := NewComponent(Config{Timeout: 5 * time.Second})

	if comp.Name() != "http" {
		t.Errorf("expected default name http, got %s", comp.Name())
	}
	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := comp.Stop(ctx); err != nil {
		t.Errorf("stop before start should be a no-op, got %v", err)
	}

	if err := comp.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s: %s", h.Status, h.Message)
	}

	fx := httpfixture.Start(t)
	resp, err := comp.Client().Get(ctx, fx.URL()+"/status/200")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status, _ := resp.StatusCode(); status != 200 {
		t.Errorf("expected 200, got %d", status)
	}

	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy || h.Message != "client not available" {
		t.Errorf("expected unhealthy after stop, got %+v", h)
	}
}

func TestComponent_StartRejectsInvalidConfig(t *testing.T) {
	comp := NewComponent(Config{Timeout: -time.Second})
	if err := comp.Start(context.Background()); err == nil {
		t.Error("expected error for negative timeout")
	}
}

func TestComponent_Describe(t *testing.T) {
	comp := NewComponent(Config{Name: "crawler", MaxRedirects: 4})
	desc := comp.Describe()
	if desc.Name != "crawler" || desc.Type != "httpclient" {
		t.Errorf("unexpected description %+v", desc)
	}
	if !strings.Contains(desc.Details, "timeout=30s") || !strings.Contains(desc.Details, "max_redirects=4") {
		t.Errorf("unexpected details %q", desc.Details)
	}
	if !strings.Contains(desc.Details, "tls=false") {
		t.Errorf("expected tls=false, got %q", desc.Details)
	}
}
