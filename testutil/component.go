package testutil

import (
	"context"

	"github.com/kbukum/fetchkit/component"
)

// TestComponent extends component.Component with testing-specific lifecycle methods.
// Fixture servers implement it so they can be started by the registry like any
// other component and reset between test cases.
type TestComponent interface {
	component.Component

	// Reset restores the component to its initial state.
	Reset(ctx context.Context) error

	// Snapshot captures the current state of the component.
	// The returned data can be passed to Restore() to return to this state.
	Snapshot(ctx context.Context) (interface{}, error)

	// Restore restores the component to a previously captured state.
	Restore(ctx context.Context, snapshot interface{}) error
}
