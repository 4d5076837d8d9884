// Package component defines the lifecycle contract shared by the fetchkit
// client and dispatcher.
//
// A Component is started before use, reports its health, and is stopped
// when the host shuts down. Registry starts components in registration
// order and stops them in reverse.
package component
