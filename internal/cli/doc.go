// Package cli implements the fetchkit command line: one-off requests,
// server-sent event tails, a latency bench and a watch mode that re-runs a
// request file whenever it changes.
package cli
