// Package util holds small helpers for presenting request and response data:
// masking credentials in logs and stripping control characters from values
// printed to a terminal.
package util
