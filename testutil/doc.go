// Package testutil provides lifecycle helpers for test components.
//
// Test components are regular components with Reset, Snapshot and Restore,
// so fixtures can be shared across test cases without restarting them. The
// httpfixture subpackage provides the HTTP server used by fetchkit's tests.
//
//	func TestFeature(t *testing.T) {
//	    fx := httpfixture.New()
//	    testutil.T(t).Setup(fx)
//	    // fx is stopped when the test ends
//	}
//
// Managing multiple components:
//
//	manager := testutil.NewManager(ctx)
//	manager.Add(plain)
//	manager.Add(secure)
//	if err := manager.StartAll(); err != nil { ... }
//	defer manager.StopAll()
package testutil
