// Package testutil provides test helpers for scribe components.
//
// Start a component for the duration of a test:
//
//	func TestSomething(t *testing.T) {
//	    testutil.T(t).Start(app)
//	    // app is stopped when the test ends
//	}
//
// Audio and model fixtures live in the fixtures subpackage.
package testutil
