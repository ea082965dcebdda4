// Package errors provides structured, coded errors for carbyne.
//
// Every contract violation the runtime can detect has a registered code
// (e.g. "E102") that maps to a short message, a longer explanation and a
// category. Coded errors compare equal under errors.Is when their codes
// match, so package-level sentinels can be declared once and matched against
// errors created later with additional context.
//
// # Error Categories
//
//   - observable: misuse of the reactive value API (read-only sets, missing inverses)
//   - lifecycle: misuse of the node lifecycle (destroyed nodes, missing runtime)
//   - controller: controller ownership violations
//   - config: invalid configuration files or values
//   - snapshot: failures writing rendered snapshots
//
// # Usage
//
//	err := errors.New(errors.CodeNoInverse).
//	    WithDetail("celsius -> fahrenheit").
//	    WithSuggestion("Pass a Set function in the Transformer")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E102: Transform has no inverse
//	//
//	//   celsius -> fahrenheit
//	//
//	//   Hint: Pass a Set function in the Transformer
package errors
