// Package errors provides coded, categorized errors for urlkit.
//
// Every error carries a short code (e.g. "U001") that maps to a registered
// message, a longer explanation and a documentation link. Errors can point at
// a position inside the offending input (a URL, a config file line) and are
// rendered for terminals by Format or for HTTP clients by FormatJSON.
//
// # Error Categories
//
//   - usage: the caller passed something the codec does not accept
//   - config: urlkit.json / urlkit.yaml could not be loaded or is invalid
//   - transport: the HTTP or WebSocket service failed
//   - storage: the blob store could not read or write an object
//   - cli: command line misuse
//
// # Usage
//
//	err := errors.New("U001").
//	    WithInput("42", 1).
//	    WithSuggestion("Pass a query string or a key/value object")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR U001: Unsupported input type
//	//
//	//   <input>:1:1
//	//
//	//   → 1 │ 42
//	//       │ ^
//	//
//	//   Hint: Pass a query string or a key/value object
package errors
