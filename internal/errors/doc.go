// Package errors provides coded errors with user-facing explanations.
//
// Each code maps to a registered template holding a category, a short
// message, a longer detail and a documentation link. Errors are created from
// the registry and decorated before they are returned:
//
//	return errors.New("E101").
//	    WithDetailf("no node matches %q", selector).
//	    WithSuggestion("Check the mount selector in plop.yaml")
//
// The package-level sentinels match any error with the same code, so callers
// test with errors.Is(err, errors.ErrElementNotFound).
//
// # Codes
//
//   - E100-E109: runtime startup
//   - E110-E119: event decoding
//   - E120-E129: configuration
//   - E130-E139: wire codec
//   - E140-E149: command line
//
// Format renders an error for a terminal; colors are enabled only when
// stderr is one.
package errors
