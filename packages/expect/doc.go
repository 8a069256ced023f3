// Package expect is a small pluggable expectation library.
//
// Types are registered with an identification predicate and an inspector, and
// assertions are registered under declarative patterns such as
//
//	<WebElement> [not] to have attribute <string>
//
// Callers run an assertion with Registry.Expect. A nil error means it passed;
// failures are reported as *Failure, subjects or arguments of the wrong type
// as *TypeError. Plugins bundle related types and assertions and install them
// with Registry.Use.
package expect
