// Package dispatch routes tool invocations to registered handlers and
// reduces every execution to one of three outcomes: a success payload,
// a typed error, or an authorization-required redirect. Raw credentials
// never appear in any outcome.
package dispatch
