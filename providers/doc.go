// Package providers implements the OAuth2 authorization-code flow with
// PKCE that SaaS integrations build on. Provider profiles describe the
// fixed API surface (base URL, required headers, pagination style) the
// resilient client needs.
package providers
