// Package core contains the runtime's domain contracts, entities, and the
// authorization broker. Lower-level adapters must depend on this package;
// core must not depend on provider-specific or transport-specific adapters.
package core
