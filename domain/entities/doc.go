// Package entities provides the core data model of the waPC host engine.
// These types carry no runtime dependencies and are shared by the call engine,
// the host call registry and the runtime adapters.
package entities
