// Package ports defines the interfaces that connect the receive loop to
// infrastructure adapters.
//
// # Port Interfaces
//
//   - [Source]: where records come from (UDP socket or fixture replay)
//   - [Sink]: where a completed batch goes (file or pipeline backend)
//   - [Logger]: structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// The application layer (internal/app) depends only on these interfaces.
// Adapters under internal/adapters provide the concrete variants;
// pkg/seismograph picks one Source and one Sink from configuration at
// startup unless the caller supplies its own.
package ports
