// Package domain contains the core entities and value objects of the
// seismograph server.
//
// This package has no dependencies on infrastructure concerns (sockets,
// files, HTTP, logging) and holds only the rules every other layer agrees on.
//
// # Entities
//
//   - [Record]: one opaque payload received from the device, plus the
//     address it came from
//   - [Batch]: an ordered run of records handed to a sink in one flush
//   - [Metadata]: process-wide identity attached to every pipeline push
//
// # Selectors
//
// [StorageMethod], [ConnectionType] and [ExhaustPolicy] are the closed sets
// of variants chosen once at startup. Their Parse functions reject unknown
// names, which is a fatal configuration error.
package domain
