package domain

import "net"

// Protocol constants shared by the live source and the orchestrator.
const (
	// ServerPort is the well-known UDP port the seismograph sends to.
	ServerPort = 20001

	// BufferSize is the largest datagram read in a single receive.
	BufferSize = 1024

	// MaxSamples is the batch threshold. A batch is flushed once it holds
	// more than MaxSamples records.
	MaxSamples = 100
)

// AckMessage is answered to every received datagram.
var AckMessage = []byte("ACK")

// Record is one unit of received data: a datagram payload or a fixture line.
// The payload is opaque and must not be modified after it is received.
type Record struct {
	// Payload is the raw bytes as received
	Payload []byte

	// Addr is the sender, used only to acknowledge. Nil for replayed records.
	Addr net.Addr
}

// NewRecord creates a record that owns a copy of payload.
func NewRecord(payload []byte, addr net.Addr) Record {
	p := make([]byte, len(payload))
	copy(p, payload)
	return Record{Payload: p, Addr: addr}
}

// Text returns the payload decoded as text.
func (r Record) Text() string {
	return string(r.Payload)
}

// Size returns the payload length in bytes.
func (r Record) Size() int {
	return len(r.Payload)
}
