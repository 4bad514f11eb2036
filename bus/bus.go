package bus

import (
	"context"

	"github.com/ardnew/softvga/pkg"
)

// Speed represents the bus connection speed class.
type Speed uint8

// Bus speed constants (USB 2.0/3.x Specification).
const (
	SpeedUnknown   Speed = iota // Not connected or unknown
	SpeedLow                    // Low Speed (1.5 Mbit/s)
	SpeedFull                   // Full Speed (12 Mbit/s)
	SpeedHigh                   // High Speed (480 Mbit/s)
	SpeedSuper                  // SuperSpeed (5 Gbit/s)
	SpeedSuperPlus              // SuperSpeed+ (10 Gbit/s)
)

// String returns a human-readable speed name.
func (s Speed) String() string {
	switch s {
	case SpeedLow:
		return "Low Speed"
	case SpeedFull:
		return "Full Speed"
	case SpeedHigh:
		return "High Speed"
	case SpeedSuper:
		return "SuperSpeed"
	case SpeedSuperPlus:
		return "SuperSpeed+"
	default:
		return "Unknown"
	}
}

// CompletionFunc is invoked when an asynchronous bulk transfer finishes.
// It executes on the bus completion context, not the submitter's goroutine,
// and must not block.
type CompletionFunc func(req *Request, status pkg.TransferStatus)

// Request describes one asynchronous bulk OUT transfer.
//
// The payload is a scatter-gather view of a logically contiguous buffer:
// a slice of page fragments whose lengths sum to Size. A Request with
// Size 0 and a nil Payload is a zero-length packet marking an end-of-frame
// boundary on the wire.
type Request struct {
	// Payload holds the page fragments to transmit, in order.
	Payload [][]byte

	// Size is the total number of payload bytes across all fragments.
	Size int

	// Complete is called exactly once when the transfer finishes,
	// succeeds or not.
	Complete CompletionFunc

	// Tag carries opaque submitter context through to completion.
	Tag any
}

// BulkHAL defines the hardware abstraction for the streaming bulk endpoint
// of a display-bridge adapter.
//
// The HAL owns a single bulk OUT endpoint. Submissions are asynchronous:
// SubmitBulk queues the transfer and returns; the request's completion
// callback fires from the HAL's own completion context. Platform vendors
// implement this interface to run the stream core over real controller
// hardware; the loopback implementation runs it over an in-memory endpoint.
//
// All methods are safe for concurrent use.
type BulkHAL interface {
	// SubmitBulk queues one asynchronous bulk OUT transfer.
	//
	// A pkg.ErrNoResources return indicates a transient shortage of
	// transfer slots; the caller may retry. Any other error is a
	// permanent submission failure.
	SubmitBulk(ctx context.Context, req *Request) error

	// ClearHalt clears a halted (stalled) condition on the endpoint.
	ClearHalt(ctx context.Context) error

	// CancelAll force-cancels every outstanding transfer. Each cancelled
	// request's completion callback fires with a cancelled status.
	CancelAll()

	// WaitIdle blocks until no transfers remain outstanding or the
	// context expires.
	WaitIdle(ctx context.Context) error

	// MaxPacketSize returns the endpoint's maximum packet size in bytes.
	MaxPacketSize() int

	// Speed returns the connection speed class of the adapter.
	Speed() Speed
}
