package pkg

import "errors"

// Transfer and stream errors.
var (
	// ErrStall indicates a halted bulk endpoint.
	ErrStall = errors.New("endpoint stalled")

	// ErrTimeout indicates a transfer timeout.
	ErrTimeout = errors.New("transfer timeout")

	// ErrCancelled indicates a cancelled transfer or operation.
	ErrCancelled = errors.New("transfer cancelled")

	// ErrNoDevice indicates the adapter is not present.
	ErrNoDevice = errors.New("device not present")

	// ErrNoResources indicates a transient resource shortage
	// (e.g., transfer slots on the bus controller).
	ErrNoResources = errors.New("no resources available")

	// ErrNoMemory indicates a buffer allocation failure.
	ErrNoMemory = errors.New("insufficient memory")

	// ErrProtocol indicates an unrecoverable bus protocol fault.
	ErrProtocol = errors.New("protocol error")

	// ErrNotEnabled indicates the stream is not enabled.
	ErrNotEnabled = errors.New("stream not enabled")

	// ErrAlreadyEnabled indicates the stream is already enabled.
	ErrAlreadyEnabled = errors.New("stream already enabled")

	// ErrModeRejected indicates no PLL configuration satisfies the
	// requested display mode within the error budget.
	ErrModeRejected = errors.New("display mode rejected")

	// ErrBandwidth indicates the bus speed cannot carry the requested
	// pixel clock at any supported pixel depth.
	ErrBandwidth = errors.New("insufficient bandwidth")

	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotConfigured indicates the stream has no negotiated mode.
	ErrNotConfigured = errors.New("stream not configured")
)

// TransferStatus represents the completion status of a bulk transfer.
type TransferStatus int

// Transfer status values.
const (
	TransferStatusSuccess   TransferStatus = iota // Transfer completed successfully
	TransferStatusError                           // Transfer failed with error
	TransferStatusStall                           // Endpoint stalled
	TransferStatusTimeout                         // Transfer timed out
	TransferStatusCancelled                       // Transfer was cancelled
	TransferStatusNoDevice                        // Device disconnected mid-transfer
)

// String returns a string representation of the transfer status.
func (s TransferStatus) String() string {
	switch s {
	case TransferStatusSuccess:
		return "success"
	case TransferStatusError:
		return "error"
	case TransferStatusStall:
		return "stall"
	case TransferStatusTimeout:
		return "timeout"
	case TransferStatusCancelled:
		return "cancelled"
	case TransferStatusNoDevice:
		return "no device"
	default:
		return "unknown"
	}
}

// Error returns the corresponding error for the transfer status.
func (s TransferStatus) Error() error {
	switch s {
	case TransferStatusSuccess:
		return nil
	case TransferStatusStall:
		return ErrStall
	case TransferStatusTimeout:
		return ErrTimeout
	case TransferStatusCancelled:
		return ErrCancelled
	case TransferStatusNoDevice:
		return ErrNoDevice
	default:
		return ErrProtocol
	}
}
