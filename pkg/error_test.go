package pkg

import (
	"errors"
	"testing"
)

func TestTransferStatusString(t *testing.T) {
	tests := []struct {
		status TransferStatus
		want   string
	}{
		{TransferStatusSuccess, "success"},
		{TransferStatusError, "error"},
		{TransferStatusStall, "stall"},
		{TransferStatusTimeout, "timeout"},
		{TransferStatusCancelled, "cancelled"},
		{TransferStatusNoDevice, "no device"},
		{TransferStatus(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("TransferStatus(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestTransferStatusError(t *testing.T) {
	tests := []struct {
		status TransferStatus
		want   error
	}{
		{TransferStatusSuccess, nil},
		{TransferStatusStall, ErrStall},
		{TransferStatusTimeout, ErrTimeout},
		{TransferStatusCancelled, ErrCancelled},
		{TransferStatusNoDevice, ErrNoDevice},
		{TransferStatusError, ErrProtocol},
		{TransferStatus(99), ErrProtocol},
	}

	for _, tt := range tests {
		got := tt.status.Error()
		if !errors.Is(got, tt.want) && got != tt.want {
			t.Errorf("TransferStatus(%d).Error() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestSentinelErrorsDistinct(t *testing.T) {
	errs := []error{
		ErrStall, ErrTimeout, ErrCancelled, ErrNoDevice, ErrNoResources,
		ErrNoMemory, ErrProtocol, ErrNotEnabled, ErrAlreadyEnabled,
		ErrModeRejected, ErrBandwidth, ErrInvalidParameter, ErrNotConfigured,
	}
	for i, a := range errs {
		for j, b := range errs {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel errors %v and %v are not distinct", a, b)
			}
		}
	}
}
