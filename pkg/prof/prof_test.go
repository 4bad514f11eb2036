//go:build profile

package prof

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStartCPU(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpu.prof")

	if err := StartCPU(path); err != nil {
		t.Fatalf("StartCPU() error = %v, want nil", err)
	}
	defer StopCPU()

	if err := StartCPU(path); !errors.Is(err, ErrCPUProfileActive) {
		t.Errorf("second StartCPU() error = %v, want ErrCPUProfileActive", err)
	}
}

func TestStopCPUIdempotent(t *testing.T) {
	StopCPU()
	StopCPU()
}

func TestDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heap.prof")

	if err := Dump(ProfileHeap, path); err != nil {
		t.Fatalf("Dump(heap) error = %v, want nil", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("profile file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("profile file is empty")
	}
}

func TestDumpInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.prof")

	if err := Dump(ProfileCPU, path); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("Dump(cpu) error = %v, want ErrInvalidProfile", err)
	}
	if err := Dump(Profile("bogus"), path); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("Dump(bogus) error = %v, want ErrInvalidProfile", err)
	}
}
