//go:build profile

package prof

import (
	"errors"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
)

// Profiling errors.
var (
	// ErrCPUProfileActive indicates CPU profiling is already active.
	ErrCPUProfileActive = errors.New("cpu profile already active")

	// ErrInvalidProfile indicates an unknown profile name, or a request
	// to dump the CPU profile, which runs between StartCPU and StopCPU.
	ErrInvalidProfile = errors.New("invalid profile")
)

// Profile names a runtime profile.
type Profile string

// Profile name constants.
const (
	ProfileCPU       Profile = "cpu"
	ProfileHeap      Profile = "heap"
	ProfileAllocs    Profile = "allocs"
	ProfileGoroutine Profile = "goroutine"
	ProfileBlock     Profile = "block"
	ProfileMutex     Profile = "mutex"
)

var (
	cpuMu     sync.Mutex
	cpuFile   *os.File
	cpuActive bool
)

// StartCPU starts CPU profiling into a file at path. Returns
// [ErrCPUProfileActive] if a CPU profile is already running.
func StartCPU(path string) error {
	cpuMu.Lock()
	defer cpuMu.Unlock()

	if cpuActive {
		return ErrCPUProfileActive
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return err
	}

	cpuFile = f
	cpuActive = true
	return nil
}

// StopCPU stops CPU profiling and closes the profile file. Safe to call
// with no profile running.
func StopCPU() {
	cpuMu.Lock()
	defer cpuMu.Unlock()

	if !cpuActive {
		return
	}
	pprof.StopCPUProfile()
	cpuFile.Close()
	cpuFile = nil
	cpuActive = false
}

// Dump writes a snapshot of the named profile to a file at path.
// Returns [ErrInvalidProfile] for [ProfileCPU].
func Dump(profile Profile, path string) error {
	if profile == ProfileCPU {
		return ErrInvalidProfile
	}
	p := pprof.Lookup(string(profile))
	if p == nil {
		return ErrInvalidProfile
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return p.WriteTo(f, 0)
}

// SetBlockProfileRate sets the runtime's goroutine blocking profile
// rate: the average nanoseconds blocked before an event is recorded.
// 0 disables, 1 records every event.
func SetBlockProfileRate(rate int) {
	runtime.SetBlockProfileRate(rate)
}

// SetMutexProfileFraction sets the fraction of mutex contention events
// recorded. 0 disables, 1 records every event.
func SetMutexProfileFraction(rate int) {
	runtime.SetMutexProfileFraction(rate)
}
