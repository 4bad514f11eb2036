//go:build !profile

package prof

// Profiling errors (declared for API compatibility, never returned by
// the stubs).
var (
	// ErrCPUProfileActive indicates CPU profiling is already active.
	ErrCPUProfileActive error

	// ErrInvalidProfile indicates an unknown profile name.
	ErrInvalidProfile error
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

// StartCPU is a no-op when built without the "profile" tag.
func StartCPU(_ string) error { return nil }

// StopCPU is a no-op when built without the "profile" tag.
func StopCPU() {}

// Dump is a no-op when built without the "profile" tag.
func Dump(_ Profile, _ string) error { return nil }

// SetBlockProfileRate is a no-op when built without the "profile" tag.
func SetBlockProfileRate(_ int) {}

// SetMutexProfileFraction is a no-op when built without the "profile" tag.
func SetMutexProfileFraction(_ int) {}
