// Package prof provides on-demand profiling for the display stream
// pipeline.
//
// This package wraps [runtime/pprof] behind the "profile" build tag:
//
//	go build -tags profile
//	go test -tags profile
//
// When built without the tag every exported function is a no-op, so
// profiling hooks can stay in place with zero production overhead.
//
// The pipeline's hot paths are the scanline packers and the pool lock
// shared by the producer, the transmit worker, and the bus completion
// context. CPU profiles expose the former; enable block and mutex
// profiling to observe the latter:
//
//	prof.SetBlockProfileRate(1)
//	prof.SetMutexProfileFraction(1)
//	defer prof.Dump(prof.ProfileMutex, "mutex.prof")
//
// CPU profiling runs between StartCPU and StopCPU:
//
//	prof.StartCPU("cpu.prof")
//	defer prof.StopCPU()
package prof
