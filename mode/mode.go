package mode

import (
	"github.com/ardnew/softvga/bus"
	"github.com/ardnew/softvga/pkg"
)

// Mode describes a requested display mode.
type Mode struct {
	// ClockHz is the pixel clock in Hz.
	ClockHz uint64

	// Horizontal timing, in pixels.
	HDisplay   int
	HSyncStart int
	HSyncEnd   int
	HTotal     int

	// Vertical timing, in lines.
	VDisplay   int
	VSyncStart int
	VSyncEnd   int
	VTotal     int
}

// Pixels returns the number of active pixels per frame.
func (m Mode) Pixels() int {
	return m.HDisplay * m.VDisplay
}

// Result holds the outcome of a successful mode negotiation.
type Result struct {
	// Adjusted is the requested mode with htotal perturbed and the
	// clock replaced by the achievable clock, truncated to whole kHz.
	Adjusted Mode

	// PLL is the hardware PLL configuration realizing the adjusted
	// clock.
	PLL PLL

	// Timings is the register-level timing block for the adjusted mode.
	Timings Timings

	// BytesPerPixel is the wire pixel depth the bus bandwidth allows,
	// 1..3.
	BytesPerPixel int
}

// maxHAdjustment bounds the htotal perturbation search to +/-10 pixels.
const maxHAdjustment = 10

// Bulk bandwidth budget per speed class, bytes per second. Bulk transfers
// are assumed to get the full bus budget.
const bulkBWPercent = 100

const (
	bulkBWHighSpeed      = 480000000 * bulkBWPercent / 100 / 8
	bulkBWSuperSpeed     = 5000000000 * bulkBWPercent / 100 / 8
	bulkBWSuperSpeedPlus = 10000000000 * bulkBWPercent / 100 / 8
)

// BytesPerPixel converts a bus speed class and pixel clock into the wire
// pixel depth, 1..3 bytes. A result of 0 means the mode is infeasible at
// that speed and must be rejected.
func BytesPerPixel(speed bus.Speed, pixClockHz uint64) int {
	var maxBW uint64

	switch speed {
	case bus.SpeedHigh:
		maxBW = bulkBWHighSpeed
	case bus.SpeedSuper:
		maxBW = bulkBWSuperSpeed
	case bus.SpeedSuperPlus:
		maxBW = bulkBWSuperSpeedPlus
	default:
		return 0
	}

	if pixClockHz == 0 {
		return 0
	}

	bytesPix := int(maxBW / pixClockHz)
	if bytesPix > 3 {
		bytesPix = 3
	}
	return bytesPix
}

// Negotiate searches for a PLL configuration matching the requested mode
// and a pixel depth the bus bandwidth can carry.
//
// The search perturbs htotal in the zig-zag sequence 0, -1, +1, -2, +2,
// ... up to +/-10 pixels, scaling the requested clock by
// (htotal+delta)/htotal and accepting the first perturbation whose PLL
// error is under MaxPPMErr. Identical inputs always negotiate to the
// identical result.
//
// The returned error is pkg.ErrModeRejected when no PLL configuration
// fits the error budget and pkg.ErrBandwidth when the bus speed cannot
// carry the adjusted clock at any pixel depth. No state is mutated on
// rejection.
func Negotiate(m Mode, speed bus.Speed) (Result, error) {
	if m.ClockHz == 0 || m.HTotal <= 0 || m.HDisplay <= 0 || m.VDisplay <= 0 {
		return Result{}, pkg.ErrInvalidParameter
	}
	if m.ClockHz > MaxPixelClockHz {
		return Result{}, pkg.ErrModeRejected
	}

	// Maximum pixel clock 500 MHz scaled by 1e6 is 5*10^14; multiplying
	// by an htotal below 10^4 stays well under the uint64 range.
	clockMil := m.ClockHz * Precision

	d := 0
	for step, sign := 0, 1; step <= maxHAdjustment*2; step, sign = step+1, -sign {
		// 0, -1, 1, -2, 2, -3, 3, ...
		d += step * sign

		// Degenerate perturbations of very small modes fall below the
		// fixed-point resolution and cannot be evaluated.
		if m.HTotal+d <= 0 {
			continue
		}
		clockMilAdjusted := clockMil * uint64(m.HTotal+d) / uint64(m.HTotal)
		if clockMilAdjusted < Precision {
			continue
		}

		pll, achievedHz, ppmErr := SolvePLL(clockMilAdjusted)

		// Stop at the first perturbation inside the error budget.
		if ppmErr < MaxPPMErr {
			adjusted := m
			adjusted.HTotal += d
			adjusted.ClockHz = uint64(achievedHz) / 1000 * 1000

			bytesPix := BytesPerPixel(speed, adjusted.ClockHz)
			if bytesPix == 0 {
				return Result{}, pkg.ErrBandwidth
			}

			pkg.LogDebug(pkg.ComponentMode, "mode negotiated",
				"clock_hz", m.ClockHz,
				"adjusted_hz", adjusted.ClockHz,
				"htotal_delta", d,
				"ppm_err", ppmErr,
				"bytes_pix", bytesPix)

			return Result{
				Adjusted:      adjusted,
				PLL:           pll,
				Timings:       TimingsFor(adjusted),
				BytesPerPixel: bytesPix,
			}, nil
		}
	}

	// No PLL configuration satisfies the requirements.
	return Result{}, pkg.ErrModeRejected
}
