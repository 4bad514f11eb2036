package mode

import "math"

// Clock constants of the display-bridge PLL, in Hz unless noted.
const (
	// Precision is the fixed-point scale for clock arithmetic:
	// six decimal digits, so clocks are carried as Hz * 1e6.
	Precision = 1000000

	// XtalHz is the reference crystal frequency.
	XtalHz = 10000000

	// VCOMinHz and VCOMaxHz bound the internal VCO frequency.
	VCOMinHz = 62500000
	VCOMaxHz = 1000000000

	// MaxPixelClockHz is the highest pixel clock the PLL can be
	// configured for with acceptable precision.
	MaxPixelClockHz = 500000000

	// MaxPPMErr is the largest acceptable clock deviation in parts
	// per million.
	MaxPPMErr = 500
)

// PLL search space bounds.
const (
	prescalerMax  = 2
	multiplierMax = 128
)

// NoSolution is the ppm error reported when no PLL configuration was
// evaluated for a requested clock.
const NoSolution = uint64(math.MaxUint64)

// PLL holds the hardware PLL parameters for a pixel clock.
type PLL struct {
	Prescaler  uint32 // Reference prescaler, 1 or 2
	Multiplier uint32 // VCO multiplier, 1..128
	Divisor    uint32 // Output divisor from the hardware table
	Function   uint32 // VCO function band, 0..3
	PPMErr     uint64 // Achieved clock error in parts per million
}

// divisorTable enumerates the output divisors the hardware supports,
// in hardware scan order.
var divisorTable = [...]uint32{
	2, 4, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
	17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29,
	30, 31, 32, 33, 34, 35, 36, 37, 38, 39, 40, 41, 42,
	43, 44, 45, 46, 47, 48, 49, 50, 51, 52, 53, 54, 55,
	56, 57, 58, 59, 60, 61, 62, 63, 64, 65, 66, 67, 68,
	69, 70, 71, 72, 73, 74, 75, 76, 77, 78, 79, 80, 81,
	82, 83, 84, 85, 86, 87, 88, 89, 90, 91, 92, 93, 94,
	95, 96, 97, 98, 99, 100, 101, 102, 103, 104, 105, 106, 107,
	108, 109, 110, 111, 112, 113, 114, 115, 116, 117, 118, 119, 120,
	121, 122, 123, 124, 125, 126, 127, 128,
}

// pllPPMErr computes the parts-per-million deviation between the
// requested clock (in Hz * Precision) and vcoClk/divisor. Integer
// arithmetic throughout; substituting floating point would change
// tie-break behavior.
func pllPPMErr(clockMil uint64, vcoClk, divisor uint32) uint64 {
	pllClkMil := uint64(vcoClk) * Precision / uint64(divisor)

	// Not using an abs helper here to avoid overflow on the difference.
	var pllClkErr uint64
	if pllClkMil > clockMil {
		pllClkErr = pllClkMil - clockMil
	} else {
		pllClkErr = clockMil - pllClkMil
	}

	return pllClkErr / (clockMil / Precision)
}

// pllDivisor scans the divisor table for the divisor minimizing ppm error
// against the requested clock, updating minPPMErr in place. Returns 0 if
// no divisor improves on the running minimum.
func pllDivisor(clockMil uint64, vcoClk uint32, minPPMErr *uint64) uint32 {
	var best uint32

	for _, divisor := range divisorTable {
		ppmErr := pllPPMErr(clockMil, vcoClk, divisor)
		if ppmErr < *minPPMErr {
			*minPPMErr = ppmErr
			best = divisor
		}
	}

	return best
}

// SolvePLL exhaustively searches the (prescaler, multiplier, divisor)
// space for the configuration whose output clock most closely matches
// the requested clock, given in Hz * Precision fixed point.
//
// Ties resolve first-found-wins in ascending prescaler, multiplier,
// divisor-table scan order. This matches the hardware vendor's reference
// search and is preserved for output compatibility; it is not guaranteed
// optimal among equal-error configurations.
//
// The returned ppm error is NoSolution when no configuration was
// evaluated (the achieved clock is 0 in that case).
func SolvePLL(clockMil uint64) (pll PLL, achievedHz uint32, ppmErr uint64) {
	minPPMErr := NoSolution

	for prescaler := uint32(1); prescaler <= prescalerMax; prescaler++ {
		for multiplier := uint32(1); multiplier <= multiplierMax; multiplier++ {
			// No fixed-point scale needed yet at VCO resolution.
			vcoClk := XtalHz / prescaler * multiplier

			if vcoClk < VCOMinHz || vcoClk > VCOMaxHz {
				continue
			}

			divisor := pllDivisor(clockMil, vcoClk, &minPPMErr)
			if divisor == 0 {
				continue
			}

			pll.Prescaler = prescaler
			pll.Multiplier = multiplier
			pll.Divisor = divisor
			pll.Function = vcoFunction(vcoClk)
			achievedHz = vcoClk / divisor
		}
	}

	pll.PPMErr = minPPMErr
	return pll, achievedHz, minPPMErr
}

// vcoFunction buckets the VCO frequency into the hardware's four
// function bands.
func vcoFunction(vcoClk uint32) uint32 {
	switch {
	case vcoClk < 125000000:
		return 0
	case vcoClk < 250000000:
		return 1
	case vcoClk < 500000000:
		return 2
	default:
		return 3
	}
}
