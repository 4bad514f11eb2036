package mode

// Timings is the register-level timing block programmed into the
// display bridge alongside the PLL configuration.
type Timings struct {
	HActive    uint32
	HTotal     uint32
	HSyncWidth uint32
	HStart     uint32
	VActive    uint32
	VTotal     uint32
	VSyncWidth uint32
	VStart     uint32
}

// TimingsFor derives the hardware timing block from a display mode.
// Start values count from the end of the sync pulse, one-based, the way
// the bridge registers expect them.
func TimingsFor(m Mode) Timings {
	return Timings{
		HActive:    uint32(m.HDisplay),
		HTotal:     uint32(m.HTotal),
		HSyncWidth: uint32(m.HSyncEnd - m.HSyncStart),
		HStart:     uint32(m.HTotal - m.HSyncStart + 1),
		VActive:    uint32(m.VDisplay),
		VTotal:     uint32(m.VTotal),
		VSyncWidth: uint32(m.VSyncEnd - m.VSyncStart),
		VStart:     uint32(m.VTotal - m.VSyncStart + 1),
	}
}
