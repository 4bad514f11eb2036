package mode

import (
	"errors"
	"testing"

	"github.com/ardnew/softvga/bus"
	"github.com/ardnew/softvga/pkg"
)

// vga640x480 is the canonical 640x480@60 mode, 25.175 MHz pixel clock.
func vga640x480() Mode {
	return Mode{
		ClockHz:    25175000,
		HDisplay:   640,
		HSyncStart: 656,
		HSyncEnd:   752,
		HTotal:     800,
		VDisplay:   480,
		VSyncStart: 490,
		VSyncEnd:   492,
		VTotal:     525,
	}
}

func TestNegotiateVGA(t *testing.T) {
	res, err := Negotiate(vga640x480(), bus.SpeedHigh)
	if err != nil {
		t.Fatalf("Negotiate(VGA) failed: %v", err)
	}

	if d := res.Adjusted.HTotal - 800; d < -10 || d > 10 {
		t.Errorf("htotal adjustment %d outside +/-10", d)
	}
	if res.PLL.PPMErr >= MaxPPMErr {
		t.Errorf("accepted ppm error %d >= %d", res.PLL.PPMErr, MaxPPMErr)
	}
	if res.Adjusted.ClockHz%1000 != 0 {
		t.Errorf("adjusted clock %d not truncated to whole kHz", res.Adjusted.ClockHz)
	}
	if res.BytesPerPixel < 1 || res.BytesPerPixel > 3 {
		t.Errorf("bytes per pixel = %d, want 1..3", res.BytesPerPixel)
	}
}

func TestNegotiateExactClock(t *testing.T) {
	m := vga640x480()
	m.ClockHz = 25000000 // exact PLL configuration exists

	res, err := Negotiate(m, bus.SpeedHigh)
	if err != nil {
		t.Fatalf("Negotiate(25 MHz) failed: %v", err)
	}
	if res.Adjusted.HTotal != m.HTotal {
		t.Errorf("htotal adjusted to %d for an exact clock", res.Adjusted.HTotal)
	}
	if res.Adjusted.ClockHz != 25000000 {
		t.Errorf("adjusted clock = %d, want 25000000", res.Adjusted.ClockHz)
	}
	if res.PLL.PPMErr != 0 {
		t.Errorf("ppm error = %d, want 0", res.PLL.PPMErr)
	}
}

func TestNegotiateRejectsAboveCeiling(t *testing.T) {
	m := vga640x480()
	m.ClockHz = MaxPixelClockHz + 1

	if _, err := Negotiate(m, bus.SpeedSuperPlus); !errors.Is(err, pkg.ErrModeRejected) {
		t.Errorf("Negotiate(>500 MHz) error = %v, want ErrModeRejected", err)
	}
}

func TestNegotiateRejectsBandwidth(t *testing.T) {
	// 1080p at High Speed: 60 MB/s cannot carry 148.5 Mpix/s at any depth.
	m := Mode{
		ClockHz:    148500000,
		HDisplay:   1920,
		HSyncStart: 2008,
		HSyncEnd:   2052,
		HTotal:     2200,
		VDisplay:   1080,
		VSyncStart: 1084,
		VSyncEnd:   1089,
		VTotal:     1125,
	}

	if _, err := Negotiate(m, bus.SpeedHigh); !errors.Is(err, pkg.ErrBandwidth) {
		t.Errorf("Negotiate(1080p, high speed) error = %v, want ErrBandwidth", err)
	}

	// The same mode fits at SuperSpeed.
	res, err := Negotiate(m, bus.SpeedSuper)
	if err != nil {
		t.Fatalf("Negotiate(1080p, SuperSpeed) failed: %v", err)
	}
	if res.BytesPerPixel < 1 {
		t.Errorf("bytes per pixel = %d, want >= 1", res.BytesPerPixel)
	}
}

func TestNegotiateDeterministic(t *testing.T) {
	first, err := Negotiate(vga640x480(), bus.SpeedHigh)
	if err != nil {
		t.Fatalf("Negotiate failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		res, err := Negotiate(vga640x480(), bus.SpeedHigh)
		if err != nil {
			t.Fatalf("Negotiate failed on repeat: %v", err)
		}
		if res != first {
			t.Fatalf("Negotiate not deterministic: %+v vs %+v", res, first)
		}
	}
}

func TestNegotiateInvalidParameters(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Mode)
	}{
		{"zero clock", func(m *Mode) { m.ClockHz = 0 }},
		{"zero htotal", func(m *Mode) { m.HTotal = 0 }},
		{"zero hdisplay", func(m *Mode) { m.HDisplay = 0 }},
		{"zero vdisplay", func(m *Mode) { m.VDisplay = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := vga640x480()
			tt.mod(&m)
			if _, err := Negotiate(m, bus.SpeedHigh); !errors.Is(err, pkg.ErrInvalidParameter) {
				t.Errorf("error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestBytesPerPixel(t *testing.T) {
	tests := []struct {
		name    string
		speed   bus.Speed
		clockHz uint64
		want    int
	}{
		{"high speed VGA", bus.SpeedHigh, 25175000, 2},
		{"high speed 60 MHz", bus.SpeedHigh, 60000000, 1},
		{"high speed 1080p", bus.SpeedHigh, 148500000, 0},
		{"super speed 1080p", bus.SpeedSuper, 148500000, 3},
		{"super speed clamped", bus.SpeedSuper, 25175000, 3},
		{"super plus 4k", bus.SpeedSuperPlus, 533250000, 2},
		{"full speed", bus.SpeedFull, 25175000, 0},
		{"unknown speed", bus.SpeedUnknown, 25175000, 0},
		{"zero clock", bus.SpeedHigh, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BytesPerPixel(tt.speed, tt.clockHz); got != tt.want {
				t.Errorf("BytesPerPixel(%v, %d) = %d, want %d",
					tt.speed, tt.clockHz, got, tt.want)
			}
		})
	}
}

func TestTimingsFor(t *testing.T) {
	got := TimingsFor(vga640x480())
	want := Timings{
		HActive:    640,
		HTotal:     800,
		HSyncWidth: 96,
		HStart:     145,
		VActive:    480,
		VTotal:     525,
		VSyncWidth: 2,
		VStart:     36,
	}
	if got != want {
		t.Errorf("TimingsFor(VGA) = %+v, want %+v", got, want)
	}
}
