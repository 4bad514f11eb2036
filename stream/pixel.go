package stream

import "encoding/binary"

// Scanline packers converting 32-bit XRGB source pixels to the bridge's
// reduced wire formats. Low-order color bits are truncated; the loss is
// intentional, no wire format is wider than the source.
//
// The destination indices carry an XOR byte-lane permutation matching
// the byte order the bridge scans out. The permutation stays inside the
// containing 8-byte block, so a destination must extend to the next
// 8-byte boundary past the packed line (transfer buffers carry slack
// for exactly this).

// packLine233 packs one scanline at 1 byte per pixel: 2 bits red, 3
// bits green, 3 bits blue, lanes permuted XOR-4.
func packLine233(dst, src []byte, pixels int) {
	for x := 0; x < pixels; x++ {
		pix := binary.LittleEndian.Uint32(src[x*4:])
		val := byte((pix&0x00c00000)>>16 |
			(pix&0x0000e000)>>10 |
			(pix&0x000000e0)>>5)
		dst[x^4] = val
	}
}

// packLine565 packs one scanline at 2 bytes per pixel: 5 bits red, 6
// bits green, 5 bits blue, 16-bit lanes permuted XOR-2.
func packLine565(dst, src []byte, pixels int) {
	for x := 0; x < pixels; x++ {
		pix := binary.LittleEndian.Uint32(src[x*4:])
		val := uint16((pix&0x00f80000)>>8 |
			(pix&0x0000fc00)>>5 |
			(pix&0x000000f8)>>3)
		binary.LittleEndian.PutUint16(dst[(x^2)*2:], val)
	}
}

// packLine888 packs one scanline at 3 bytes per pixel, byte lanes
// permuted XOR-4.
func packLine888(dst, src []byte, pixels int) {
	xx := 0
	for x := 0; x < pixels; x++ {
		pix := binary.LittleEndian.Uint32(src[x*4:])
		dst[xx^4] = byte(pix)
		xx++
		dst[xx^4] = byte(pix >> 8)
		xx++
		dst[xx^4] = byte(pix >> 16)
		xx++
	}
}

// encodeFrame packs a full frame of XRGB source pixels into dst at the
// given wire depth. src rows are pitch bytes apart; packed rows are
// width*bytesPix bytes apart. bytesPix outside {1,2,3} is a contract
// violation and encodes nothing (mode negotiation only ever yields
// 1..3).
func encodeFrame(dst, src []byte, width, height, pitch, bytesPix int) {
	dstLine := width * bytesPix
	for y := 0; y < height; y++ {
		sline := src[y*pitch:]
		dline := dst[y*dstLine:]
		switch bytesPix {
		case 1:
			packLine233(dline, sline, width)
		case 2:
			packLine565(dline, sline, width)
		case 3:
			packLine888(dline, sline, width)
		}
	}
}
