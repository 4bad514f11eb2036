package frame

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// bytesPerPixel is the size of one 32-bit XRGB sample.
const bytesPerPixel = 4

// XRGB converts an image into the 32-bit XRGB raster the stream core
// consumes, scaling to width x height when the source dimensions
// differ. The returned pitch is the row stride in bytes.
//
// Samples are stored little-endian: byte order blue, green, red, then
// an unused lane.
func XRGB(img image.Image, width, height int) (pix []byte, pitch int) {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Bounds() != image.Rect(0, 0, width, height) {
		rgba = image.NewRGBA(image.Rect(0, 0, width, height))
		xdraw.NearestNeighbor.Scale(rgba, rgba.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	}

	pitch = width * bytesPerPixel
	pix = make([]byte, height*pitch)
	for y := 0; y < height; y++ {
		src := rgba.Pix[y*rgba.Stride:]
		dst := pix[y*pitch:]
		for x := 0; x < width; x++ {
			r, g, b := src[x*4], src[x*4+1], src[x*4+2]
			dst[x*4] = b
			dst[x*4+1] = g
			dst[x*4+2] = r
			dst[x*4+3] = 0
		}
	}
	return pix, pitch
}

// barColors are the classic vertical color bars, as packed XRGB values.
var barColors = [...]uint32{
	0x00ffffff, // white
	0x00ffff00, // yellow
	0x0000ffff, // cyan
	0x0000ff00, // green
	0x00ff00ff, // magenta
	0x00ff0000, // red
	0x000000ff, // blue
	0x00000000, // black
}

// TestPattern generates one frame of vertical color bars as an XRGB
// raster, rotated by seq so successive frames differ. The returned
// pitch is width*4.
func TestPattern(width, height, seq int) (pix []byte, pitch int) {
	pitch = width * bytesPerPixel
	pix = make([]byte, height*pitch)

	barWidth := width / len(barColors)
	if barWidth == 0 {
		barWidth = 1
	}

	for x := 0; x < width; x++ {
		c := barColors[(x/barWidth+seq)%len(barColors)]
		b, g, r := byte(c), byte(c>>8), byte(c>>16)
		for y := 0; y < height; y++ {
			off := y*pitch + x*4
			pix[off] = b
			pix[off+1] = g
			pix[off+2] = r
		}
	}
	return pix, pitch
}
