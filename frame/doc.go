// Package frame adapts pixel sources to the raster format the stream
// core consumes: 32-bit little-endian XRGB samples.
//
// It converts and scales [image.Image] sources and generates test
// patterns for examples and end-to-end tests. The display framework
// integration normally supplies rasters directly; this package stands in
// for it in self-contained setups.
package frame
