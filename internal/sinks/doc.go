// Package sinks contains the hardware boundary: anything a rendered frame can be pushed to.
//
// A [PixelSink] receives one [PixelSink.SetPixel] call per pixel followed by one [PixelSink.Flush] per frame.
// Anomalies such as out-of-range indices are reported to a [Diagnostics] value instead of failing the frame,
// so a partially valid frame is still flushed.
//
// Implementations:
//   - [APA102] : SPI byte stream for APA102/SK9822 strips, written to any [io.Writer] such as /dev/spidev0.0
//   - [ArtNet] : ArtDmx packets over UDP, 170 RGB pixels per universe
//   - [Terminal] : colored blocks in a terminal, for development without hardware
//   - [Discard] : accepts and drops everything
package sinks
