package sinks

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/desertthunder/stripd/internal/models"
	"github.com/desertthunder/stripd/internal/shared"
)

const (
	// ArtNetPort is the UDP port Art-Net nodes listen on.
	ArtNetPort = 6454
	// PixelsPerUniverse is how many RGB pixels fit in one 512-channel DMX universe.
	PixelsPerUniverse = 170

	artDmxHeaderLen = 18
	artDmxOpCode    = 0x5000
	artNetVersion   = 14
	universeBytes   = PixelsPerUniverse * 3
)

// BuildArtDmxHeader returns the 18-byte ArtDmx header for universe with a payload of length bytes.
func BuildArtDmxHeader(universe, length int) []byte {
	header := make([]byte, artDmxHeaderLen)
	copy(header[0:8], "Art-Net\x00")
	binary.LittleEndian.PutUint16(header[8:10], artDmxOpCode)
	binary.BigEndian.PutUint16(header[10:12], artNetVersion)
	binary.LittleEndian.PutUint16(header[14:16], uint16(universe))
	binary.BigEndian.PutUint16(header[16:18], uint16(length))
	return header
}

// ArtNet sends frames as ArtDmx packets, one per 170-pixel universe starting at a base universe.
//
// DMX fixtures have no separate brightness channel, so colors are scaled by brightness before sending.
type ArtNet struct {
	conn     net.Conn
	length   int
	universe int
	packets  [][]byte
	sequence uint8
}

// NewArtNet creates an [ArtNet] sink writing to conn.
func NewArtNet(conn net.Conn, universe, length int) *ArtNet {
	count := (length + PixelsPerUniverse - 1) / PixelsPerUniverse
	packets := make([][]byte, count)
	for i := range packets {
		pixels := min(PixelsPerUniverse, length-i*PixelsPerUniverse)
		packet := make([]byte, artDmxHeaderLen+pixels*3)
		copy(packet, BuildArtDmxHeader(universe+i, pixels*3))
		packets[i] = packet
	}
	return &ArtNet{conn: conn, length: length, universe: universe, packets: packets}
}

// DialArtNet connects to the node at addr ("host" or "host:port").
//
// Every universe the strip spans must be a 15-bit port address.
func DialArtNet(addr string, universe, length int) (*ArtNet, error) {
	last := universe + (length+PixelsPerUniverse-1)/PixelsPerUniverse - 1
	if universe < 0 || last > shared.MaxArtNetUniverse {
		return nil, fmt.Errorf("%w: art-net universes %d-%d out of range 0-%d", shared.ErrInvalidConfig, universe, last, shared.MaxArtNetUniverse)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, fmt.Sprint(ArtNetPort))
	}
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to dial art-net node %s: %v", shared.ErrSink, addr, err)
	}
	return NewArtNet(conn, universe, length), nil
}

func (a *ArtNet) SetPixel(index int, c models.Color, brightness uint8, diag Diagnostics) {
	if !checkIndex(index, a.length, diag) {
		return
	}
	c = c.Scale(brightness)
	packet := a.packets[index/PixelsPerUniverse]
	off := artDmxHeaderLen + (index%PixelsPerUniverse)*3
	packet[off] = c.Red
	packet[off+1] = c.Green
	packet[off+2] = c.Blue
}

// Flush sends every universe. A failed universe does not stop the remaining ones.
func (a *ArtNet) Flush() error {
	a.sequence++
	if a.sequence == 0 {
		a.sequence = 1
	}

	var firstErr error
	for i, packet := range a.packets {
		packet[12] = a.sequence
		if _, err := a.conn.Write(packet); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%w: universe %d: %v", shared.ErrSink, a.universe+i, err)
		}
	}
	return firstErr
}

func (a *ArtNet) Len() int { return a.length }

// Universes returns how many universes a frame spans.
func (a *ArtNet) Universes() int { return len(a.packets) }

func (a *ArtNet) Close() error { return a.conn.Close() }
