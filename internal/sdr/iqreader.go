package sdr

import (
	"context"
	"encoding/binary"
	"io"
)

// NewIQReader adapts r, a stream of interleaved signed 16-bit
// little-endian I/Q sample pairs (the wire format this handheld's front
// end streams over its sample socket), into the reader function
// RawSource needs. Each returned complex128 has its real/imaginary parts
// normalized to [-1, 1].
func NewIQReader(r io.Reader) func(ctx context.Context, n int) ([]complex128, error) {
	return func(ctx context.Context, n int) ([]complex128, error) {
		raw := make([]byte, n*4)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, err
		}
		out := make([]complex128, n)
		for i := range out {
			iv := int16(binary.LittleEndian.Uint16(raw[i*4:]))
			qv := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
			out[i] = complex(float64(iv)/32768, float64(qv)/32768)
		}
		return out, nil
	}
}
