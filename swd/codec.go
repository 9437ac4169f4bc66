// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package swd

import "context"

// Transport is the clocked bit/byte shift interface a swd.Link drives.
// *ftdi.Transport satisfies this interface; tests substitute a fake.
type Transport interface {
	WriteBits(v byte, n int) error
	WriteReadBits(v byte, n int) error
	WriteBytes(p []byte) error
	Flush(ctx context.Context) ([]byte, error)
}

// PackTx queues every field of req onto tr: unsampled fields as a plain
// write, sampled fields as a combined write+read so the target's response
// is captured on the same clock pulses. Fields wider than 8 bits are
// chunked into LSB-first groups of at most 8 bits, mirroring how a single
// BitField is shifted a byte at a time on the wire.
func PackTx(tr Transport, req *Request) error {
	for _, bf := range req.Fields {
		v := bf.Value
		remaining := bf.Width
		for remaining > 0 {
			n := remaining
			if n > 8 {
				n = 8
			}
			chunk := byte(v & 0xff)
			var err error
			if bf.Sampled {
				err = tr.WriteReadBits(chunk, n)
			} else {
				err = tr.WriteBits(chunk, n)
			}
			if err != nil {
				return err
			}
			v >>= uint(n)
			remaining -= n
		}
	}
	return nil
}

// Unpack walks the raw response bytes Flush returned, in the order their
// WriteReadBits calls were queued, and assigns them into the sampled
// fields of req in the same order. A field narrower than 8 bits consumes
// one response byte, right-shifted to discard the unused high bits (MPSSE
// left-justifies a short bit-group in its response byte).
func Unpack(rx []byte, req *Request) error {
	pos := 0
	return unpackFields(func() (byte, error) {
		if pos >= len(rx) {
			return 0, ErrReadTimeout
		}
		b := rx[pos]
		pos++
		return b, nil
	}, req)
}

// unpackFields assigns req's sampled fields from successive calls to
// nextByte, one response byte per 1-8 bit group. It is the shared core of
// Unpack and of Link's cursor over a single Flush response, since a
// pipelined poll round flushes once but unpacks many requests from the
// same byte stream.
func unpackFields(nextByte func() (byte, error), req *Request) error {
	for _, bf := range req.Fields {
		if !bf.Sampled {
			continue
		}
		remaining := bf.Width
		shift := 0
		var v uint32
		for remaining > 0 {
			n := remaining
			if n > 8 {
				n = 8
			}
			b, err := nextByte()
			if err != nil {
				return err
			}
			if n < 8 {
				b >>= uint(8 - n)
			}
			v |= uint32(b) << uint(shift)
			shift += 8
			remaining -= n
		}
		bf.Value = v
	}
	return nil
}
