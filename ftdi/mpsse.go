// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// MPSSE is Multi-Protocol Synchronous Serial Engine.
//
// MPSSE basics:
// http://www.ftdichip.com/Support/Documents/AppNotes/AN_135_MPSSE_Basics.pdf

package ftdi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"
)

const (
	// Flags, see AN_135 for the full table. Only what a clocked two-wire
	// link needs is kept: LSB-first shifts on the falling clock edge, which
	// is what a Cortex-M target expects to sample SWDIO against.
	dataOut     byte = 0x10 // enable output
	dataIn      byte = 0x20 // enable input
	dataOutFall byte = 0x01 // output changes on falling edge instead of rising
	dataInFall  byte = 0x04 // input sampled on falling edge instead of rising
	dataLSBF    byte = 0x08 // LSB first instead of MSB first
	dataBit     byte = 0x02 // operate on a partial byte (1-8 bits) instead of a full stream

	// GPIO: operates on 8 pins at a time, D0~D7. <op>, <value>, <direction>.
	gpioSetD byte = 0x80

	clockNormal     byte = 0x97 // disables adaptive clocking
	clock2Phase     byte = 0x8D // normal 2-phase data clocking
	clockSetDivisor byte = 0x86 // <op>, <valueL-1>, <valueH-1>

	internalLoopbackDisable byte = 0x85

	flush byte = 0x87 // flush the buffer back to the host
)

// mpsseBaseClock is the MPSSE master clock on non-H-series silicon. The
// divisor formula below matches it.
const mpsseBaseClock = 12 * physic.MegaHertz

// Transport drives an FTDI MPSSE engine as a buffered, clocked bit/byte
// link on pins D0 (clock), D1 (data out) and D2 (data in).
//
// Write calls only append to an internal command buffer; no USB traffic
// happens until Flush is called. This lets a caller queue an entire SWD
// transaction — or many of them — before paying for a single round trip.
type Transport struct {
	h   *handle
	cmd []byte
	rxN int
}

// EnterMPSSE switches the device into MPSSE mode and resets the clock and
// GPIO state to a known baseline.
//
// It tries the "happy path" first (verify without resetting) to avoid
// glitching the SWD lines if the device is already correctly configured.
func (t *Transport) EnterMPSSE() error {
	if t.CheckSync() != nil {
		if err := t.h.Reset(); err != nil {
			return err
		}
		if err := t.h.Init(); err != nil {
			return err
		}
		if err := t.h.SetBitMode(0, bitModeMpsse); err != nil {
			return err
		}
		if err := t.CheckSync(); err != nil {
			return err
		}
	}
	cmd := []byte{
		clockNormal, clock2Phase, internalLoopbackDisable,
		gpioSetD, 0x00, 0x03, // D0 (clock) and D1 (data out) as outputs, low
	}
	_, err := t.h.Write(cmd)
	return err
}

// CheckSync sends an invalid MPSSE command (0xAA) and verifies the device
// echoes back the "bad command" response [0xFA, 0xAA], confirming the
// command pipeline is framed correctly.
func (t *Transport) CheckSync() error {
	cmd := [...]byte{0xAA, flush}
	if _, err := t.h.Write(cmd[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	var b [2]byte
	ctx, cancel := context200ms()
	_, err := t.h.ReadAll(ctx, b[:])
	cancel()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	if b[0] != 0xFA || b[1] != 0xAA {
		return fmt.Errorf("%w: got %#x, want [0xFA 0xAA]", ErrSyncFailed, b)
	}
	return nil
}

// SetClock programs the SWCLK divisor as base/(2·hz) − 1, using integer
// division and clamped at 0, and returns the rate actually programmed.
// Because the division rounds down, that rate is at or above hz, except
// that it never exceeds base/2 (6 MHz).
func (t *Transport) SetClock(hz physic.Frequency) (physic.Frequency, error) {
	if hz <= 0 {
		return 0, errors.New("ftdi: clock frequency must be positive")
	}
	div := mpsseBaseClock/(2*hz) - 1
	if div < 0 {
		div = 0
	}
	if div > 0xFFFF {
		return 0, errors.New("ftdi: clock frequency is too low")
	}
	b := [...]byte{clockSetDivisor, byte(div), byte(div >> 8)}
	if _, err := t.h.Write(b[:]); err != nil {
		return 0, err
	}
	return mpsseBaseClock / (2 * (div + 1)), nil
}

// WriteBits queues n bits (1-8, LSB first) of v to be driven onto the data
// line on the falling clock edge, without sampling the input line.
func (t *Transport) WriteBits(v byte, n int) error {
	if n < 1 || n > 8 {
		return errors.New("ftdi: WriteBits: n must be in [1, 8]")
	}
	op := dataBit | dataOut | dataOutFall | dataLSBF
	t.cmd = append(t.cmd, op, byte(n-1), v)
	return nil
}

// WriteReadBits queues n bits (1-8, LSB first) of v to be driven onto the
// data line on the falling clock edge, while simultaneously sampling n
// bits from the input line on the same clock pulses.
//
// This is the turnaround-free combined shift a half-duplex link like SWD
// needs: the host keeps clocking while the target drives its response, in
// a single MPSSE command rather than a separate write then a separate
// read. The sampled byte is only available after the next Flush, as the
// Nth entry (0-based) of its returned slice among all WriteReadBits calls
// queued since the prior Flush.
func (t *Transport) WriteReadBits(v byte, n int) error {
	if n < 1 || n > 8 {
		return errors.New("ftdi: WriteReadBits: n must be in [1, 8]")
	}
	op := dataBit | dataOut | dataOutFall | dataIn | dataLSBF
	t.cmd = append(t.cmd, op, byte(n-1), v)
	t.rxN++
	return nil
}

// WriteBytes queues a byte-multiple stream, LSB first, to be driven onto
// the data line on the falling clock edge.
func (t *Transport) WriteBytes(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if len(p) > 65536 {
		return errors.New("ftdi: WriteBytes: buffer too long; max 65536")
	}
	op := dataOut | dataOutFall | dataLSBF
	l := len(p)
	t.cmd = append(t.cmd, op, byte(l-1), byte((l-1)>>8))
	t.cmd = append(t.cmd, p...)
	return nil
}

// Flush performs the single USB write of every command queued since the
// last Flush, then blocks for the response bytes of every WriteReadBits
// call in between, in the order they were queued.
//
// Calling Flush with nothing queued is a no-op that returns a nil slice.
func (t *Transport) Flush(ctx context.Context) ([]byte, error) {
	if len(t.cmd) == 0 {
		return nil, nil
	}
	cmd := append(t.cmd, flush)
	t.cmd = t.cmd[:0]
	if _, err := t.h.Write(cmd); err != nil {
		return nil, err
	}
	if t.rxN == 0 {
		return nil, nil
	}
	rx := make([]byte, t.rxN)
	t.rxN = 0
	if _, err := t.h.ReadAll(ctx, rx); err != nil {
		return nil, err
	}
	return rx, nil
}

// Close releases the underlying USB handle.
func (t *Transport) Close() error {
	return t.h.Close()
}

func context200ms() (context.Context, func()) {
	return context.WithTimeout(context.Background(), 200*time.Millisecond)
}
