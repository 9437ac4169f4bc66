// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package swd

import "context"

// LineState tracks where the SWD line is: Unknown until the first Reset,
// Idle after it, and Error after a FAULT Ack until the next Reset. It is
// reported through Link.State; Rd and Wr do not check it before starting
// a transaction.
type LineState int

const (
	StateUnknown LineState = iota
	StateReset
	StateIdle
	StateError
)

func (s LineState) String() string {
	switch s {
	case StateReset:
		return "reset"
	case StateIdle:
		return "idle"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Link drives the SWD bit-level protocol over a Transport: line reset,
// idle cycles, and single read/write transactions. It tracks line state
// and, across a pipelined poll round, the single Flush response stream
// that many Rd/Wr calls may draw from.
//
// A Link is not safe for concurrent use.
type Link struct {
	tr Transport

	state LineState

	// CheckParity verifies a read transaction's sampled data parity
	// against the recomputed parity of the data it carried. Defaults to
	// true; a caller chasing raw throughput over a known-good link may
	// turn it off.
	CheckParity bool

	rxBuf []byte
	rxPos int
}

// NewLink returns a Link driving tr, with line state Unknown until Reset
// is called.
func NewLink(tr Transport) *Link {
	return &Link{tr: tr, CheckParity: true}
}

// State returns the link's current line state.
func (l *Link) State() LineState {
	return l.state
}

// swdResetSeq is the line reset sequence: at least 50 SWCLK cycles with
// SWDIO high, the JTAG-to-SWD select sequence 0xE79E (sent LSB first, so
// 0x9E then 0xE7), then another 50+ cycles high to leave the DP in its
// reset state.
var swdResetSeq = []byte{
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0x9E, 0xE7,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
}

// Reset drives the SWD line reset plus select sequence and leaves the
// line idle. It flushes immediately since the caller always needs the
// line settled before the next transaction.
func (l *Link) Reset(ctx context.Context) error {
	if err := l.tr.WriteBytes(swdResetSeq); err != nil {
		return err
	}
	if err := l.tr.WriteBits(0, 4); err != nil {
		return err
	}
	if _, err := l.tr.Flush(ctx); err != nil {
		return err
	}
	l.rxBuf, l.rxPos = nil, 0
	l.state = StateIdle
	return nil
}

// IdleBytes queues n bytes of idle clocking (SWDIO low), used between
// transactions to let the target's write complete, such as the turnaround
// ap_addr inserts before reading DRW.
func (l *Link) IdleBytes(n int) error {
	return l.tr.WriteBytes(make([]byte, n))
}

// Flush forces any queued fields out over the transport and primes the
// response cursor that Rd/Wr reads from. Calling it with nothing newly
// queued is harmless: the transport's own Flush is a no-op then, and the
// cursor from the previous real Flush, if not yet fully drained, is left
// alone.
//
// This mirrors the pipelined send/receive split: a run of Rd/Wr calls
// with rx=false only ever append to the transport's buffer; the first
// rx=true call's Flush is the one that actually goes to the wire, and
// every later rx=true call in the same round just keeps consuming bytes
// that single Flush already returned.
func (l *Link) Flush(ctx context.Context) error {
	raw, err := l.tr.Flush(ctx)
	if err != nil {
		return err
	}
	if raw != nil {
		l.rxBuf = raw
		l.rxPos = 0
	}
	return nil
}

func (l *Link) nextByte() (byte, error) {
	if l.rxPos >= len(l.rxBuf) {
		return 0, ErrReadTimeout
	}
	b := l.rxBuf[l.rxPos]
	l.rxPos++
	return b, nil
}

// Rd builds a read transaction for the given AP (ap=true) or DP register
// and, depending on tx/rx, queues it, consumes its response, or both.
//
// A fresh Request is constructed on every call, even when tx is false:
// the caller's earlier tx=true, rx=false call queued this same register's
// fields already, so this call only needs a Request to unpack the
// matching response bytes into.
func (l *Link) Rd(ctx context.Context, ap bool, addr uint32, tx, rx bool) (*Request, error) {
	req := NewReadRequest(ap, addr)
	return l.do(ctx, req, tx, rx)
}

// Wr builds a write transaction for the given AP or DP register and value
// and, depending on tx/rx, queues it, consumes its response, or both. See
// Rd for the tx/rx pipelining contract.
func (l *Link) Wr(ctx context.Context, ap bool, addr uint32, value uint32, tx, rx bool) (*Request, error) {
	req := NewWriteRequest(ap, addr, value)
	return l.do(ctx, req, tx, rx)
}

func (l *Link) do(ctx context.Context, req *Request, tx, rx bool) (*Request, error) {
	if tx {
		if err := PackTx(l.tr, req); err != nil {
			return nil, err
		}
	}
	if !rx {
		return req, nil
	}
	if err := l.Flush(ctx); err != nil {
		return nil, err
	}
	if err := unpackFields(l.nextByte, req); err != nil {
		return nil, err
	}
	if err := DecodeAck(req.Ack.Value); err != nil {
		if err == ErrAckFault {
			l.state = StateError
		}
		return req, err
	}
	if l.CheckParity && req.Data != nil && req.DParity != nil && req.Data.Sampled {
		if Parity32(req.Data.Value) != req.DParity.Value {
			return req, ErrParity
		}
	}
	return req, nil
}

// DecodeAck maps a 3-bit SWD Ack field to its meaning. OK returns nil;
// WAIT and FAULT return their sentinel errors for the caller to act on
// (the link itself never retries); any other value is a protocol error,
// most likely a dropped or misframed bit.
func DecodeAck(v uint32) error {
	switch v {
	case 0b001:
		return nil
	case 0b010:
		return ErrAckWait
	case 0b100:
		return ErrAckFault
	default:
		return ErrAckProtocol
	}
}
