// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package swd

import (
	"bytes"
	"context"
	"testing"
)

func TestLinkReset(t *testing.T) {
	f := &fakeTransport{}
	l := NewLink(f)
	if err := l.Reset(context.Background()); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	want := append(append([]byte{}, swdResetSeq...), 0)
	if !bytes.Equal(f.Written, want) {
		t.Fatalf("Written = %#v, want %#v", f.Written, want)
	}
	if l.State() != StateIdle {
		t.Fatalf("State() = %v, want idle", l.State())
	}
}

func TestLinkSingleTransactionOK(t *testing.T) {
	f := &fakeTransport{Data: [][]byte{{0x20, 0, 0, 0, 0, 0x00}}}
	l := NewLink(f)
	req, err := l.Rd(context.Background(), false, 0, true, true)
	if err != nil {
		t.Fatalf("Rd() error = %v", err)
	}
	if req.Data.Value != 0 {
		t.Errorf("Data = %#x, want 0", req.Data.Value)
	}
}

func TestLinkPipelinedReads(t *testing.T) {
	resp := []byte{
		0x20, 0x00, 0x00, 0x00, 0x00, 0x00, // req1: Ack OK, Data 0, DParity 0
		0x20, 0xFF, 0xFF, 0xFF, 0xFF, 0x00, // req2: Ack OK, Data 0xFFFFFFFF, DParity 0
	}
	f := &fakeTransport{Data: [][]byte{resp}}
	l := NewLink(f)
	ctx := context.Background()

	if _, err := l.Rd(ctx, false, 0, true, false); err != nil {
		t.Fatalf("Rd(tx) req1 error = %v", err)
	}
	if _, err := l.Rd(ctx, false, 0, true, false); err != nil {
		t.Fatalf("Rd(tx) req2 error = %v", err)
	}
	if f.flushes != 0 {
		t.Fatalf("flushes = %d, want 0 before any rx=true call", f.flushes)
	}

	req1, err := l.Rd(ctx, false, 0, false, true)
	if err != nil {
		t.Fatalf("Rd(rx) req1 error = %v", err)
	}
	if req1.Data.Value != 0 {
		t.Errorf("req1.Data = %#x, want 0", req1.Data.Value)
	}
	if f.flushes != 1 {
		t.Fatalf("flushes = %d, want 1 after first rx=true call", f.flushes)
	}

	req2, err := l.Rd(ctx, false, 0, false, true)
	if err != nil {
		t.Fatalf("Rd(rx) req2 error = %v", err)
	}
	if req2.Data.Value != 0xFFFFFFFF {
		t.Errorf("req2.Data = %#x, want 0xFFFFFFFF", req2.Data.Value)
	}
	// The second rx=true call must not trigger a second real flush: it
	// only keeps draining the response the first flush already fetched.
	if f.flushes != 1 {
		t.Fatalf("flushes = %d, want 1 after second rx=true call", f.flushes)
	}
}

func TestLinkAckWait(t *testing.T) {
	f := &fakeTransport{Data: [][]byte{{0x40, 0, 0, 0, 0, 0}}}
	l := NewLink(f)
	_, err := l.Rd(context.Background(), false, 0, true, true)
	if err != ErrAckWait {
		t.Fatalf("Rd() error = %v, want ErrAckWait", err)
	}
	if l.State() == StateError {
		t.Fatal("State() should not be Error after a WAIT response")
	}
}

func TestLinkAckFault(t *testing.T) {
	f := &fakeTransport{Data: [][]byte{{0x80, 0, 0, 0, 0, 0}}}
	l := NewLink(f)
	_, err := l.Rd(context.Background(), false, 0, true, true)
	if err != ErrAckFault {
		t.Fatalf("Rd() error = %v, want ErrAckFault", err)
	}
	if l.State() != StateError {
		t.Fatalf("State() = %v, want Error", l.State())
	}
}

func TestLinkParityMismatch(t *testing.T) {
	// Ack OK, Data 0, but DParity claims odd parity: wrong for Data=0.
	f := &fakeTransport{Data: [][]byte{{0x20, 0, 0, 0, 0, 0x80}}}
	l := NewLink(f)
	_, err := l.Rd(context.Background(), false, 0, true, true)
	if err != ErrParity {
		t.Fatalf("Rd() error = %v, want ErrParity", err)
	}
}

func TestDecodeAck(t *testing.T) {
	cases := []struct {
		v    uint32
		want error
	}{
		{0b001, nil},
		{0b010, ErrAckWait},
		{0b100, ErrAckFault},
		{0b011, ErrAckProtocol},
		{0, ErrAckProtocol},
	}
	for _, c := range cases {
		if got := DecodeAck(c.v); got != c.want {
			t.Errorf("DecodeAck(%#b) = %v, want %v", c.v, got, c.want)
		}
	}
}
