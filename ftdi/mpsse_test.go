// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ftdi

import (
	"bytes"
	"context"
	"testing"

	"periph.io/x/d2xx/d2xxtest"
)

func TestTransportWriteBitsEncoding(t *testing.T) {
	var tr Transport
	if err := tr.WriteBits(0x05, 3); err != nil {
		t.Fatalf("WriteBits() error = %v", err)
	}
	want := []byte{dataBit | dataOut | dataOutFall | dataLSBF, 2, 0x05}
	if !bytes.Equal(tr.cmd, want) {
		t.Fatalf("cmd = %#v, want %#v", tr.cmd, want)
	}
}

func TestTransportWriteBytesEncoding(t *testing.T) {
	var tr Transport
	if err := tr.WriteBytes([]byte{0xFF, 0xFF, 0x9E}); err != nil {
		t.Fatalf("WriteBytes() error = %v", err)
	}
	want := []byte{dataOut | dataOutFall | dataLSBF, 2, 0, 0xFF, 0xFF, 0x9E}
	if !bytes.Equal(tr.cmd, want) {
		t.Fatalf("cmd = %#v, want %#v", tr.cmd, want)
	}
}

func TestTransportWriteReadBitsEncoding(t *testing.T) {
	var tr Transport
	if err := tr.WriteReadBits(0x00, 4); err != nil {
		t.Fatalf("WriteReadBits() error = %v", err)
	}
	want := []byte{dataBit | dataOut | dataOutFall | dataIn | dataLSBF, 3, 0x00}
	if !bytes.Equal(tr.cmd, want) {
		t.Fatalf("cmd = %#v, want %#v", tr.cmd, want)
	}
	if tr.rxN != 1 {
		t.Fatalf("rxN = %d, want 1", tr.rxN)
	}
}

func TestTransportRejectsOutOfRangeWidths(t *testing.T) {
	var tr Transport
	if err := tr.WriteBits(0, 0); err == nil {
		t.Fatal("WriteBits(0 bits) should fail")
	}
	if err := tr.WriteBits(0, 9); err == nil {
		t.Fatal("WriteBits(9 bits) should fail")
	}
	if err := tr.WriteReadBits(0, 9); err == nil {
		t.Fatal("WriteReadBits(9 bits) should fail")
	}
}

func TestTransportFlushNoop(t *testing.T) {
	var tr Transport
	rx, err := tr.Flush(context.Background())
	if err != nil || rx != nil {
		t.Fatalf("Flush() on an empty buffer = %v, %v", rx, err)
	}
}

func TestTransportFlushRoundTrip(t *testing.T) {
	fake := &d2xxtest.Fake{
		DevType: uint32(DevTypeFT232H),
		Data:    [][]byte{{0x0B}},
	}
	tr := Transport{h: &handle{h: fake}}
	if err := tr.WriteReadBits(0x00, 4); err != nil {
		t.Fatalf("WriteReadBits() error = %v", err)
	}
	rx, err := tr.Flush(context.Background())
	if err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if !bytes.Equal(rx, []byte{0x0B}) {
		t.Fatalf("Flush() = %#v, want [0x0B]", rx)
	}
	if len(tr.cmd) != 0 || tr.rxN != 0 {
		t.Fatalf("Transport state not reset after Flush: cmd=%#v rxN=%d", tr.cmd, tr.rxN)
	}
}
