// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dap

import (
	"context"
	"errors"
)

// fakeTransport is a scripted swd.Transport: each Flush call pops one
// response slice off Data, in order.
type fakeTransport struct {
	Data [][]byte

	rxN     int
	flushes int
}

var errShortFakeData = errors.New("dap: fakeTransport ran out of scripted responses")

func (f *fakeTransport) WriteBits(v byte, n int) error { return nil }

func (f *fakeTransport) WriteReadBits(v byte, n int) error {
	f.rxN++
	return nil
}

func (f *fakeTransport) WriteBytes(p []byte) error { return nil }

func (f *fakeTransport) Flush(ctx context.Context) ([]byte, error) {
	if f.rxN == 0 {
		return nil, nil
	}
	defer func() { f.rxN = 0 }()
	if f.flushes >= len(f.Data) {
		return nil, errShortFakeData
	}
	rx := f.Data[f.flushes]
	f.flushes++
	return rx, nil
}
