// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package swd

import "context"

// fakeTransport is a scripted Transport, in the spirit of d2xx/d2xxtest's
// Fake: each Flush call pops one response slice off Data, in order, while
// every written bit or byte is recorded in Written for assertions.
type fakeTransport struct {
	Data [][]byte

	Written []byte
	rxN     int
	flushes int
}

func (f *fakeTransport) WriteBits(v byte, n int) error {
	f.Written = append(f.Written, v&byte(1<<uint(n)-1))
	return nil
}

func (f *fakeTransport) WriteReadBits(v byte, n int) error {
	f.rxN++
	return f.WriteBits(v, n)
}

func (f *fakeTransport) WriteBytes(p []byte) error {
	f.Written = append(f.Written, p...)
	return nil
}

func (f *fakeTransport) Flush(ctx context.Context) ([]byte, error) {
	if f.rxN == 0 {
		return nil, nil
	}
	defer func() { f.rxN = 0 }()
	if f.flushes >= len(f.Data) {
		return nil, ErrReadTimeout
	}
	rx := f.Data[f.flushes]
	f.flushes++
	return rx, nil
}
