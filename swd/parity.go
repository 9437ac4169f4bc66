// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package swd

// Parity32 returns the even parity (0 or 1) of the 32-bit value: a
// word-parallel popcount fold, reduced mod 2, rather than a per-bit loop.
func Parity32(v uint32) uint32 {
	v = v - ((v >> 1) & 0x55555555)
	v = (v & 0x33333333) + ((v >> 2) & 0x33333333)
	v = (((v + (v >> 4)) & 0x0f0f0f0f) * 0x01010101) >> 24
	return v & 1
}
