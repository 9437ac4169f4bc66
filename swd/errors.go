// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package swd

import "errors"

var (
	// ErrAckWait is returned when the target responds WAIT. The caller
	// decides whether and when to retry; the link never retries on its
	// own.
	ErrAckWait = errors.New("swd: target responded WAIT")
	// ErrAckFault is returned when the target responds FAULT.
	ErrAckFault = errors.New("swd: target responded FAULT")
	// ErrAckProtocol is returned when the 3-bit Ack field decodes to a
	// value that is none of OK, WAIT or FAULT.
	ErrAckProtocol = errors.New("swd: unrecognized Ack response")
	// ErrReadTimeout is returned when fewer response bytes came back than
	// the request's sampled fields need.
	ErrReadTimeout = errors.New("swd: short read from transport")
	// ErrParity is returned when a read transaction's sampled data parity
	// doesn't match the recomputed parity of the sampled data.
	ErrParity = errors.New("swd: data parity mismatch")
)

// IsAckError reports whether err is one of the three-bit Ack outcomes
// (WAIT, FAULT or an unrecognized code) rather than a transport-level
// failure. A caller pipelining several transactions per USB round trip
// uses this to keep reading the rest of the response stream after one
// transaction's Ack comes back bad, instead of aborting the whole round.
func IsAckError(err error) bool {
	return err == ErrAckWait || err == ErrAckFault || err == ErrAckProtocol
}
