// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ftdi

import "errors"

var (
	// ErrDeviceNotFound is returned by Open when no FTDI device answers at
	// the requested enumeration index.
	ErrDeviceNotFound = errors.New("ftdi: device not found")
	// ErrSyncFailed is returned by Transport.CheckSync when the device
	// doesn't echo the expected bad-command response, meaning the MPSSE
	// command pipeline isn't framed correctly or the attached part doesn't
	// support MPSSE mode at all.
	ErrSyncFailed = errors.New("ftdi: MPSSE sync check failed")
)
