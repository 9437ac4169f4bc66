// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package monitor runs the send/receive polling loop that samples a set
// of target memory addresses over a dap.Session and reports value
// changes to a ChangeSink.
package monitor

import "fmt"

// PollVar names a single 32-bit target memory location to sample every
// round.
type PollVar struct {
	Name string
	Addr uint32
}

// Sample is one variable's value as of the most recent poll round. OK is
// false when the round's read came back with a non-OK Ack, in which case
// Value is meaningless.
type Sample struct {
	Var   PollVar
	Value uint32
	OK    bool
}

// String renders the change-notification line a front end prints for this
// sample: "<name>=<HEXVALUE>" in uppercase hex with no fixed width, or
// "<name>=?" when OK is false.
func (s Sample) String() string {
	if !s.OK {
		return fmt.Sprintf("%s=?", s.Var.Name)
	}
	return fmt.Sprintf("%s=%X", s.Var.Name, s.Value)
}
