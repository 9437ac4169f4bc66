// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package swd implements the bit-level SWD (Serial Wire Debug) protocol
// framing and link state machine on top of a clocked MPSSE transport.
package swd

// BitField is a single named field within an SWD request/response frame:
// a value of up to 32 bits, driven by the host or sampled from the
// target.
type BitField struct {
	Label string
	Width int  // number of bits, 1-32
	Value uint32
	// Sampled marks a field whose bits are read back from the target
	// instead of only being driven by the host. The wire still clocks
	// Width bits either way; Sampled only controls whether the response
	// is captured.
	Sampled bool
}

// Request is an ordered SWD packet: the 8-bit request header, the 1-bit
// turnaround, the 3-bit acknowledge, and (for a successful transfer) a
// 32-bit data phase with its parity bit, each laid out as successive
// BitFields in wire order.
//
// Ack, Data and DParity point at the corresponding entries of Fields so
// callers can read the decoded result without re-scanning the slice.
type Request struct {
	Fields  []*BitField
	Ack     *BitField
	Data    *BitField
	DParity *BitField
}

// dpapBit is 1 for an Access Port register, 0 for a Debug Port register.
func dpapBit(ap bool) uint32 {
	if ap {
		return 1
	}
	return 0
}

// headerParity is the SWD request-header parity over AP/DP, Read/Write and
// the 2-bit register address (bits 3:2 of the byte address).
func headerParity(ap, isRead bool, a23 uint32) uint32 {
	p := dpapBit(ap)
	if isRead {
		p ^= 1
	}
	p ^= a23 & 1
	p ^= (a23 >> 1) & 1
	return p & 1
}

// NewReadRequest builds the bit-field sequence for an SWD read of the
// given AP (ap=true) or DP (ap=false) register. addr is the byte address
// of the register; only bits 3:2 are significant.
func NewReadRequest(ap bool, addr uint32) *Request {
	a23 := (addr >> 2) & 0x3
	hpar := headerParity(ap, true, a23)

	ack := &BitField{Label: "Ack", Width: 3, Sampled: true}
	data := &BitField{Label: "Data", Width: 32, Sampled: true}
	dparity := &BitField{Label: "DParity", Width: 1, Sampled: true}

	return &Request{
		Fields: []*BitField{
			{Label: "Start", Width: 1, Value: 1},
			{Label: "AP", Width: 1, Value: dpapBit(ap)},
			{Label: "Read", Width: 1, Value: 1},
			{Label: "Addr", Width: 2, Value: a23},
			{Label: "HParity", Width: 1, Value: hpar},
			{Label: "Stop", Width: 1, Value: 0},
			{Label: "Park", Width: 1, Value: 1},
			{Label: "Turn", Width: 1, Value: 0},
			ack,
			data,
			dparity,
			{Label: "Turn", Width: 1, Value: 0},
		},
		Ack:     ack,
		Data:    data,
		DParity: dparity,
	}
}

// NewWriteRequest builds the bit-field sequence for an SWD write of value
// to the given AP or DP register.
func NewWriteRequest(ap bool, addr uint32, value uint32) *Request {
	a23 := (addr >> 2) & 0x3
	hpar := headerParity(ap, false, a23)

	ack := &BitField{Label: "Ack", Width: 3, Sampled: true}
	data := &BitField{Label: "Data", Width: 32, Value: value}
	dparity := &BitField{Label: "DParity", Width: 1, Value: Parity32(value)}

	return &Request{
		Fields: []*BitField{
			{Label: "Start", Width: 1, Value: 1},
			{Label: "AP", Width: 1, Value: dpapBit(ap)},
			{Label: "Read", Width: 1, Value: 0},
			{Label: "Addr", Width: 2, Value: a23},
			{Label: "HParity", Width: 1, Value: hpar},
			{Label: "Stop", Width: 1, Value: 0},
			{Label: "Park", Width: 1, Value: 1},
			{Label: "Turn", Width: 1, Value: 0},
			ack,
			{Label: "Turn", Width: 1, Value: 0},
			data,
			dparity,
		},
		Ack:     ack,
		Data:    data,
		DParity: dparity,
	}
}
