// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ftdi

import (
	"fmt"
	"strconv"

	"periph.io/x/d2xx"
)

// DevType identifies the FTDI silicon family behind an open handle. The
// numeric values match the native D2XX FT_DEVICE enum.
type DevType uint32

const (
	DevTypeUnknown DevType = 3
	DevTypeFT232R  DevType = 5
	DevTypeFT2232H DevType = 6
	DevTypeFT4232H DevType = 7
	DevTypeFT232H  DevType = 8
)

func (d DevType) String() string {
	switch d {
	case DevTypeFT232R:
		return "FT232R"
	case DevTypeFT2232H:
		return "FT2232H"
	case DevTypeFT4232H:
		return "FT4232H"
	case DevTypeFT232H:
		return "FT232H"
	default:
		return "FT-unknown(" + strconv.Itoa(int(d)) + ")"
	}
}

// Info describes one FTDI device discovered on the USB bus, whether or not
// it could be opened.
type Info struct {
	Index     int
	Type      DevType
	VendorID  uint16
	ProductID uint16
	Err       error
}

func (i Info) String() string {
	if i.Err != nil {
		return "broken#" + strconv.Itoa(i.Index) + ": " + i.Err.Error()
	}
	return i.Type.String() + "#" + strconv.Itoa(i.Index)
}

// d2xxOpen is overridden in tests.
var d2xxOpen = d2xx.Open

// d2xxNumDevices is overridden in tests.
var d2xxNumDevices = numDevices

// Enumerate lists every FTDI device the D2XX driver can see, without
// leaving any of them open. Devices that fail to open are still reported,
// with Info.Err set, so a front-end can tell the user why.
func Enumerate() ([]Info, error) {
	n, err := d2xxNumDevices()
	if err != nil {
		return nil, err
	}
	infos := make([]Info, n)
	for i := 0; i < n; i++ {
		h, err := openHandle(d2xxOpen, i)
		if err != nil {
			infos[i] = Info{Index: i, Err: err}
			continue
		}
		infos[i] = Info{Index: i, Type: h.t, VendorID: h.venID, ProductID: h.devID}
		_ = h.Close()
	}
	return infos, nil
}

// Open opens the FTDI device at the given enumeration index and readies it
// for SWD use: MPSSE mode is entered and verified (see Transport.CheckSync)
// before Open returns.
func Open(index int) (*Transport, error) {
	h, err := openHandle(d2xxOpen, index)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceNotFound, err)
	}
	if err := h.Init(); err != nil {
		// The device may be in an unexpected state left over from a prior
		// session; try once more after a full reset.
		if err := h.Reset(); err != nil {
			_ = h.Close()
			return nil, err
		}
		if err := h.Init(); err != nil {
			_ = h.Close()
			return nil, err
		}
	}
	t := &Transport{h: h}
	if err := t.EnterMPSSE(); err != nil {
		_ = h.Close()
		return nil, err
	}
	return t, nil
}

// OpenFirst opens enumeration index 0, the common case for a host with a
// single FTDI adapter attached.
func OpenFirst() (*Transport, error) {
	return Open(0)
}
