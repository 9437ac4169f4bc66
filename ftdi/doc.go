// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ftdi talks to an FTDI MPSSE-capable USB bridge (FT232H, FT2232H,
// FT4232H) and exposes it as a buffered bit/byte clocked transport.
//
// It only implements the subset of the MPSSE command set needed to drive a
// two-wire SWD link: clocked bit and byte shifts on D0 (clock), D1 (data
// out) and D2 (data in), plus the clock divisor and sync-check commands.
// GPIO headers, SPI/I²C bus emulation and EEPROM programming, all of which
// the D-series silicon also supports, are out of scope.
//
// Use build tag reporta_ftdi_debug to enable verbose transport logging.
//
// # Datasheets
//
// http://www.ftdichip.com/Support/Documents/AppNotes/AN_135_MPSSE_Basics.pdf
//
// http://www.ftdichip.com/Support/Documents/DataSheets/ICs/DS_FT232H.pdf
package ftdi
