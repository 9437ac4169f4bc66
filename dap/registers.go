// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dap implements the ARM Debug Access Port register layer on top
// of package swd: DP/AP register addresses, the SELECT and CSW bit
// layouts, and the session operations (power-up, banked AP access,
// 32-bit memory reads) a Cortex-M target needs.
package dap

// Debug Port register addresses (ARM DDI 0314H, Coresight Components
// Technical Reference Manual). IDCODE and ABORT share an address, as do
// CTRL and STATUS: which one a given access means depends on read vs
// write.
const (
	DPortIDCode DpRegister = 0x0
	DPortAbort  DpRegister = 0x0
	DPortCtrl   DpRegister = 0x4
	DPortStatus DpRegister = 0x4
	DPortSelect DpRegister = 0x8
	DPortRdBuff DpRegister = 0xc
)

// Access Port register addresses (ARM DDI 0337E, Cortex-M3 Technical
// Reference Manual §11-38). The high nibble of a banked register address
// selects the bank through SelectWord.APBankSel; CSW/TAR/DRW always live
// in bank 0.
const (
	APortCSW          ApRegister = 0x0
	APortTAR          ApRegister = 0x4
	APortDRW          ApRegister = 0xc
	APortBank0        ApRegister = 0x10
	APortBank1        ApRegister = 0x14
	APortBank2        ApRegister = 0x18
	APortBank3        ApRegister = 0x1c
	APortDebugROMAddr ApRegister = 0xf8
	APortIdent        ApRegister = 0xfc
)

// DPowerupCtrl is the Control/Status word that requests debug and system
// power-up (CDBGPWRUPREQ | CSYSPWRUPREQ).
const DPowerupCtrl = uint32(0x5) << 28

// DPowerupAck is the Control/Status value, masked to its top nibble, that
// confirms both power-up acknowledges are set.
const DPowerupAck = 0xf

// DAbortClear is the ABORT register value that clears every sticky error
// flag (STKCMPCLR, STKERRCLR, WDERRCLR, ORUNERRCLR, bits 1-4). The
// DAPABORT bit (bit 0) is left clear.
const DAbortClear = uint32(0x1e)

// DpRegister is a Debug Port register address.
type DpRegister uint32

// ApRegister is an Access Port register address within the currently
// selected bank.
type ApRegister uint32

// SelectWord is the DP SELECT register: it chooses the DP register bank,
// the AP register bank, and which of up to 256 APs subsequent AP
// accesses target.
type SelectWord uint32

// NewSelectWord builds a SELECT value for AP apSel, AP register bank
// apBank.
func NewSelectWord(apSel uint32, apBank uint32) SelectWord {
	return SelectWord((apSel&0xff)<<24 | (apBank&0xf)<<4)
}

// APBankSel is the 4-bit AP register bank select field.
func (s SelectWord) APBankSel() uint32 { return uint32(s>>4) & 0xf }

// DPBankSel is the 4-bit DP register bank select field.
func (s SelectWord) DPBankSel() uint32 { return uint32(s) & 0xf }

// APSel is the 8-bit AP select field.
func (s SelectWord) APSel() uint32 { return uint32(s>>24) & 0xff }

// CswWord is the AHB-AP Control/Status Word register.
//
// Mode occupies bits 8-11 here, following the Iosoft Reporta project's
// AP_CSW_REG layout rather than strict ADIv5 (where those bits split
// between Mode at 8-11 and a prefetch/reserved area differently laid
// out in later AP revisions). See Open Question (b): this is kept
// deliberately non-conformant to preserve this project's observable
// wire behaviour.
type CswWord uint32

// Size encodings for CswWord.WithSize.
const (
	CswSize8  = 0
	CswSize16 = 1
	CswSize32 = 2
)

// WithSize returns c with its Size field set: 0 for an 8-bit access, 1
// for 16-bit, 2 for 32-bit.
func (c CswWord) WithSize(size uint32) CswWord {
	return c&^0x7 | CswWord(size&0x7)
}

// WithAddrInc returns c with its AddrInc field set (1 to auto-increment
// TAR after each DRW access, 0 to leave it fixed).
func (c CswWord) WithAddrInc(inc bool) CswWord {
	c &^= 0x3 << 4
	if inc {
		c |= 1 << 4
	}
	return c
}

// WithHProt1 returns c with HProt1 set or cleared: privileged vs user
// level access on the AHB bus.
func (c CswWord) WithHProt1(set bool) CswWord {
	c &^= 1 << 25
	if set {
		c |= 1 << 25
	}
	return c
}

// WithMasterType returns c with MasterType set or cleared: 1 selects the
// AHB-AP itself as bus master (rather than the core) for the access.
func (c CswWord) WithMasterType(set bool) CswWord {
	c &^= 1 << 29
	if set {
		c |= 1 << 29
	}
	return c
}

// Mode returns the 4-bit Mode field (bits 8-11), per Open Question (b).
func (c CswWord) Mode() uint32 { return uint32(c>>8) & 0xf }

// TransInProg reports the AHB-AP's TransInProg bit: an access is still
// in flight.
func (c CswWord) TransInProg() bool { return c&(1<<7) != 0 }

// DbgStatus reports the AHB-AP's DbgStatus bit: the last access
// completed without a bus fault.
func (c CswWord) DbgStatus() bool { return c&(1<<6) != 0 }
