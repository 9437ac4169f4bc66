// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dap

import (
	"context"
	"fmt"

	"github.com/jbentham/reporta/swd"
)

// Session drives a Cortex-M Access Port over an already-reset swd.Link:
// power-up, bank selection, memory access configuration, and 32-bit
// memory reads, both immediate and pipelined.
type Session struct {
	link *swd.Link

	// APSel selects which of the target's (possibly several) Access
	// Ports subsequent bank-select writes target. The target this
	// project was built against never uses more than AP 0, so this
	// defaults to the zero value.
	APSel uint32

	// selMirror is the last APSEL/APBANKSEL pair actually written to DP
	// SELECT; selValid is false until the first write. bankSelect skips
	// the write entirely when the requested bank already matches, since
	// the target's SELECT register already holds it.
	selValid  bool
	selMirror SelectWord

	// cswMirror is the last CSW value actually written to the AP;
	// cswValid is false until the first write. Config skips the write
	// when nothing would change.
	cswValid  bool
	cswMirror CswWord
}

// NewSession returns a Session driving link. The caller must have already
// called link.Reset.
func NewSession(link *swd.Link) *Session {
	return &Session{link: link}
}

// Start powers up the debug and system domains and returns the target's
// IDCODE. It performs the four DP accesses in order and stops at the first
// one that fails, keeping ErrPowerup distinct from ack-layer errors: an ack
// failure on any of them surfaces as the swd package's own sentinel error
// (ErrAckWait / ErrAckFault / ErrAckProtocol); a clean ack sequence that
// never sets the power-up acknowledge bits surfaces as ErrPowerup.
func (s *Session) Start(ctx context.Context) (uint32, error) {
	idReq, err := s.link.Rd(ctx, false, uint32(DPortIDCode), true, true)
	if err != nil {
		return 0, err
	}
	if _, err := s.link.Wr(ctx, false, uint32(DPortAbort), DAbortClear, true, true); err != nil {
		return 0, err
	}
	if _, err := s.link.Wr(ctx, false, uint32(DPortCtrl), DPowerupCtrl, true, true); err != nil {
		return 0, err
	}
	statusReq, err := s.link.Rd(ctx, false, uint32(DPortStatus), true, true)
	if err != nil {
		return 0, err
	}
	if statusReq.Data.Value>>28 != DPowerupAck {
		return 0, ErrPowerup
	}
	return idReq.Data.Value, nil
}

// bankSelect writes SELECT to switch the AP register bank subsequent
// bank-0..3 accesses land in. The write is skipped when selMirror already
// matches, so successive accesses within the same bank emit exactly one
// DP SELECT write.
func (s *Session) bankSelect(ctx context.Context, bank uint32) error {
	sel := NewSelectWord(s.APSel, bank)
	if s.selValid && s.selMirror == sel {
		return nil
	}
	if _, err := s.link.Wr(ctx, false, uint32(DPortSelect), uint32(sel), true, true); err != nil {
		return err
	}
	s.selValid = true
	s.selMirror = sel
	return nil
}

// BankedRead selects reg's bank and performs the double read a banked AP
// register needs: the first read is posted and discards whatever the
// previous access left in the AP's read-data latch; the second returns
// reg's actual current value.
func (s *Session) BankedRead(ctx context.Context, reg ApRegister) (uint32, error) {
	if err := s.bankSelect(ctx, uint32(reg)>>4); err != nil {
		return 0, err
	}
	if _, err := s.link.Rd(ctx, true, uint32(reg)&0xf, true, true); err != nil {
		return 0, err
	}
	req, err := s.link.Rd(ctx, true, uint32(reg)&0xf, true, true)
	if err != nil {
		return 0, err
	}
	return req.Data.Value, nil
}

// Config selects AP bank 0 and writes CSW to configure the access size
// (8, 16 or 32 bits) and whether TAR auto-increments after each DRW
// transfer. The CSW write is skipped when cswMirror already matches.
func (s *Session) Config(ctx context.Context, size uint32, autoIncrement bool) error {
	if err := s.bankSelect(ctx, 0); err != nil {
		return err
	}
	csw := CswWord(0).WithMasterType(true).WithHProt1(true).
		WithAddrInc(autoIncrement).WithSize(size)
	if s.cswValid && s.cswMirror == csw {
		return nil
	}
	if _, err := s.link.Wr(ctx, true, uint32(APortCSW), uint32(csw), true, true); err != nil {
		return err
	}
	s.cswValid = true
	s.cswMirror = csw
	return nil
}

// SetAddr writes the AP's Transfer Address Register and waits out the two
// idle bytes the target needs before DRW can be read or written at the
// new address.
func (s *Session) SetAddr(ctx context.Context, addr uint32) error {
	if _, err := s.link.Wr(ctx, true, uint32(APortTAR), addr, true, true); err != nil {
		return err
	}
	if err := s.link.IdleBytes(2); err != nil {
		return err
	}
	return s.link.Flush(ctx)
}

// ReadMem32 performs an immediate 32-bit memory read at addr: set the
// address, a posted dummy read of DRW to prime the pipeline, then the
// real read. Call Config first to select a 32-bit, non-incrementing
// access.
func (s *Session) ReadMem32(ctx context.Context, addr uint32) (uint32, error) {
	if err := s.SetAddr(ctx, addr); err != nil {
		return 0, err
	}
	if _, err := s.link.Rd(ctx, true, uint32(APortDRW), true, true); err != nil {
		return 0, err
	}
	req, err := s.link.Rd(ctx, true, uint32(APortDRW), true, true)
	if err != nil {
		return 0, err
	}
	return req.Data.Value, nil
}

// QueuePoll queues, without waiting for any response, the address switch
// and posted dummy-plus-real DRW read pair a pipelined poll round needs
// for one variable. Call Config once before the first round; call
// CollectPoll with the same addr, after queuing every variable in the
// round, to retrieve the value.
func (s *Session) QueuePoll(ctx context.Context, addr uint32) error {
	if _, err := s.link.Wr(ctx, true, uint32(APortTAR), addr, true, false); err != nil {
		return err
	}
	if err := s.link.IdleBytes(2); err != nil {
		return err
	}
	if _, err := s.link.Rd(ctx, true, uint32(APortDRW), true, false); err != nil {
		return err
	}
	_, err := s.link.Rd(ctx, true, uint32(APortDRW), true, false)
	return err
}

// CollectPoll consumes the response to a prior QueuePoll(ctx, addr) call
// from the link's shared response stream and returns the sampled value.
// ok is false when the final DRW read's Ack came back other than OK,
// matching poll_get_responses' "value unknown this round" outcome; a bad
// Ack on the TAR write or the posted dummy read is skipped over. A
// transport-level error (a short read, say) is returned instead of
// folded into ok.
func (s *Session) CollectPoll(ctx context.Context, addr uint32) (value uint32, ok bool, err error) {
	if _, err := s.link.Wr(ctx, true, uint32(APortTAR), addr, false, true); err != nil && !swd.IsAckError(err) {
		return 0, false, err
	}
	if _, err := s.link.Rd(ctx, true, uint32(APortDRW), false, true); err != nil && !swd.IsAckError(err) {
		return 0, false, err
	}
	req, err := s.link.Rd(ctx, true, uint32(APortDRW), false, true)
	if err != nil {
		if swd.IsAckError(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return req.Data.Value, true, nil
}

// APIdent returns the AP's identification register, formatted as an
// 8-digit hex string, the way a diagnostic printout would display it.
func (s *Session) APIdent(ctx context.Context) (string, error) {
	v, err := s.BankedRead(ctx, APortIdent)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%08X", v), nil
}
