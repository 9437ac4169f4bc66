// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"context"
	"time"
)

// Poller is the subset of *dap.Session a pipelined poll round drives: the
// tx-only send phase and the rx-only receive phase of one variable's
// memory read.
type Poller interface {
	QueuePoll(ctx context.Context, addr uint32) error
	CollectPoll(ctx context.Context, addr uint32) (value uint32, ok bool, err error)
}

// DefaultDelay is the pause between poll rounds, matching
// reporta.py's POLL_DELAY.
const DefaultDelay = 10 * time.Millisecond

// Engine runs the polling loop over a fixed set of variables: queue every
// variable's read in one pass, collect every response in a second pass,
// then report whatever changed. Splitting the two passes amortizes one
// USB round trip across every variable instead of paying it per address.
type Engine struct {
	poller Poller
	vars   []PollVar

	// Delay separates the end of one poll round from the start of the
	// next. Defaults to DefaultDelay.
	Delay time.Duration

	Sink ChangeSink
	Log  LogSink

	last map[uint32]lastValue
}

type lastValue struct {
	known bool
	ok    bool
	value uint32
}

// NewEngine returns an Engine that polls vars through poller.
func NewEngine(poller Poller, vars []PollVar) *Engine {
	return &Engine{
		poller: poller,
		vars:   vars,
		Delay:  DefaultDelay,
		last:   make(map[uint32]lastValue, len(vars)),
	}
}

// Run polls in a loop until ctx is done, reporting every changed
// variable to Sink as it's found. It returns ctx.Err() on cancellation,
// or the first transport error encountered.
func (e *Engine) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.pollRound(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.Delay):
		}
	}
}

func (e *Engine) pollRound(ctx context.Context) error {
	for _, v := range e.vars {
		if err := e.poller.QueuePoll(ctx, v.Addr); err != nil {
			return err
		}
	}
	for _, v := range e.vars {
		value, ok, err := e.poller.CollectPoll(ctx, v.Addr)
		if err != nil {
			return err
		}
		e.report(v, value, ok)
	}
	return nil
}

func (e *Engine) report(v PollVar, value uint32, ok bool) {
	prev := e.last[v.Addr]
	changed := !prev.known || prev.ok != ok || (ok && prev.value != value)
	e.last[v.Addr] = lastValue{known: true, ok: ok, value: value}
	if !changed {
		return
	}
	if e.Sink != nil {
		e.Sink.OnChange(Sample{Var: v, Value: value, OK: ok})
	}
	if e.Log != nil {
		if ok {
			e.Log.Logf("%8s %08X = %08X", v.Name, v.Addr, value)
		} else {
			e.Log.Logf("%8s %08X = ?", v.Name, v.Addr)
		}
	}
}
