// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"context"
	"errors"
	"testing"
)

type sampleResult struct {
	value uint32
	ok    bool
}

// fakePoller replays one scripted sampleResult per address per round, in
// queue order; QueuePoll is a no-op since the engine never inspects it.
type fakePoller struct {
	results map[uint32][]sampleResult
	queued  []uint32
}

func (f *fakePoller) QueuePoll(ctx context.Context, addr uint32) error {
	f.queued = append(f.queued, addr)
	return nil
}

func (f *fakePoller) CollectPoll(ctx context.Context, addr uint32) (uint32, bool, error) {
	q := f.results[addr]
	if len(q) == 0 {
		return 0, false, errors.New("fakePoller: out of scripted results")
	}
	f.results[addr] = q[1:]
	return q[0].value, q[0].ok, nil
}

func TestEngineReportsOnlyChanges(t *testing.T) {
	a := PollVar{Name: "A", Addr: 0x10}
	b := PollVar{Name: "B", Addr: 0x20}
	f := &fakePoller{results: map[uint32][]sampleResult{
		a.Addr: {{1, true}, {1, true}, {2, true}},
		b.Addr: {{0, false}, {5, true}, {5, true}},
	}}
	e := NewEngine(f, []PollVar{a, b})

	var got []Sample
	e.Sink = ChangeSinkFunc(func(s Sample) { got = append(got, s) })

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := e.pollRound(ctx); err != nil {
			t.Fatalf("pollRound() round %d error = %v", i, err)
		}
	}

	want := []Sample{
		{Var: a, Value: 1, OK: true},
		{Var: b, Value: 0, OK: false},
		{Var: b, Value: 5, OK: true},
		{Var: a, Value: 2, OK: true},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if len(f.queued) != 6 {
		t.Fatalf("queued %d addresses, want 6 (2 vars x 3 rounds)", len(f.queued))
	}
}

func TestEngineRunStopsOnCancel(t *testing.T) {
	a := PollVar{Name: "A", Addr: 0x10}
	f := &fakePoller{results: map[uint32][]sampleResult{
		a.Addr: {{1, true}},
	}}
	e := NewEngine(f, []PollVar{a})
	e.Delay = 0

	ctx, cancel := context.WithCancel(context.Background())
	e.Sink = ChangeSinkFunc(func(s Sample) { cancel() })

	if err := e.Run(ctx); err != context.Canceled {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
}
