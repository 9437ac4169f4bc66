// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

// ChangeSink receives a Sample every time a polled variable's value (or
// its known/unknown status) changes. The Go analogue of reporta.py's
// PollTask emitting through a Qt signal.
type ChangeSink interface {
	OnChange(Sample)
}

// ChangeSinkFunc adapts a plain function to a ChangeSink.
type ChangeSinkFunc func(Sample)

// OnChange calls f.
func (f ChangeSinkFunc) OnChange(s Sample) { f(s) }

// LogSink receives free-form progress and diagnostic messages, the Go
// analogue of reporta.py's console print calls.
type LogSink interface {
	Logf(format string, args ...interface{})
}

// LogSinkFunc adapts a plain function to a LogSink.
type LogSinkFunc func(format string, args ...interface{})

// Logf calls f.
func (f LogSinkFunc) Logf(format string, args ...interface{}) { f(format, args...) }
