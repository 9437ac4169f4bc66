// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dap

import "errors"

// ErrPowerup is returned by Session.Start when the target acknowledged
// the debug/system power-up request but CTRL/STATUS never reports both
// bits set.
var ErrPowerup = errors.New("dap: target did not power up")
