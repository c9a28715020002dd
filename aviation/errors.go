// aviation/errors.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "errors"

var (
	ErrMissingPerformance = errors.New("missing performance data")
	ErrUnknownAircraft    = errors.New("unknown aircraft")
	ErrUnknownLocation    = errors.New("unknown location")
	ErrInvalidRangeCurve  = errors.New("invalid range curve")
)
