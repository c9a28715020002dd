// zones/errors.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package zones

import (
	"errors"
	"fmt"
)

var ErrInvalidAltitude = errors.New("invalid altitude")

// ComputationError reports the location for which a zone computation
// failed.
type ComputationError struct {
	LocationID   string
	LocationName string
	Err          error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.LocationName, e.LocationID, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}
