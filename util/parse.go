// util/parse.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFloatList parses a comma-separated list of numbers such as
// "150,300, 600". Empty entries are ignored.
func ParseFloatList(s string) ([]float64, error) {
	var v []float64
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%q: invalid number", f)
		}
		v = append(v, x)
	}
	return v, nil
}
