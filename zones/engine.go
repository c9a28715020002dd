// zones/engine.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package zones turns landing locations and aircraft glide performance
// into risk-rated reachability zones.
//
// All Engine methods are pure functions of their arguments and the
// Engine's configuration; they may be called concurrently.
package zones

import (
	"github.com/TilBlechschmidt/AviationEmergencyLocations/aviation"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/geometry"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/log"
)

type Engine struct {
	Kernel geometry.Kernel
	Config Config
	lg     *log.Logger
}

// NewEngine returns an Engine; a nil kernel selects the default
// geometry.ClipKernel.
func NewEngine(k geometry.Kernel, cfg Config, lg *log.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if k == nil {
		k = geometry.NewClipKernel()
	}
	return &Engine{Kernel: k, Config: cfg, lg: lg}, nil
}

// ClassifyRisk rates a location using the Engine's configuration.
func (e *Engine) ClassifyRisk(loc aviation.Location, headroom float64) RiskCategory {
	return e.Config.ClassifyRisk(loc, headroom)
}

// LocationRisk classifies the location for the given aircraft using the
// location's headroom ratio for it.
func (e *Engine) LocationRisk(loc aviation.Location, ac aviation.Aircraft) (RiskCategory, error) {
	h, err := loc.Headroom(ac.ID)
	if err != nil {
		return 0, &ComputationError{LocationID: loc.ID, LocationName: loc.Name, Err: err}
	}
	return e.Config.ClassifyRisk(loc, h), nil
}
