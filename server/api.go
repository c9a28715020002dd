// server/api.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/aviation"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/geojson"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/math"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/util"

	"github.com/gorilla/mux"
)

type AircraftSummary struct {
	ID   string  `json:"id" msgpack:"id"`
	Name string  `json:"name" msgpack:"name"`
	MTOW float64 `json:"mtow" msgpack:"mtow"`
}

type AircraftDetails struct {
	AircraftSummary `msgpack:",inline"`
	MTOWKilograms   float64                      `json:"mtowKg" msgpack:"mtowKg"`
	TurnRadius      float64                      `json:"turnRadius" msgpack:"turnRadius"`
	Landing         *aviation.LandingPerformance `json:"landing,omitempty" msgpack:"landing,omitempty"`
	// Required landing distance (m) by surface.
	LandingDistance map[string]float64 `json:"landingDistance" msgpack:"landingDistance"`
}

type LocationData struct {
	ID     string        `json:"id" msgpack:"id"`
	Name   string        `json:"name" msgpack:"name"`
	Start  math.Point2LL `json:"start" msgpack:"start"`
	End    math.Point2LL `json:"end" msgpack:"end"`
	Length float64       `json:"length" msgpack:"length"`

	// Bearings are in radians.
	Bearing        float64  `json:"bearing" msgpack:"bearing"`
	ReverseBearing *float64 `json:"reverseBearing,omitempty" msgpack:"reverseBearing,omitempty"`
	Reversible     bool     `json:"reversible" msgpack:"reversible"`
	Surface        string   `json:"surface" msgpack:"surface"`
	Usage          string   `json:"usage" msgpack:"usage"`
	HumanPresence  string   `json:"humanPresence" msgpack:"humanPresence"`
	Elevation      float64  `json:"elevation,omitempty" msgpack:"elevation,omitempty"`
	SurveyDate     string   `json:"surveyDate,omitempty" msgpack:"surveyDate,omitempty"`
	Remarks        string   `json:"remarks,omitempty" msgpack:"remarks,omitempty"`

	// Only present when an aircraft was given.
	Aircraft string   `json:"aircraft,omitempty" msgpack:"aircraft,omitempty"`
	Risk     string   `json:"risk,omitempty" msgpack:"risk,omitempty"`
	Color    string   `json:"color,omitempty" msgpack:"color,omitempty"`
	Headroom *float64 `json:"headroom,omitempty" msgpack:"headroom,omitempty"`
}

type ClosestLocation struct {
	ID       string  `json:"id" msgpack:"id"`
	Name     string  `json:"name" msgpack:"name"`
	Distance float64 `json:"distance" msgpack:"distance"` // m, to the runway midpoint
}

func summarize(ac aviation.Aircraft) AircraftSummary {
	return AircraftSummary{ID: ac.ID, Name: ac.Name, MTOW: ac.MTOW}
}

func (s *Server) aircraftListHandler(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, util.MapSlice(s.catalog.Aircraft(), summarize))
}

func (s *Server) aircraftHandler(w http.ResponseWriter, r *http.Request) {
	ac, err := s.catalog.LookupAircraft(mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	details := AircraftDetails{
		AircraftSummary: summarize(ac),
		MTOWKilograms:   ac.MTOWKilograms(),
		TurnRadius:      ac.Performance.TurnRadius,
		Landing:         ac.Landing,
		LandingDistance: make(map[string]float64),
	}
	for surface, d := range ac.Performance.LandingDistance {
		details.LandingDistance[surface.String()] = d
	}
	s.respond(w, r, details)
}

func (s *Server) locationHandler(w http.ResponseWriter, r *http.Request) {
	loc, err := s.catalog.LookupLocation(mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data := LocationData{
		ID:             loc.ID,
		Name:           loc.Name,
		Start:          loc.Start,
		End:            loc.End,
		Length:         loc.Length,
		Bearing:        loc.Bearing,
		ReverseBearing: loc.ReverseBearing,
		Reversible:     loc.Reversible,
		Surface:        loc.Surface.String(),
		Usage:          loc.Usage.String(),
		HumanPresence:  loc.HumanPresence.String(),
		Elevation:      loc.Elevation,
		SurveyDate:     loc.SurveyDate,
		Remarks:        loc.Remarks,
	}

	if id := r.URL.Query().Get("aircraft"); id != "" {
		ac, err := s.catalog.LookupAircraft(id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		h, err := loc.Headroom(ac.ID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		risk := s.engine.ClassifyRisk(loc, h)

		data.Aircraft = ac.ID
		data.Risk = risk.String()
		data.Color = s.engine.Config.Color(risk)
		data.Headroom = &h
	}

	s.respond(w, r, data)
}

func (s *Server) closestHandler(w http.ResponseWriter, r *http.Request) {
	lat, err := floatParam(r, "lat")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	lon, err := floatParam(r, "lon")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p := math.Point2LL{lon, lat}
	if !p.IsValid() {
		s.fail(w, r, fmt.Errorf("%s: position out of range: %w", p.DDString(), ErrBadParameter))
		return
	}

	loc, ok := s.catalog.Closest(p)
	if !ok {
		s.fail(w, r, ErrNoLocations)
		return
	}
	s.respond(w, r, ClosestLocation{
		ID:       loc.ID,
		Name:     loc.Name,
		Distance: math.DistanceMeters(p, loc.Midpoint()),
	})
}

func (s *Server) reachabilityHandler(w http.ResponseWriter, r *http.Request) {
	ac, err := s.aircraftParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	alt, err := floatParam(r, "altitude")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	b, err := s.reachability(r.Context(), ac, alt)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondGeoJSON(w, r, b)
}

func (s *Server) linesHandler(w http.ResponseWriter, r *http.Request) {
	ac, err := s.aircraftParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	b, err := s.cached(r.Context(), linesKey(ac.ID), "lines", func() ([]byte, error) {
		lines, err := s.engine.AnnotateCenterlines(s.catalog.Locations(), ac)
		if err != nil {
			return nil, err
		}
		return geojson.FromLines(lines).Marshal()
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondGeoJSON(w, r, b)
}

// reachability returns the encoded zones of the aircraft at the given
// altitude.
func (s *Server) reachability(ctx context.Context, ac aviation.Aircraft, altitude float64) ([]byte, error) {
	return s.cached(ctx, reachabilityKey(ac.ID, altitude), "reachability", func() ([]byte, error) {
		zm, err := s.engine.CompositeZones(s.catalog.Locations(), ac, altitude)
		if err != nil {
			return nil, err
		}
		return geojson.FromZones(zm, s.engine.Config).Marshal()
	})
}

// cached returns the cached response for key or computes and caches it.
// Concurrent requests for the same key share a single computation.
func (s *Server) cached(ctx context.Context, key, kind string, compute func() ([]byte, error)) ([]byte, error) {
	if b, ok := s.cache.Get(ctx, key); ok {
		return b, nil
	}

	v, err, _ := s.inflight.Do(key, func() (any, error) {
		start := time.Now()
		b, err := compute()
		s.metrics.ComputeDurations.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		// Don't tie the shared cache write to a request that may be
		// canceled.
		s.cache.Add(context.WithoutCancel(ctx), key, b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *Server) aircraftParam(r *http.Request) (aviation.Aircraft, error) {
	id := r.URL.Query().Get("aircraft")
	if id == "" {
		return aviation.Aircraft{}, fmt.Errorf("aircraft: %w", ErrMissingParameter)
	}
	return s.catalog.LookupAircraft(id)
}

func floatParam(r *http.Request, name string) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, fmt.Errorf("%s: %w", name, ErrMissingParameter)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || !math.IsFinite(f) {
		return 0, fmt.Errorf("%s: %q: %w", name, v, ErrBadParameter)
	}
	return f, nil
}
