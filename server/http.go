// server/http.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"context"
	"encoding/json"
	gomath "math"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/geojson"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/cpu"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeGeoJSON = "application/geo+json"
	contentTypeMsgpack = "application/msgpack"

	requestIDHeader = "X-Request-ID"
)

type requestIDKey struct{}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument assigns each request an id, logs it and records its metrics
// by route template.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unknown"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tmpl, err := cr.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		elapsed := time.Since(start)
		s.metrics.Requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.metrics.RequestDurations.WithLabelValues(route).Observe(elapsed.Seconds())

		s.lg.Info("request", "request_id", id, "method", r.Method, "url", r.URL.String(),
			"status", rec.status, "elapsed", elapsed)
	})
}

func wantsMsgpack(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack)
}

// respond encodes v as msgpack if the client asked for it and as JSON
// otherwise.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, v any) {
	if wantsMsgpack(r) {
		b, err := msgpack.Marshal(v)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentTypeMsgpack)
		w.Write(b)
		return
	}

	b, err := json.Marshal(v)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Write(b)
}

// respondGeoJSON sends an already encoded feature collection, re-encoding
// it for msgpack clients.
func (s *Server) respondGeoJSON(w http.ResponseWriter, r *http.Request, b []byte) {
	if wantsMsgpack(r) {
		var fc geojson.FeatureCollection
		if err := json.Unmarshal(b, &fc); err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, r, fc)
		return
	}

	w.Header().Set("Content-Type", contentTypeGeoJSON)
	w.Write(b)
}

type errorResponse struct {
	Error     string `json:"error" msgpack:"error"`
	RequestID string `json:"requestId" msgpack:"requestId"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	he := classifyError(err)
	if he.status == http.StatusUnprocessableEntity {
		s.metrics.computationFailed(he.reason)
	}

	id := requestID(r)
	if he.status >= http.StatusInternalServerError || he.status == http.StatusUnprocessableEntity {
		s.lg.Warn("request failed", "request_id", id, "url", r.URL.String(), "error", err)
	} else {
		s.lg.Info("bad request", "request_id", id, "url", r.URL.String(), "error", err)
	}

	resp := errorResponse{Error: clientMessage(err, he), RequestID: id}
	var b []byte
	if wantsMsgpack(r) {
		b, _ = msgpack.Marshal(resp)
		w.Header().Set("Content-Type", contentTypeMsgpack)
	} else {
		b, _ = json.Marshal(resp)
		w.Header().Set("Content-Type", contentTypeJSON)
	}
	w.WriteHeader(he.status)
	w.Write(b)
}

///////////////////////////////////////////////////////////////////////////
// Status page

type serverStats struct {
	Uptime           time.Duration
	AllocMemory      uint64
	TotalAllocMemory uint64
	SysMemory        uint64
	NumGC            uint32
	NumGoRoutines    int
	CPUUsage         int

	Aircraft  int
	Locations int
	Cache     string
}

var statsTemplate = template.Must(template.New("").Parse(`
<!DOCTYPE html>
<html>
<head>
<title>elsa status</title>
</head>
<body>
<h1>Server Status</h1>
<ul>
  <li>Uptime: {{.Uptime}}</li>
  <li>CPU usage: {{.CPUUsage}}%</li>
  <li>Allocated memory: {{.AllocMemory}} MB</li>
  <li>Total allocated memory: {{.TotalAllocMemory}} MB</li>
  <li>System memory: {{.SysMemory}} MB</li>
  <li>Garbage collection passes: {{.NumGC}}</li>
  <li>Running goroutines: {{.NumGoRoutines}}</li>
</ul>

<h1>Catalog</h1>
<ul>
  <li>Aircraft: {{.Aircraft}}</li>
  <li>Locations: {{.Locations}}</li>
  <li>Cached responses: {{.Cache}}</li>
</ul>
</body>
</html>
`))

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	// Usage since the previous call; doesn't block.
	cpuUsage := 0
	if usage, err := cpu.Percent(0, false); err == nil && len(usage) > 0 {
		cpuUsage = int(gomath.Round(usage[0]))
	}

	stats := serverStats{
		Uptime:           time.Since(s.startTime).Round(time.Second),
		AllocMemory:      m.Alloc / (1024 * 1024),
		TotalAllocMemory: m.TotalAlloc / (1024 * 1024),
		SysMemory:        m.Sys / (1024 * 1024),
		NumGC:            m.NumGC,
		NumGoRoutines:    runtime.NumGoroutine(),
		CPUUsage:         cpuUsage,

		Aircraft:  len(s.catalog.Aircraft()),
		Locations: len(s.catalog.Locations()),
		Cache:     s.cache.String(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := statsTemplate.Execute(w, stats); err != nil {
		s.lg.Errorf("stats template: %v", err)
	}
}
