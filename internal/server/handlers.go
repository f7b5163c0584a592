// Package server handles HTTP requests and middleware.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/woozymasta/geocollect/internal/export"
	"github.com/woozymasta/geocollect/internal/geo"
	"github.com/woozymasta/geocollect/internal/locate"
	"github.com/woozymasta/geocollect/internal/metrics"
	"github.com/woozymasta/geocollect/internal/point"
	"github.com/woozymasta/geocollect/internal/render"

	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 64 << 10

// captureRequest is the body of POST /api/points.
// Position or Error is filled when the browser resolved the location itself.
type captureRequest struct {
	Position *locate.Position `json:"position,omitempty"`
	Error    *locate.Error    `json:"error,omitempty"`
	point.Form
}

type captureResponse struct {
	Point geo.GeoPoint `json:"point"`
	Index int          `json:"index"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Routes registers all handlers.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/map", s.HandleMap)
	mux.HandleFunc("GET /api/points", s.HandlePoints)
	mux.HandleFunc("POST /api/points", s.HandleCapture)
	mux.HandleFunc("GET /api/points.geojson", s.HandleExport)
	mux.HandleFunc("GET /api/points/{index}/feature", s.HandleFeature)
	mux.HandleFunc("GET /markers/{icon}", s.HandleMarker)
	mux.HandleFunc("GET /favicon.ico", s.HandleFavicon)
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}
	mux.HandleFunc("GET /", s.HandleIndex)

	return RequestLogger(mux, s.Metrics)
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && strings.Contains(r.URL.Path, ".") {
		http.NotFound(w, r)
		return
	}

	if match := r.Header.Get("If-None-Match"); match == s.IndexETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", s.IndexETag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// HandleFavicon serves the site favicon.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Favicon)
}

// HandleMarker serves a marker icon: /markers/{accessible|inaccessible}.webp.
func (s *ServerContext) HandleMarker(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("icon"), ".webp")
	if !ok {
		http.NotFound(w, r)
		return
	}

	icon, ok := s.Markers[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(icon)
}

// HandleMap serves the map view model built from the current points.
func (s *ServerContext) HandleMap(w http.ResponseWriter, r *http.Request) {
	points := s.Collector.Store().Read()
	writeJSON(w, http.StatusOK, render.View(points, s.Config.ViewOptions()))
}

// HandlePoints serves every captured point in capture order.
func (s *ServerContext) HandlePoints(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Collector.Store().Read())
}

// HandleFeature serves one point as a GeoJSON Feature.
func (s *ServerContext) HandleFeature(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid point index"})
		return
	}

	p, ok := s.Collector.Store().At(idx)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "point not found"})
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	_ = json.NewEncoder(w).Encode(geo.PointFeature(p))
}

// HandleExport serves all points as a FeatureCollection.
// Nothing is exported while the store is empty (204).
func (s *ServerContext) HandleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	points := s.Collector.Store().Read()
	if len(points) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	if err := export.Encode(&buf, geo.Collection(points), format); err != nil {
		log.Error().Err(err).Str("format", string(format)).Msg("Failed to encode export")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "export failed"})
		return
	}

	if s.Metrics != nil {
		s.Metrics.Exports.WithLabelValues(string(format)).Inc()
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// HandleCapture captures one point with the posted form values.
func (s *ServerContext) HandleCapture(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.Timeout)
	defer cancel()

	start := time.Now()
	var res point.Result
	if req.Position != nil || req.Error != nil {
		res = <-s.Collector.CaptureFrom(ctx, locate.Reported{Position: req.Position, Err: req.Error}, req.Form)
	} else {
		res = <-s.Collector.Capture(ctx, req.Form)
	}

	s.observeCapture(res, time.Since(start))

	switch {
	case res.Err == nil:
		writeJSON(w, http.StatusCreated, captureResponse{Point: res.Point, Index: res.Index})
	case errors.Is(res.Err, point.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: point.Notice(res.Err)})
	default:
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: point.Notice(res.Err)})
	}
}

func (s *ServerContext) observeCapture(res point.Result, took time.Duration) {
	if s.Metrics == nil {
		return
	}

	result := metrics.ResultOK
	switch {
	case errors.Is(res.Err, point.ErrUnavailable):
		result = metrics.ResultUnavailable
	case res.Err != nil:
		result = metrics.ResultFailed
	}

	s.Metrics.Captures.WithLabelValues(result).Inc()
	s.Metrics.CaptureLatency.Observe(took.Seconds())
	s.Metrics.Points.Set(float64(s.Collector.Store().Len()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Failed to write JSON response")
	}
}
