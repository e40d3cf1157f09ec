package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"terragen/pkg/config"
	"terragen/pkg/export"
	"terragen/pkg/terrain"
)

// Router returns the preview HTTP API
func (e *Engine) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/status", e.statusHandler).Methods(http.MethodGet)
	router.HandleFunc("/settings", e.getSettingsHandler).Methods(http.MethodGet)
	router.HandleFunc("/settings", e.putSettingsHandler).Methods(http.MethodPut)
	router.HandleFunc("/heightmap.png", e.heightmapHandler).Methods(http.MethodGet)
	router.HandleFunc("/terrain.obj", e.meshHandler).Methods(http.MethodGet)
	router.HandleFunc("/placements", e.placementsHandler).Methods(http.MethodGet)
	router.HandleFunc("/height", e.heightHandler).Methods(http.MethodGet)
	router.HandleFunc("/presets", e.listPresetsHandler).Methods(http.MethodGet)
	router.HandleFunc("/presets/{name}", e.savePresetHandler).Methods(http.MethodPut)
	router.HandleFunc("/presets/{name}/load", e.loadPresetHandler).Methods(http.MethodPost)
	router.HandleFunc("/export", e.exportHandler).Methods(http.MethodPost)
	return router
}

// Serve runs the preview server until ctx is cancelled
func (e *Engine) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           e.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	e.logger.Infof("Preview server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusResponse struct {
	Generation int               `json:"generation"`
	Status     string            `json:"status"`
	Vertices   int               `json:"vertices"`
	Faces      int               `json:"faces"`
	Counts     map[string]int    `json:"counts"`
	Failures   map[string]string `json:"failures,omitempty"`
}

func (e *Engine) statusHandler(res http.ResponseWriter, req *http.Request) {
	var resp statusResponse
	e.Do(func(s *terrain.TerrainState) error {
		snap := s.Snapshot()
		resp = statusResponse{
			Generation: snap.Generation,
			Status:     s.Status().String(),
			Vertices:   len(snap.Mesh.Vertices),
			Faces:      len(snap.Mesh.Faces),
			Counts:     make(map[string]int),
		}
		for cat, placed := range snap.Placements {
			resp.Counts[cat.String()] = len(placed)
		}
		for cat, err := range snap.Failures {
			if resp.Failures == nil {
				resp.Failures = make(map[string]string)
			}
			resp.Failures[cat.String()] = err.Error()
		}
		return nil
	})
	writeJSON(res, http.StatusOK, resp)
}

func (e *Engine) getSettingsHandler(res http.ResponseWriter, req *http.Request) {
	writeJSON(res, http.StatusOK, e.Settings())
}

func (e *Engine) putSettingsHandler(res http.ResponseWriter, req *http.Request) {
	var flat config.Settings
	if err := json.NewDecoder(req.Body).Decode(&flat); err != nil {
		writeError(res, http.StatusBadRequest, fmt.Errorf("invalid settings document: %w", err))
		return
	}
	if err := e.ApplySettings(flat); err != nil {
		writeError(res, statusFor(err), err)
		return
	}
	writeJSON(res, http.StatusOK, e.Settings())
}

func (e *Engine) heightmapHandler(res http.ResponseWriter, req *http.Request) {
	size := e.config.Export.PreviewSize
	if v := req.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 4096 {
			writeError(res, http.StatusBadRequest, fmt.Errorf("invalid size %q", v))
			return
		}
		size = n
	}

	snap := e.Snapshot()
	var placements []terrain.PlacedInstance
	if req.URL.Query().Get("markers") != "false" {
		for _, cat := range terrain.Categories() {
			placements = append(placements, snap.Placements[cat]...)
		}
	}

	var buf bytes.Buffer
	if err := export.WritePreviewPNG(&buf, snap.Field, placements, size); err != nil {
		writeError(res, http.StatusInternalServerError, err)
		return
	}
	res.Header().Set("Content-Type", "image/png")
	res.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	res.Write(buf.Bytes())
}

func (e *Engine) meshHandler(res http.ResponseWriter, req *http.Request) {
	snap := e.Snapshot()
	res.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := export.WriteTerrainOBJ(res, e.config.Export.ModelName, snap.Mesh); err != nil {
		e.logger.Errorf("Failed to write mesh: %v", err)
	}
}

func (e *Engine) placementsHandler(res http.ResponseWriter, req *http.Request) {
	snap := e.Snapshot()

	cats := terrain.Categories()
	if name := req.URL.Query().Get("category"); name != "" {
		cat, err := terrain.ParseCategory(name)
		if err != nil {
			writeError(res, http.StatusBadRequest, err)
			return
		}
		cats = []terrain.Category{cat}
	}

	var placements []terrain.PlacedInstance
	for _, cat := range cats {
		placements = append(placements, snap.Placements[cat]...)
	}
	writeJSON(res, http.StatusOK, export.PlacementRecords(placements))
}

type heightResponse struct {
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Z      float64     `json:"z"`
	Inside bool        `json:"inside"`
	Normal *[3]float64 `json:"normal,omitempty"`
}

func (e *Engine) heightHandler(res http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeError(res, http.StatusBadRequest, fmt.Errorf("x and y must be numbers"))
		return
	}

	resp := heightResponse{X: x, Y: y}
	e.Do(func(s *terrain.TerrainState) error {
		surface := s.Surface()
		resp.Z, resp.Inside = surface.HeightAt(x, y)
		if n, ok := surface.NormalAt(x, y); ok {
			resp.Normal = &[3]float64{n[0], n[1], n[2]}
		}
		return nil
	})
	writeJSON(res, http.StatusOK, resp)
}

func (e *Engine) listPresetsHandler(res http.ResponseWriter, req *http.Request) {
	names, err := e.ListPresets()
	if err != nil {
		writeError(res, http.StatusNotFound, err)
		return
	}
	writeJSON(res, http.StatusOK, names)
}

func (e *Engine) savePresetHandler(res http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	if err := e.SavePreset(name); err != nil {
		writeError(res, http.StatusInternalServerError, err)
		return
	}
	res.WriteHeader(http.StatusNoContent)
}

func (e *Engine) loadPresetHandler(res http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	if err := e.LoadPreset(name); err != nil {
		writeError(res, statusFor(err), err)
		return
	}
	writeJSON(res, http.StatusOK, e.Settings())
}

func (e *Engine) exportHandler(res http.ResponseWriter, req *http.Request) {
	result, err := e.Export()
	if err != nil {
		writeError(res, http.StatusInternalServerError, err)
		return
	}
	writeJSON(res, http.StatusOK, result)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, terrain.ErrInvalidParameter), errors.Is(err, terrain.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(res http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}
	res.Header().Set("Content-Type", "application/json")
	res.Header().Set("Content-Length", strconv.Itoa(len(data)))
	res.WriteHeader(status)
	res.Write(data)
}

func writeError(res http.ResponseWriter, status int, err error) {
	writeJSON(res, status, map[string]string{"error": err.Error()})
}
