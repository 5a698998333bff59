package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geocoder/internal/export"
	"github.com/sells-group/geocoder/internal/pipeline"
	"github.com/sells-group/geocoder/internal/resolve"
	"github.com/sells-group/geocoder/internal/table"
)

const (
	defaultInspectRows = 5
	resultPreviewRows  = 100
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, "index.html", map[string]any{
		"Provider":  s.opts.Provider,
		"MaxUpload": s.opts.MaxUploadBytes >> 20,
	})
}

// inspectResponse describes an uploaded table before geocoding.
type inspectResponse struct {
	Filename string     `json:"filename"`
	Rows     int        `json:"rows"`
	Columns  []string   `json:"columns"`
	Head     [][]string `json:"head"`
}

// handleInspect returns the columns and first rows of an upload so the
// caller can pick the address columns.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	filename, t, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	n := defaultInspectRows
	if v := r.FormValue("rows"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "rows must be a non-negative integer")
			return
		}
		n = parsed
	}

	writeJSON(w, inspectResponse{
		Filename: filename,
		Rows:     t.Len(),
		Columns:  t.Columns(),
		Head:     cellText(t.Head(n)),
	})
}

// geocodeResponse is the JSON form of a finished run.
type geocodeResponse struct {
	ID     string            `json:"id"`
	Report *pipeline.Report  `json:"report"`
	Links  map[string]string `json:"links"`
}

// handleGeocode runs the pipeline over an upload. Browsers are redirected to
// the result page; JSON clients get the report and download links.
func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	filename, t, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	sel, err := selectionFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := pipeline.New(s.geocoder).Run(r.Context(), t, sel)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	res := s.results.Put(filename, t, rep)
	zap.L().Info("web: geocoded upload",
		zap.String("id", res.ID),
		zap.String("filename", filename),
		zap.Int("rows", rep.Rows),
		zap.Int("located", rep.Located),
	)

	base := "/results/" + res.ID
	if wantsJSON(r) {
		writeJSON(w, geocodeResponse{
			ID:     res.ID,
			Report: rep,
			Links: map[string]string{
				"self":    base,
				"csv":     base + "/csv",
				"geojson": base + "/geojson",
				"map":     base + "/map",
			},
		})
		return
	}
	http.Redirect(w, r, base, http.StatusSeeOther)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.render(w, "result.html", map[string]any{
		"Result":  res,
		"Report":  res.Report,
		"Columns": res.Table.Columns(),
		"Rows":    cellText(res.Table.Head(resultPreviewRows)),
		"Total":   res.Table.Len(),
	})
}

func (s *Server) handleResultCSV(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := table.WriteCSV(&buf, res.Table); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName(res.Filename, ".csv")))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleResultGeoJSON(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteGeoJSON(&buf, res.Table); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName(res.Filename, ".geojson")))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleResultMap(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	opts := s.opts.Map
	opts.Title = res.Filename
	var buf bytes.Buffer
	if err := export.RenderMap(&buf, res.Table, opts); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// readUpload parses the multipart "file" field into a table. On failure it
// writes the error response and returns ok == false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, *table.Table, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return "", nil, false
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return "", nil, false
	}

	t, err := table.Read(header.Filename, bytes.NewReader(data), table.ReadOptions{
		Encoding:  r.FormValue("encoding"),
		Sheet:     r.FormValue("sheet"),
		TrimSpace: true,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", nil, false
	}
	return header.Filename, t, true
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*Result, bool) {
	res, ok := s.results.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "result not found")
		return nil, false
	}
	return res, true
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// selectionFromForm builds the column selection from either a YAML profile
// in the "selection" field or the mode/column fields.
func selectionFromForm(r *http.Request) (resolve.Selection, error) {
	if profile := r.FormValue("selection"); profile != "" {
		return resolve.ParseSelection([]byte(profile))
	}

	switch resolve.Mode(r.FormValue("mode")) {
	case resolve.ModeSingle, "":
		return resolve.Single(r.FormValue("column")), nil
	case resolve.ModeMulti:
		return resolve.Multi(
			r.FormValue("street"),
			r.FormValue("postcode"),
			r.FormValue("city"),
			r.FormValue("country"),
		), nil
	default:
		return resolve.Selection{}, eris.Wrapf(resolve.ErrInvalidSelection, "web: unknown mode %q", r.FormValue("mode"))
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, resolve.ErrInvalidSelection),
		errors.Is(err, pipeline.ErrEmptyTable),
		errors.Is(err, table.ErrEmptyInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func downloadName(filename, ext string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" || base == "." {
		base = "addresses"
	}
	return base + "_geocoded" + ext
}

func cellText(t *table.Table) [][]string {
	out := make([][]string, t.Len())
	for i := range out {
		row := t.Row(i)
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = v.String()
		}
		out[i] = cells
	}
	return out
}
