package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bichil/orgchart/pkg/chart"
	"github.com/bichil/orgchart/pkg/editor"
	"github.com/bichil/orgchart/pkg/errors"
	"github.com/bichil/orgchart/pkg/export"
)

func (s *Server) render(r *http.Request) (*export.Artifact, error) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		return nil, err
	}
	var g *chart.Graph
	s.withEditor(func(ed *editor.Editor) { g = ed.Chart() })

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.ExportTimeout)
	defer cancel()
	return s.runner.Render(ctx, g, format)
}

func (s *Server) exportChart(w http.ResponseWriter, r *http.Request) {
	art, err := s.render(r)
	if err != nil {
		s.writeExportError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", art.Format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Format.FileName()))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	if art.Cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}

func (s *Server) uploadExport(w http.ResponseWriter, r *http.Request) {
	if s.uploader == nil {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "uploads are not configured"))
		return
	}
	art, err := s.render(r)
	if err != nil {
		s.writeExportError(w, r, err)
		return
	}
	url, err := s.uploader.Upload(r.Context(), art.Format.FileName(), art.Data, art.Format.ContentType())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("uploaded export", "format", art.Format, "bytes", len(art.Data))
	writeJSON(w, http.StatusCreated, map[string]any{"url": url, "format": art.Format, "bytes": len(art.Data)})
}
