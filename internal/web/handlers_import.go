package web

import (
	"io"
	"net/http"

	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/importer"
)

// handleImport accepts a JSON or YAML project document, chosen by
// Content-Type.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, domain.Invalidf("reading request body: %v", err))
		return
	}
	format := importer.FormatFromContentType(r.Header.Get("Content-Type"))
	result, err := s.svc.Import.Import(r.Context(), data, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toImportResultDTO(result))
}
