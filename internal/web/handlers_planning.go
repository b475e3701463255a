package web

import (
	"net/http"

	"github.com/alexanderramin/taskup/internal/domain"
)

func (s *Server) handleGetResourcePlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.projectFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.svc.Plans.Get(r.Context(), p.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResourcePlanDTO(view))
}

func (s *Server) handleSaveResourcePlan(w http.ResponseWriter, r *http.Request) {
	var req saveResourcePlanRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.projectFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.svc.Plans.SaveNotes(r.Context(), p.ID, req.Notes); err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.svc.Plans.Get(r.Context(), p.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResourcePlanDTO(view))
}

func (s *Server) handleGetScope(w http.ResponseWriter, r *http.Request) {
	p, err := s.projectFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.svc.Scopes.Get(r.Context(), p.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeScope(w, r, http.StatusOK, p.ID, doc)
}

func (s *Server) handleCreateScope(w http.ResponseWriter, r *http.Request) {
	s.saveScope(w, r, true)
}

func (s *Server) handleReplaceScope(w http.ResponseWriter, r *http.Request) {
	s.saveScope(w, r, false)
}

func (s *Server) saveScope(w http.ResponseWriter, r *http.Request, create bool) {
	var req scopeBody
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.projectFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc := req.toDomain(p.ID)
	status := http.StatusOK
	if create {
		err = s.svc.Scopes.Create(r.Context(), doc)
		status = http.StatusCreated
	} else {
		err = s.svc.Scopes.Replace(r.Context(), doc)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeScope(w, r, status, p.ID, doc)
}

// writeScope answers with the document and the work packages that make up
// its breakdown.
func (s *Server) writeScope(w http.ResponseWriter, r *http.Request, status int, projectID string, doc *domain.ScopeDocument) {
	wps, err := s.svc.WorkPackages.ListByProject(r.Context(), projectID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, toScopeDTO(doc, wps))
}

func (s *Server) handleDeleteScope(w http.ResponseWriter, r *http.Request) {
	p, err := s.projectFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Scopes.Delete(r.Context(), p.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
