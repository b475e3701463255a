package web

import (
	"net/http"

	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/service"
)

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	p, err := s.projectFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resources, err := s.svc.Resources.ListByProject(r.Context(), p.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(resources, toResourceDTO))
}

func (s *Server) handleCreateResource(w http.ResponseWriter, r *http.Request) {
	var req createResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res := &domain.Resource{
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Type:        req.Type,
		Unit:        req.Unit,
		Description: req.Description,
		Total:       req.Total,
		Available:   req.Total,
	}
	if req.Available != nil {
		res.Available = *req.Available
	}
	if err := s.svc.Resources.Create(r.Context(), res); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResourceDTO(res))
}

func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Resources.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResourceDTO(res))
}

func (s *Server) handleUpdateResource(w http.ResponseWriter, r *http.Request) {
	var req updateResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Resources.Update(r.Context(), r.PathValue("id"), service.ResourcePatch{
		Name:        req.Name,
		Type:        req.Type,
		Unit:        req.Unit,
		Description: req.Description,
		Total:       req.Total,
		Available:   req.Available,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResourceDTO(res))
}

func (s *Server) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Resources.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListWorkPackages(w http.ResponseWriter, r *http.Request) {
	p, err := s.projectFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	wps, err := s.svc.WorkPackages.ListByProject(r.Context(), p.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(wps, toWorkPackageDTO))
}

func (s *Server) handleCreateWorkPackage(w http.ResponseWriter, r *http.Request) {
	var req createWorkPackageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	wp := &domain.WorkPackage{
		ProjectID:     req.ProjectID,
		Code:          req.Code,
		Name:          req.Name,
		EstimatedCost: req.EstimatedCost,
		EstimatedDays: req.EstimatedDays,
	}
	if err := s.svc.WorkPackages.Create(r.Context(), wp); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorkPackageDTO(wp))
}

func (s *Server) handleDeleteWorkPackage(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.WorkPackages.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
