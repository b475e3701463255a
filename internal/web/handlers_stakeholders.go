package web

import (
	"net/http"

	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/service"
)

func (s *Server) handleListStakeholders(w http.ResponseWriter, r *http.Request) {
	p, err := s.projectFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	stakes, err := s.svc.Stakeholders.ListByProject(r.Context(), p.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(stakes, toStakeholderDTO))
}

func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request) {
	p, err := s.projectFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	alloc, err := s.svc.Stakeholders.Allocation(r.Context(), p.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAllocationDTO(p.ID, alloc))
}

func (s *Server) handleCreateStakeholder(w http.ResponseWriter, r *http.Request) {
	var req createStakeholderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	st := &domain.Stakeholder{
		ProjectID:  req.ProjectID,
		UserID:     req.UserID,
		Role:       req.Role,
		Percentage: req.Percentage,
	}
	if err := s.svc.Stakeholders.Create(r.Context(), st); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStakeholderDTO(st))
}

func (s *Server) handleGetStakeholder(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Stakeholders.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStakeholderDTO(st))
}

func (s *Server) handleUpdateStakeholder(w http.ResponseWriter, r *http.Request) {
	var req updateStakeholderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := s.svc.Stakeholders.Update(r.Context(), r.PathValue("id"), service.StakeholderPatch{
		Role:       req.Role,
		Percentage: req.Percentage,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStakeholderDTO(st))
}

func (s *Server) handleDeleteStakeholder(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Stakeholders.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
