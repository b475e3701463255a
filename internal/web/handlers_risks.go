package web

import (
	"net/http"
	"strconv"

	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/service"
)

func (s *Server) handleListRisks(w http.ResponseWriter, r *http.Request) {
	p, err := s.projectFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	risks, err := s.svc.Risks.ListByProject(r.Context(), p.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(risks, toRiskDTO))
}

// handleRiskSeverity scores a probability/impact pair without storing it.
func (s *Server) handleRiskSeverity(w http.ResponseWriter, r *http.Request) {
	rawP, err := requiredQuery(r, "probability")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rawI, err := requiredQuery(r, "impact")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	probability, err := strconv.ParseFloat(rawP, 64)
	if err != nil {
		s.writeError(w, r, domain.Invalidf("probability %q is not a number", rawP))
		return
	}
	impact, err := strconv.Atoi(rawI)
	if err != nil {
		s.writeError(w, r, domain.Invalidf("impact %q is not an integer", rawI))
		return
	}
	a, err := s.svc.Risks.Assess(probability, impact, r.URL.Query().Get("scale"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleCreateRisk(w http.ResponseWriter, r *http.Request) {
	var req createRiskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	risk := &domain.Risk{
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Probability: req.Probability,
		Impact:      req.Impact,
		OwnerID:     req.OwnerID,
		Status:      req.Status,
	}
	if err := s.svc.Risks.Create(r.Context(), risk); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRiskDTO(risk))
}

func (s *Server) handleGetRisk(w http.ResponseWriter, r *http.Request) {
	risk, err := s.svc.Risks.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRiskDTO(risk))
}

func (s *Server) handleUpdateRisk(w http.ResponseWriter, r *http.Request) {
	var req updateRiskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	risk, err := s.svc.Risks.Update(r.Context(), r.PathValue("id"), service.RiskPatch{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Probability: req.Probability,
		Impact:      req.Impact,
		OwnerID:     req.OwnerID,
		Status:      req.Status,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRiskDTO(risk))
}

func (s *Server) handleDeleteRisk(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Risks.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.svc.Risks.ListPlans(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(plans, toPlanDTO))
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	plan := &domain.RiskResponsePlan{
		RiskID:         r.PathValue("id"),
		Strategy:       req.Strategy,
		Description:    req.Description,
		PlannedActions: req.PlannedActions,
		OwnerID:        req.OwnerID,
		Status:         req.Status,
	}
	if err := s.svc.Risks.AddPlan(r.Context(), plan); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlanDTO(plan))
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Risks.DeletePlan(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
