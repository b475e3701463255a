package web

import (
	"net/http"

	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/service"
)

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	p, err := s.projectFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	teams, err := s.svc.Teams.ListByProject(r.Context(), p.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(teams, toTeamDTO))
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t := &domain.Team{
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Description: req.Description,
		ColorIndex:  req.ColorIndex,
	}
	if err := s.svc.Teams.Create(r.Context(), t); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTeamDTO(t))
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Teams.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamDTO(t))
}

func (s *Server) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	var req updateTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.svc.Teams.Update(r.Context(), r.PathValue("id"), service.TeamPatch{
		Name:        req.Name,
		Description: req.Description,
		ColorIndex:  req.ColorIndex,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamDTO(t))
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Teams.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTeamMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.svc.Teams.ListMembers(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(members, toTeamMemberDTO))
}

func (s *Server) handleAddTeamMember(w http.ResponseWriter, r *http.Request) {
	var req addTeamMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.svc.Teams.AddMember(r.Context(), r.PathValue("id"), req.UserID, req.Role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTeamMemberDTO(m))
}

func (s *Server) handleRemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Teams.RemoveMember(r.Context(), r.PathValue("id"), r.PathValue("userID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
