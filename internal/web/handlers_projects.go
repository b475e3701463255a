package web

import (
	"net/http"

	"github.com/alexanderramin/taskup/internal/domain"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u := &domain.User{Email: req.Email, Name: req.Name}
	if err := s.svc.Users.Create(r.Context(), u); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(u))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Users.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(users, toUserDTO))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.Users.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

// projectFromPath resolves the {id} segment, which may be a short ID.
func (s *Server) projectFromPath(r *http.Request) (*domain.Project, error) {
	return s.svc.Projects.Resolve(r.Context(), r.PathValue("id"))
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	deadline, err := parseOptionalDate(req.Deadline)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p := &domain.Project{
		ShortID:     req.ShortID,
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     req.OwnerID,
		Status:      req.Status,
		Deadline:    deadline,
		TotalBudget: req.TotalBudget,
	}
	if err := s.svc.Projects.Create(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectDTO(p))
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	includeArchived, err := parseBoolParam(r, "include_archived")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	projects, err := s.svc.Projects.List(r.Context(), includeArchived)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(projects, toProjectDTO))
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projectFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(p))
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req updateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.projectFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.svc.Projects.Update(r.Context(), p.ID, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(updated))
}

// handleDeleteProject archives the project. With ?purge=true it removes it
// and all of its rows instead.
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	purge, err := parseBoolParam(r, "purge")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.projectFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if purge {
		err = s.svc.Projects.Delete(r.Context(), p.ID, true)
	} else {
		err = s.svc.Projects.Archive(r.Context(), p.ID)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProjectOverview(w http.ResponseWriter, r *http.Request) {
	p, err := s.projectFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ov, err := s.svc.Overview.Get(r.Context(), p.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOverviewDTO(ov))
}
