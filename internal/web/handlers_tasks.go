package web

import (
	"net/http"
	"time"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/service"
)

// taskQuery reads ?status=&priority=&assignee=&q=&due=&sort=&desc=.
func taskQuery(r *http.Request) (service.TaskQuery, error) {
	q := r.URL.Query()
	due, err := calc.ParseDueWindow(q.Get("due"))
	if err != nil {
		return service.TaskQuery{}, err
	}
	sortKey, err := calc.ParseTaskSortKey(q.Get("sort"))
	if err != nil {
		return service.TaskQuery{}, err
	}
	desc, err := parseBoolParam(r, "desc")
	if err != nil {
		return service.TaskQuery{}, err
	}
	status := domain.TaskStatus(q.Get("status"))
	if status != "" && !status.Valid() {
		return service.TaskQuery{}, domain.Invalidf("unknown task status %q", status)
	}
	priority := domain.TaskPriority(q.Get("priority"))
	if priority != "" && !priority.Valid() {
		return service.TaskQuery{}, domain.Invalidf("unknown task priority %q", priority)
	}
	return service.TaskQuery{
		Filter: calc.TaskFilter{
			Status:     status,
			Priority:   priority,
			AssigneeID: q.Get("assignee"),
			Search:     q.Get("q"),
			Due:        due,
			Now:        time.Now().UTC(),
		},
		Sort: sortKey,
		Desc: desc,
	}, nil
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	query, err := taskQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.projectFromPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tasks, err := s.svc.Tasks.List(r.Context(), p.ID, query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(tasks, toTaskDTO))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	deadline, err := parseOptionalDate(req.Deadline)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t := &domain.Task{
		ProjectID:    req.ProjectID,
		ParentTaskID: nonEmpty(req.ParentTaskID),
		Title:        req.Title,
		Description:  req.Description,
		AssigneeID:   nonEmpty(req.AssigneeID),
		Cost:         req.Cost,
		Status:       req.Status,
		Priority:     req.Priority,
		Deadline:     deadline,
	}
	if err := s.svc.Tasks.Create(r.Context(), t); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskDTO(t))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Tasks.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(t))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	deadline, err := parseOptionalDate(req.Deadline)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.svc.Tasks.Update(r.Context(), r.PathValue("id"), service.TaskPatch{
		Title:         req.Title,
		Description:   req.Description,
		ParentTaskID:  req.ParentTaskID,
		AssigneeID:    req.AssigneeID,
		Cost:          req.Cost,
		Status:        req.Status,
		Priority:      req.Priority,
		Deadline:      deadline,
		ClearDeadline: req.ClearDeadline,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(t))
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Tasks.Complete(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(t))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Tasks.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
