// Package web serves the TaskUp JSON API.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/alexanderramin/taskup/internal/app"
)

type Server struct {
	svc             *app.Services
	logger          *zap.Logger
	router          *http.ServeMux
	addr            string
	shutdownTimeout time.Duration
	inflight        keyLocks
}

func NewServer(svc *app.Services, logger *zap.Logger, addr string, shutdownTimeout time.Duration) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}
	s := &Server{
		svc:             svc,
		logger:          logger,
		router:          http.NewServeMux(),
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Users
	s.router.HandleFunc("POST /users", s.handleCreateUser)
	s.router.HandleFunc("GET /users", s.handleListUsers)
	s.router.HandleFunc("GET /users/{id}", s.handleGetUser)

	// Projects
	s.router.HandleFunc("POST /projects", s.handleCreateProject)
	s.router.HandleFunc("GET /projects", s.handleListProjects)
	s.router.HandleFunc("GET /projects/{id}", s.handleGetProject)
	s.router.HandleFunc("PUT /projects/{id}", s.handleUpdateProject)
	s.router.HandleFunc("DELETE /projects/{id}", s.handleDeleteProject)
	s.router.HandleFunc("GET /projects/{id}/overview", s.handleProjectOverview)

	// Stakeholders
	s.router.HandleFunc("GET /projects/{id}/stakeholders", s.handleListStakeholders)
	s.router.HandleFunc("GET /projects/{id}/allocation", s.handleAllocation)
	s.router.HandleFunc("POST /stakeholders", s.handleCreateStakeholder)
	s.router.HandleFunc("GET /stakeholders/{id}", s.handleGetStakeholder)
	s.router.HandleFunc("PUT /stakeholders/{id}", s.handleUpdateStakeholder)
	s.router.HandleFunc("DELETE /stakeholders/{id}", s.handleDeleteStakeholder)

	// Risks
	s.router.HandleFunc("GET /projects/{id}/risks", s.handleListRisks)
	s.router.HandleFunc("GET /risks/severity", s.handleRiskSeverity)
	s.router.HandleFunc("POST /risks", s.handleCreateRisk)
	s.router.HandleFunc("GET /risks/{id}", s.handleGetRisk)
	s.router.HandleFunc("PUT /risks/{id}", s.handleUpdateRisk)
	s.router.HandleFunc("DELETE /risks/{id}", s.handleDeleteRisk)
	s.router.HandleFunc("GET /risks/{id}/plans", s.handleListPlans)
	s.router.HandleFunc("POST /risks/{id}/plans", s.handleCreatePlan)
	s.router.HandleFunc("DELETE /plans/{id}", s.handleDeletePlan)

	// Tasks
	s.router.HandleFunc("GET /projects/{id}/tasks", s.handleListTasks)
	s.router.HandleFunc("POST /tasks", s.handleCreateTask)
	s.router.HandleFunc("GET /tasks/{id}", s.handleGetTask)
	s.router.HandleFunc("PUT /tasks/{id}", s.handleUpdateTask)
	s.router.HandleFunc("DELETE /tasks/{id}", s.handleDeleteTask)
	s.router.HandleFunc("POST /tasks/{id}/complete", s.handleCompleteTask)

	// Resources and work packages
	s.router.HandleFunc("GET /projects/{id}/resources", s.handleListResources)
	s.router.HandleFunc("POST /resources", s.handleCreateResource)
	s.router.HandleFunc("GET /resources/{id}", s.handleGetResource)
	s.router.HandleFunc("PUT /resources/{id}", s.handleUpdateResource)
	s.router.HandleFunc("DELETE /resources/{id}", s.handleDeleteResource)
	s.router.HandleFunc("GET /projects/{id}/work-packages", s.handleListWorkPackages)
	s.router.HandleFunc("POST /work-packages", s.handleCreateWorkPackage)
	s.router.HandleFunc("DELETE /work-packages/{id}", s.handleDeleteWorkPackage)
	s.router.HandleFunc("GET /projects/{id}/resource-plan", s.handleGetResourcePlan)
	s.router.HandleFunc("PUT /projects/{id}/resource-plan", s.handleSaveResourcePlan)

	// Scope
	s.router.HandleFunc("GET /projects/{id}/scope", s.handleGetScope)
	s.router.HandleFunc("POST /projects/{id}/scope", s.handleCreateScope)
	s.router.HandleFunc("PUT /projects/{id}/scope", s.handleReplaceScope)
	s.router.HandleFunc("DELETE /projects/{id}/scope", s.handleDeleteScope)

	// Teams
	s.router.HandleFunc("GET /projects/{id}/teams", s.handleListTeams)
	s.router.HandleFunc("POST /teams", s.handleCreateTeam)
	s.router.HandleFunc("GET /teams/{id}", s.handleGetTeam)
	s.router.HandleFunc("PUT /teams/{id}", s.handleUpdateTeam)
	s.router.HandleFunc("DELETE /teams/{id}", s.handleDeleteTeam)
	s.router.HandleFunc("GET /teams/{id}/members", s.handleListTeamMembers)
	s.router.HandleFunc("POST /teams/{id}/members", s.handleAddTeamMember)
	s.router.HandleFunc("DELETE /teams/{id}/members/{userID}", s.handleRemoveTeamMember)

	s.router.HandleFunc("POST /import", s.handleImport)
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = s.idempotency(h)
	h = s.withActor(h)
	h = s.logRequests(h)
	return h
}

// Start serves until ctx is cancelled, then drains in-flight requests for
// up to the shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))

	// Cancelling on return also stops the shutdown goroutine when Serve
	// fails on its own.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownDone := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		shutdownDone <- server.Shutdown(shutdownCtx)
	}()

	err := server.Serve(ln)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdownDone; err != nil {
		s.logger.Warn("server shutdown", zap.Error(err))
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
