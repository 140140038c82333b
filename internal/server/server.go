// Package server exposes the belief-revision agents and the
// possible-worlds space over HTTP.
package server

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/epistemolab/epistemo/db"
	"github.com/epistemolab/epistemo/revision"
	"github.com/epistemolab/epistemo/worlds"
)

// Server serves the agent and space endpoints. Agents live in memory;
// every mutation is written through to the store and audit-logged.
type Server struct {
	mu     sync.Mutex
	agents map[string]*revision.Agent
	store  *db.Store
	log    *slog.Logger
	router *gin.Engine
}

// New builds a server, hydrating the in-memory agents from the store.
func New(store *db.Store, log *slog.Logger) (*Server, error) {
	s := &Server{
		agents: make(map[string]*revision.Agent),
		store:  store,
		log:    log,
	}
	if store != nil {
		loaded, err := store.LoadAll(context.Background())
		if err != nil {
			return nil, err
		}
		for _, a := range loaded {
			s.agents[a.Name()] = a
		}
		log.Info("agents hydrated", "count", len(loaded))
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	agent := r.Group("/agent")
	{
		agent.POST("/create", s.handleCreate)
		agent.POST("/delete", s.handleDelete)
		agent.POST("/add_proposition", s.handleAddProposition)
		agent.POST("/remove_proposition", s.handleRemoveProposition)
		agent.POST("/contract", s.handleContract)
		agent.POST("/expand", s.handleExpand)
		agent.GET("/state", s.handleState)
		agent.GET("/list", s.handleList)
		agent.GET("/audit", s.handleAudit)
	}
	space := r.Group("/space")
	{
		space.GET("/worlds", s.handleWorlds)
		space.POST("/eval", s.handleEval)
	}
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "ok"})
	})
	s.router = r
	return s, nil
}

// Router returns the gin engine, e.g. for httptest.
func (s *Server) Router() http.Handler { return s.router }

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Info("listening", "addr", addr)
	return s.router.Run(addr)
}

func success(c *gin.Context, message string, extra gin.H) {
	body := gin.H{"status": "success", "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"status": "error", "message": message})
}

// persist writes the agent through to the store and records the audit
// entry. Store failures are logged, not returned; the in-memory state
// is already mutated and stays authoritative.
func (s *Server) persist(ctx context.Context, a *revision.Agent, operation, argument, result string) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveAgent(ctx, a); err != nil {
		s.log.Error("failed to persist agent", "agent", a.Name(), "error", err)
	}
	if err := s.store.InsertAuditLog(ctx, a.Name(), operation, argument, result, ""); err != nil {
		s.log.Error("failed to write audit log", "agent", a.Name(), "error", err)
	}
}

type createRequest struct {
	Name         string   `json:"name" binding:"required"`
	Propositions []string `json:"propositions"`
}

func (s *Server) handleCreate(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[req.Name]; ok {
		fail(c, http.StatusConflict, "agent already exists: "+req.Name)
		return
	}
	a, err := revision.New(req.Name, req.Propositions)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.agents[req.Name] = a
	s.persist(c.Request.Context(), a, "create", "", "success")
	success(c, "agent created", gin.H{"name": req.Name})
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) handleDelete(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[req.Name]; !ok {
		fail(c, http.StatusNotFound, "agent not found: "+req.Name)
		return
	}
	delete(s.agents, req.Name)
	if s.store != nil {
		if err := s.store.DeleteAgent(c.Request.Context(), req.Name); err != nil {
			s.log.Error("failed to delete agent", "agent", req.Name, "error", err)
		}
		if err := s.store.InsertAuditLog(c.Request.Context(), req.Name, "delete", "", "success", ""); err != nil {
			s.log.Error("failed to write audit log", "agent", req.Name, "error", err)
		}
	}
	success(c, "agent deleted", nil)
}

type addPropositionRequest struct {
	Name        string `json:"name" binding:"required"`
	Proposition string `json:"proposition" binding:"required"`
	IsCore      bool   `json:"is_core"`
	Rank        int    `json:"rank"`
}

func (s *Server) handleAddProposition(c *gin.Context) {
	var req addPropositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "name and proposition are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[req.Name]
	if !ok {
		fail(c, http.StatusNotFound, "agent not found: "+req.Name)
		return
	}
	if err := a.AddProposition(req.Proposition, req.IsCore, req.Rank); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.persist(c.Request.Context(), a, "add_proposition", req.Proposition, "success")
	success(c, "proposition added", agentState(a))
}

type propositionRequest struct {
	Name        string `json:"name" binding:"required"`
	Proposition string `json:"proposition" binding:"required"`
}

func (s *Server) handleRemoveProposition(c *gin.Context) {
	var req propositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "name and proposition are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[req.Name]
	if !ok {
		fail(c, http.StatusNotFound, "agent not found: "+req.Name)
		return
	}
	if err := a.RemoveProposition(req.Proposition); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.persist(c.Request.Context(), a, "remove_proposition", req.Proposition, "success")
	success(c, "proposition removed", agentState(a))
}

type beliefRequest struct {
	Name   string `json:"name" binding:"required"`
	Belief string `json:"belief" binding:"required"`
}

func (s *Server) handleContract(c *gin.Context) {
	var req beliefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "name and belief are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[req.Name]
	if !ok {
		fail(c, http.StatusNotFound, "agent not found: "+req.Name)
		return
	}
	if a.IsCore(req.Belief) {
		fail(c, http.StatusBadRequest, "cannot contract core belief: "+req.Belief)
		return
	}
	removed, err := a.Contract(req.Belief)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.persist(c.Request.Context(), a, "contract", req.Belief, "success")
	extra := agentState(a)
	extra["removed"] = emptyIfNil(removed)
	success(c, "belief contracted", extra)
}

func (s *Server) handleExpand(c *gin.Context) {
	var req beliefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "name and belief are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[req.Name]
	if !ok {
		fail(c, http.StatusNotFound, "agent not found: "+req.Name)
		return
	}
	if err := a.Expand(req.Belief); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.persist(c.Request.Context(), a, "expand", req.Belief, "success")
	success(c, "belief expanded", agentState(a))
}

func (s *Server) handleState(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		fail(c, http.StatusBadRequest, "name query parameter is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[name]
	if !ok {
		fail(c, http.StatusNotFound, "agent not found: "+name)
		return
	}
	success(c, "agent state", agentState(a))
}

func (s *Server) handleList(c *gin.Context) {
	s.mu.Lock()
	names := make([]string, 0, len(s.agents))
	for name := range s.agents {
		names = append(names, name)
	}
	s.mu.Unlock()
	success(c, "agents", gin.H{"agents": names})
}

func (s *Server) handleAudit(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		fail(c, http.StatusBadRequest, "name query parameter is required")
		return
	}
	if s.store == nil {
		fail(c, http.StatusServiceUnavailable, "no store configured")
		return
	}
	entries, err := s.store.GetAuditLogByAgent(c.Request.Context(), name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"timestamp": e.Timestamp,
			"operation": e.Operation,
			"argument":  e.Argument,
			"result":    e.Result,
		})
	}
	success(c, "audit log", gin.H{"entries": out})
}

func agentState(a *revision.Agent) gin.H {
	return gin.H{
		"name":          a.Name(),
		"propositions":  a.Propositions(),
		"beliefs":       a.Beliefs(),
		"core":          a.Core(),
		"entrenchment":  a.Entrenchment(),
		"possibilities": a.Possibilities(),
		"core_worlds":   a.CoreWorlds(),
	}
}

func emptyIfNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}

func (s *Server) handleWorlds(c *gin.Context) {
	var q struct {
		NProps int `form:"n_props" binding:"required,min=1,max=20"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, "n_props must be between 1 and 20")
		return
	}
	space, err := worlds.New(q.NProps, nil)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	out := make([]gin.H, 0, space.NumWorlds())
	for w := 0; w < space.NumWorlds(); w++ {
		out = append(out, gin.H{
			"id":        w,
			"label":     space.WorldLabel(w),
			"bitstring": space.WorldBitstring(w),
			"notation":  space.Notation(w),
		})
	}
	success(c, "worlds", gin.H{"n_props": q.NProps, "worlds": out})
}

type evalRequest struct {
	NProps int    `json:"n_props" binding:"required,min=1,max=20"`
	Expr   string `json:"expr" binding:"required"`
}

func (s *Server) handleEval(c *gin.Context) {
	var req evalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "n_props (1..20) and expr are required")
		return
	}
	space, err := worlds.New(req.NProps, nil)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	res, err := space.EvalExpr(req.Expr)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	success(c, "expression evaluated", gin.H{
		"notation":   res.Notation,
		"worlds":     emptyIfNilInts(res.Worlds),
		"labels":     emptyIfNil(res.Labels),
		"bitstrings": emptyIfNil(res.Bitstrings),
	})
}

func emptyIfNilInts(xs []int) []int {
	if xs == nil {
		return []int{}
	}
	return xs
}
