// Package gateway serves a read-only JSON API over the chain's ABCI query
// surface and the outcome archive.
package gateway

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/gin-gonic/gin"

	"onchainblackjack/internal/archive"
)

// Querier is satisfied by the ABCI application.
type Querier interface {
	Query(ctx context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error)
}

// Outcomes is the archive read surface. Nil disables the outcome routes.
type Outcomes interface {
	ListOutcomes(ctx context.Context, f archive.Filter) ([]archive.Outcome, error)
	GetOutcome(ctx context.Context, sessionID uint64) (*archive.Outcome, error)
	Stats(ctx context.Context, player string) (archive.PlayerStats, error)
	Ping(ctx context.Context) error
}

type Server struct {
	q        Querier
	outcomes Outcomes
	logger   log.Logger
}

func New(q Querier, outcomes Outcomes, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Server{q: q, outcomes: outcomes, logger: logger.With("module", "gateway")}
}

// Router builds the gin engine. Call gin.SetMode before this to pick
// release or debug output.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())
	r.GET("/healthz", s.healthz)

	api := r.Group("/api")
	api.GET("/house", s.abciHandler(func(*gin.Context) string { return "/house" }))
	api.GET("/params", s.abciHandler(func(*gin.Context) string { return "/params" }))
	api.GET("/accounts/:addr", s.abciHandler(func(c *gin.Context) string { return "/account/" + c.Param("addr") }))
	api.GET("/sessions/:player", s.abciHandler(func(c *gin.Context) string { return "/session/" + c.Param("player") }))
	api.GET("/fairness/pubkey", s.abciHandler(func(*gin.Context) string { return "/fairness/pubkey" }))
	api.GET("/fairness/proof/:session/:nonce", s.abciHandler(func(c *gin.Context) string {
		return "/fairness/proof/" + c.Param("session") + "/" + c.Param("nonce")
	}))

	api.GET("/outcomes", s.listOutcomes)
	api.GET("/outcomes/:session", s.getOutcome)
	api.GET("/players/:player/stats", s.playerStats)
	return r
}

// HTTPServer wraps the router with the usual timeouts.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"took", time.Since(start).String(),
		)
	}
}

func (s *Server) healthz(c *gin.Context) {
	if s.outcomes != nil {
		if err := s.outcomes.Ping(c.Request.Context()); err != nil {
			s.logger.Error("archive unreachable", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "archive unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) abciHandler(path func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := s.q.Query(c.Request.Context(), &abci.QueryRequest{Path: path(c)})
		if err != nil {
			s.writeAPIError(c, err)
			return
		}
		if res.Code != 0 {
			s.writeQueryError(c, res)
			return
		}
		c.Header("X-Block-Height", strconv.FormatInt(res.Height, 10))
		c.Data(http.StatusOK, "application/json; charset=utf-8", res.Value)
	}
}

func (s *Server) listOutcomes(c *gin.Context) {
	if s.outcomes == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "archive disabled"})
		return
	}
	f := archive.Filter{Player: c.Query("player")}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		f.Limit = n
	}
	if v := c.Query("before"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid before"})
			return
		}
		f.BeforeSession = n
	}
	out, err := s.outcomes.ListOutcomes(c.Request.Context(), f)
	if err != nil {
		s.writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": out})
}

func (s *Server) getOutcome(c *gin.Context) {
	if s.outcomes == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "archive disabled"})
		return
	}
	id, err := strconv.ParseUint(c.Param("session"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	o, err := s.outcomes.GetOutcome(c.Request.Context(), id)
	if err != nil {
		s.writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) playerStats(c *gin.Context) {
	if s.outcomes == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "archive disabled"})
		return
	}
	st, err := s.outcomes.Stats(c.Request.Context(), c.Param("player"))
	if err != nil {
		s.writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
