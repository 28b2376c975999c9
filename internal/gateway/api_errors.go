package gateway

import (
	"errors"
	"net/http"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/gin-gonic/gin"

	"onchainblackjack/internal/app"
	"onchainblackjack/internal/archive"
	"onchainblackjack/internal/blackjack"
)

func (s *Server) writeAPIError(c *gin.Context, err error) {
	if errors.Is(err, archive.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	s.logger.Error("gateway internal error", "path", c.FullPath(), "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// writeQueryError maps a failed ABCI query to an HTTP status. The query log
// is already public chain output, so it is passed through.
func (s *Server) writeQueryError(c *gin.Context, res *abci.QueryResponse) {
	status := http.StatusInternalServerError
	switch {
	case res.Codespace == blackjack.ErrNoActiveSession.Codespace() && res.Code == blackjack.ErrNoActiveSession.ABCICode():
		status = http.StatusNotFound
	case res.Codespace == app.ErrQuery.Codespace() && res.Code == app.ErrQuery.ABCICode():
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("abci query failed", "codespace", res.Codespace, "code", res.Code, "log", res.Log)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":     res.Log,
		"codespace": res.Codespace,
		"code":      res.Code,
	})
}
