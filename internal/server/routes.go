package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danmuck/boltwire/internal/auth"
	"github.com/danmuck/boltwire/internal/inspect"
	"github.com/danmuck/boltwire/internal/observability"
	"github.com/danmuck/boltwire/internal/protocol/message"
	"github.com/danmuck/boltwire/internal/protocol/packstream"
	"github.com/danmuck/boltwire/internal/protocol/schema"
	"github.com/danmuck/boltwire/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type classifyRequest struct {
	Value  any    `json:"value"`
	Covers string `json:"covers"`
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"uptime":   time.Since(s.appeared).String(),
			"service":  "boltwire",
			"version":  version,
			"protocol": s.cfg.Protocol.Version.String(),
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	if token := s.cfg.Server.AuthToken; token != "" {
		v1.Use(auth.RequireBearer(auth.StaticToken{Token: token}))
	}

	v1.GET("/messages", func(c *gin.Context) {
		specs := schema.All()
		out := make([]gin.H, 0, len(specs))
		for _, spec := range specs {
			out = append(out, gin.H{
				"name":      spec.Name,
				"signature": fmt.Sprintf("0x%02X", spec.Signature),
				"arity":     spec.Arity,
				"since":     spec.Since.String(),
			})
		}
		c.JSON(http.StatusOK, gin.H{"messages": out})
	})

	v1.POST("/encode", func(c *gin.Context) {
		var req inspect.EncodeRequest
		if err := decodeJSON(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Set(observability.ContextMessageKey, req.Message)
		res, err := inspect.Encode(req, s.cfg.ProtocolSessionConfig(), s.log)
		if err != nil {
			_ = c.Error(err)
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, res)
	})

	v1.POST("/classify", func(c *gin.Context) {
		var req classifyRequest
		if err := decodeJSON(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var (
			res inspect.ClassifyResult
			err error
		)
		if req.Covers != "" {
			res, err = inspect.ClassifyAgainst(req.Value, req.Covers)
		} else {
			res, err = inspect.Classify(req.Value)
		}
		if err != nil {
			_ = c.Error(err)
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, res)
	})
}

// decodeJSON keeps numbers as json.Number so integers stay integers.
func decodeJSON(c *gin.Context, out any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}

func statusFor(err error) int {
	var verr schema.ValidationError
	switch {
	case errors.Is(err, inspect.ErrInvalidRequest),
		errors.Is(err, message.ErrInvalidRoutingContext),
		errors.Is(err, message.ErrInvalidFetchSize):
		return http.StatusBadRequest
	case errors.As(err, &verr),
		errors.Is(err, message.ErrArgumentTypeMismatch),
		errors.Is(err, message.ErrFieldUnavailable),
		errors.Is(err, message.ErrMissingField),
		errors.Is(err, packstream.ErrUnsupportedValueType),
		errors.Is(err, packstream.ErrStructTooLarge),
		errors.Is(err, packstream.ErrSizeTooLarge),
		errors.Is(err, types.ErrUnsupportedCypherType):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
