package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/GriffinCanCode/kitprompt/internal/catalog"
	"github.com/GriffinCanCode/kitprompt/internal/domain/kit"
	"github.com/GriffinCanCode/kitprompt/internal/domain/prompt"
	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/logging"
	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/kitprompt/internal/transport/wire"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Origins are checked by the CORS middleware
	},
}

// Handler serves one prompt per WebSocket connection.
type Handler struct {
	catalog  *catalog.Catalog
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	debounce time.Duration
}

// NewHandler creates a WebSocket handler for the prompts in cat.
func NewHandler(cat *catalog.Catalog, logger *zap.Logger, metrics *monitoring.Metrics, debounce time.Duration) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		catalog:  cat,
		logger:   logger,
		metrics:  metrics,
		debounce: debounce,
	}
}

// HandleConnection upgrades the request and runs the prompt named by the
// :name path parameter. Repeated "arg" query values become the kit's
// arguments. The settled value (or error) is the last frame sent before
// the connection closes.
func (h *Handler) HandleConnection(c *gin.Context) {
	name := c.Param("name")
	if _, ok := h.catalog.Lookup(name); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "prompt not found", "name": name})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	conn := newConn(ws, h.logger, h.metrics)
	defer conn.Close()
	logger := h.logger.With(logging.Conn(conn.ID()), logging.Prompt(name))

	k := kit.New(conn.Renderer(), conn, logger, h.metrics)
	k.SetScript(name, "")
	k.SetPreviewDebounce(h.debounce)
	k.UpdateArgs(c.QueryArray("arg"))

	logger.Info("Prompt connection opened")
	value, err := h.catalog.Run(c.Request.Context(), name, k)
	switch {
	case err == nil:
		logger.Info("Prompt resolved")
	case errors.Is(err, prompt.ErrBlurred), errors.Is(err, context.Canceled):
		logger.Info("Prompt dismissed", zap.Error(err))
	default:
		logger.Warn("Prompt failed", zap.Error(err))
	}

	if err := conn.Send(wire.Settled(value, err)); err != nil {
		logger.Debug("Failed to send result", zap.Error(err))
	}
}
