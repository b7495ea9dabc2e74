package lunar

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lune-yoga/backend/pkg/response"
)

// Handler serves the moon phase shown on the site home page.
type Handler struct {
	client *Client
	logger *zap.Logger
}

// NewHandler creates a lunar handler. The client may be nil, in which case the
// computed phase is always served.
func NewHandler(client *Client, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{client: client, logger: logger}
}

// Get handles GET /lunar. Scraped data is preferred; the closed-form
// calculation backs it when the source is down.
func (h *Handler) Get(c *gin.Context) {
	if h.client != nil {
		info, err := h.client.Fetch(c.Request.Context())
		if err == nil {
			response.OK(c, info)
			return
		}
		h.logger.Warn("lunar source unavailable, serving computed phase", zap.Error(err))
	}
	response.OK(c, Compute(time.Now()))
}
