package mailer

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lune-yoga/backend/internal/models"
	"github.com/lune-yoga/backend/pkg/response"
)

// Handler serves the email log back office.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an email log handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /admin/emails (admin only).
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	list, total, err := h.repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list email logs failed", zap.Error(err))
		response.Internal(c, "Erreur lors de la récupération des emails")
		return
	}
	if list == nil {
		list = []models.EmailLog{}
	}
	response.OK(c, gin.H{
		"emails":  list,
		"total":   total,
		"hasMore": offset+limit < total,
	})
}
