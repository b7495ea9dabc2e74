package news

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lune-yoga/backend/internal/middleware"
	"github.com/lune-yoga/backend/internal/models"
	"github.com/lune-yoga/backend/pkg/response"
)

// Handler handles news HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a news handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// CreateRequest is the body for POST /news.
type CreateRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CoverImage string `json:"cover_image"`
}

// UpdateRequest is the body for PATCH /news/:id. Absent fields keep their
// current value.
type UpdateRequest struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	CoverImage *string `json:"cover_image"`
}

// List handles GET /news.
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	list, total, err := h.repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list news failed", zap.Error(err))
		response.Internal(c, "Erreur lors de la récupération des actualités")
		return
	}
	if list == nil {
		list = []models.News{}
	}
	response.OK(c, gin.H{
		"news":    list,
		"total":   total,
		"hasMore": offset+limit < total,
	})
}

// Get handles GET /news/:id. Each read counts a view.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Identifiant invalide")
		return
	}

	item, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "Actualité non trouvée")
			return
		}
		h.logger.Error("get news failed", zap.Error(err), zap.String("news_id", id.String()))
		response.Internal(c, "Erreur lors de la récupération de l'actualité")
		return
	}

	if err := h.repo.IncrementViews(c.Request.Context(), id); err != nil {
		h.logger.Warn("increment views failed", zap.Error(err), zap.String("news_id", id.String()))
	} else {
		item.ViewCount++
	}
	response.OK(c, item)
}

// Create handles POST /news (admin only).
func (h *Handler) Create(c *gin.Context) {
	authorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Corps de requête invalide")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if req.Title == "" || req.Content == "" {
		response.BadRequest(c, "Titre et contenu requis")
		return
	}

	item, err := h.repo.Create(c.Request.Context(), authorID, req.Title, req.Content, req.CoverImage)
	if err != nil {
		h.logger.Error("create news failed", zap.Error(err))
		response.Internal(c, "Erreur lors de la création de l'actualité")
		return
	}
	response.Created(c, item)
}

// Update handles PATCH /news/:id (admin only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Identifiant invalide")
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Corps de requête invalide")
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		response.BadRequest(c, "Le titre ne peut pas être vide")
		return
	}
	if req.Content != nil && strings.TrimSpace(*req.Content) == "" {
		response.BadRequest(c, "Le contenu ne peut pas être vide")
		return
	}

	item, err := h.repo.Update(c.Request.Context(), id, req.Title, req.Content, req.CoverImage)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "Actualité non trouvée")
			return
		}
		h.logger.Error("update news failed", zap.Error(err), zap.String("news_id", id.String()))
		response.Internal(c, "Erreur lors de la mise à jour de l'actualité")
		return
	}
	response.OK(c, item)
}

// Delete handles DELETE /news/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Identifiant invalide")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "Actualité non trouvée")
			return
		}
		h.logger.Error("delete news failed", zap.Error(err), zap.String("news_id", id.String()))
		response.Internal(c, "Erreur lors de la suppression de l'actualité")
		return
	}
	response.OK(c, gin.H{"message": "Actualité supprimée avec succès"})
}
