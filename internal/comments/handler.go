package comments

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lune-yoga/backend/internal/middleware"
	"github.com/lune-yoga/backend/internal/models"
	"github.com/lune-yoga/backend/pkg/response"
)

// Handler handles comment HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a comments handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

type contentRequest struct {
	Content string `json:"content"`
}

// ListByNews handles GET /news/:id/comments.
func (h *Handler) ListByNews(c *gin.Context) {
	newsID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Identifiant invalide")
		return
	}

	list, err := h.repo.ListByNews(c.Request.Context(), newsID)
	if err != nil {
		h.logger.Error("list comments failed", zap.Error(err), zap.String("news_id", newsID.String()))
		response.Internal(c, "Erreur lors de la récupération des commentaires")
		return
	}
	if list == nil {
		list = []models.Comment{}
	}
	response.OK(c, list)
}

// Create handles POST /news/:id/comments.
func (h *Handler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	newsID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Identifiant invalide")
		return
	}

	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Corps de requête invalide")
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		response.BadRequest(c, "Le commentaire ne peut pas être vide")
		return
	}

	cm, err := h.repo.Create(c.Request.Context(), newsID, userID, content)
	if err != nil {
		if errors.Is(err, ErrNewsNotFound) {
			response.NotFound(c, "Actualité non trouvée")
			return
		}
		h.logger.Error("create comment failed", zap.Error(err), zap.String("news_id", newsID.String()))
		response.Internal(c, "Erreur lors de la création du commentaire")
		return
	}
	response.Created(c, cm)
}

// Update handles PATCH /comments/:id. Only the author may edit.
func (h *Handler) Update(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Identifiant invalide")
		return
	}

	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Corps de requête invalide")
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		response.BadRequest(c, "Le commentaire ne peut pas être vide")
		return
	}

	existing, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "Commentaire non trouvé")
			return
		}
		h.logger.Error("get comment failed", zap.Error(err), zap.String("comment_id", id.String()))
		response.Internal(c, "Erreur lors de la mise à jour du commentaire")
		return
	}
	if existing.UserID != userID {
		response.Forbidden(c, "Non autorisé")
		return
	}

	cm, err := h.repo.Update(c.Request.Context(), id, content)
	if err != nil {
		h.logger.Error("update comment failed", zap.Error(err), zap.String("comment_id", id.String()))
		response.Internal(c, "Erreur lors de la mise à jour du commentaire")
		return
	}
	response.OK(c, cm)
}

// Delete handles DELETE /comments/:id. The author or an admin may delete.
func (h *Handler) Delete(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, _ := c.Get(middleware.ContextUserRole)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Identifiant invalide")
		return
	}

	existing, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "Commentaire non trouvé")
			return
		}
		h.logger.Error("get comment failed", zap.Error(err), zap.String("comment_id", id.String()))
		response.Internal(c, "Erreur lors de la suppression du commentaire")
		return
	}
	if existing.UserID != userID && role != string(models.RoleAdmin) {
		response.Forbidden(c, "Non autorisé")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete comment failed", zap.Error(err), zap.String("comment_id", id.String()))
		response.Internal(c, "Erreur lors de la suppression du commentaire")
		return
	}
	response.OK(c, gin.H{"message": "Commentaire supprimé avec succès"})
}
