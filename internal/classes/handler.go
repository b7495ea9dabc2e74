package classes

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lune-yoga/backend/internal/models"
	"github.com/lune-yoga/backend/pkg/response"
)

// CreateRequest is the body for POST /classes.
type CreateRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Type            string `json:"type" binding:"required"`
	Color           string `json:"color"`
	Date            string `json:"date" binding:"required"`
	StartTime       string `json:"start_time" binding:"required"`
	EndTime         string `json:"end_time" binding:"required"`
	Instructor      string `json:"instructor" binding:"required"`
	MaxParticipants int    `json:"max_participants"`
}

// Handler handles class HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a classes handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// effectiveWindow returns the time window a class would have after applying
// the given changes on top of its stored values.
func effectiveWindow(start, end *time.Time, storedStart, storedEnd time.Time) (time.Time, time.Time) {
	s, e := storedStart, storedEnd
	if start != nil {
		s = *start
	}
	if end != nil {
		e = *end
	}
	return s, e
}

// parseDate accepts a plain date or a full timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// Create handles POST /classes (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Champs requis manquants")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		response.BadRequest(c, "Date invalide")
		return
	}
	startTime, err := parseTime(req.StartTime)
	if err != nil {
		response.BadRequest(c, "Heure de début invalide")
		return
	}
	endTime, err := parseTime(req.EndTime)
	if err != nil {
		response.BadRequest(c, "Heure de fin invalide")
		return
	}
	if !startTime.Before(endTime) {
		response.BadRequest(c, "L'heure de début doit précéder l'heure de fin")
		return
	}

	maxParticipants := req.MaxParticipants
	if maxParticipants == 0 {
		maxParticipants = 20
	}
	if maxParticipants < 1 {
		response.BadRequest(c, "Le nombre maximum de participants doit être au moins 1")
		return
	}

	color := req.Color
	if color == "" {
		color = "#264E36"
	}

	cls := &models.Class{
		Title:           req.Title,
		Description:     req.Description,
		Type:            req.Type,
		Color:           color,
		Date:            date,
		StartTime:       startTime,
		EndTime:         endTime,
		Instructor:      req.Instructor,
		MaxParticipants: maxParticipants,
	}
	if err := h.repo.Create(c.Request.Context(), cls); err != nil {
		h.logger.Error("create class failed", zap.Error(err))
		response.Internal(c, "Erreur lors de la création du cours")
		return
	}
	response.Created(c, cls)
}

// List handles GET /classes. Optional startDate, endDate and type filters.
func (h *Handler) List(c *gin.Context) {
	var startDate, endDate *time.Time
	if s := c.Query("startDate"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			response.BadRequest(c, "Date de début invalide")
			return
		}
		startDate = &t
	}
	if s := c.Query("endDate"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			response.BadRequest(c, "Date de fin invalide")
			return
		}
		endDate = &t
	}

	list, err := h.repo.List(c.Request.Context(), startDate, endDate, c.Query("type"))
	if err != nil {
		h.logger.Error("list classes failed", zap.Error(err))
		response.Internal(c, "Erreur lors de la récupération des cours")
		return
	}
	if list == nil {
		list = []models.Class{}
	}
	response.OK(c, list)
}

// GetByID handles GET /classes/:id. Includes the booked participants.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Identifiant de cours invalide")
		return
	}
	cls, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "Cours non trouvé")
			return
		}
		h.logger.Error("get class failed", zap.Error(err), zap.String("class_id", id.String()))
		response.Internal(c, "Erreur lors de la récupération du cours")
		return
	}
	participants, err := h.repo.Participants(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("list participants failed", zap.Error(err), zap.String("class_id", id.String()))
		response.Internal(c, "Erreur lors de la récupération du cours")
		return
	}
	if participants == nil {
		participants = []models.UserSummary{}
	}
	response.OK(c, gin.H{
		"class":        cls,
		"participants": participants,
	})
}

// Update handles PATCH /classes/:id (admin only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Identifiant de cours invalide")
		return
	}

	var req struct {
		Title           *string `json:"title"`
		Description     *string `json:"description"`
		Type            *string `json:"type"`
		Color           *string `json:"color"`
		Date            *string `json:"date"`
		StartTime       *string `json:"start_time"`
		EndTime         *string `json:"end_time"`
		Instructor      *string `json:"instructor"`
		MaxParticipants *int    `json:"max_participants"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}

	var date, startTime, endTime *time.Time
	if req.Date != nil {
		t, err := parseDate(*req.Date)
		if err != nil {
			response.BadRequest(c, "Date invalide")
			return
		}
		date = &t
	}
	if req.StartTime != nil {
		t, err := parseTime(*req.StartTime)
		if err != nil {
			response.BadRequest(c, "Heure de début invalide")
			return
		}
		startTime = &t
	}
	if req.EndTime != nil {
		t, err := parseTime(*req.EndTime)
		if err != nil {
			response.BadRequest(c, "Heure de fin invalide")
			return
		}
		endTime = &t
	}
	// A partial update can still invert the window against the stored side,
	// so resolve both sides before checking.
	if startTime != nil || endTime != nil {
		stored, err := h.repo.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				response.NotFound(c, "Cours non trouvé")
				return
			}
			h.logger.Error("get class failed", zap.Error(err), zap.String("class_id", id.String()))
			response.Internal(c, "Erreur lors de la mise à jour du cours")
			return
		}
		start, end := effectiveWindow(startTime, endTime, stored.StartTime, stored.EndTime)
		if !start.Before(end) {
			response.BadRequest(c, "L'heure de début doit précéder l'heure de fin")
			return
		}
	}
	if req.MaxParticipants != nil && *req.MaxParticipants < 1 {
		response.BadRequest(c, "Le nombre maximum de participants doit être au moins 1")
		return
	}

	cls, err := h.repo.Update(c.Request.Context(), id, req.Title, req.Description, req.Type, req.Color, req.Instructor, date, startTime, endTime, req.MaxParticipants)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "Cours non trouvé")
			return
		}
		h.logger.Error("update class failed", zap.Error(err), zap.String("class_id", id.String()))
		response.Internal(c, "Erreur lors de la mise à jour du cours")
		return
	}
	response.OK(c, cls)
}

// Delete handles DELETE /classes/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Identifiant de cours invalide")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "Cours non trouvé")
			return
		}
		h.logger.Error("delete class failed", zap.Error(err), zap.String("class_id", id.String()))
		response.Internal(c, "Erreur lors de la suppression du cours")
		return
	}
	response.OK(c, gin.H{"message": "Cours supprimé avec succès"})
}
