package bookings

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lune-yoga/backend/internal/middleware"
	"github.com/lune-yoga/backend/internal/models"
	"github.com/lune-yoga/backend/pkg/queue"
	"github.com/lune-yoga/backend/pkg/response"
)

// CreateRequest is the body for POST /bookings.
type CreateRequest struct {
	ClassID string `json:"classId"`
}

// Handler handles booking HTTP endpoints.
type Handler struct {
	service *Service
	queue   *queue.Queue
	logger  *zap.Logger
}

// NewHandler creates a bookings handler. The queue is optional; when present a
// confirmation email job is enqueued after each successful booking.
func NewHandler(service *Service, q *queue.Queue, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, queue: q, logger: logger}
}

// Create handles POST /bookings.
func (h *Handler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ClassID == "" {
		response.BadRequest(c, "ID du cours requis")
		return
	}
	classID, err := uuid.Parse(req.ClassID)
	if err != nil {
		response.BadRequest(c, "ID du cours requis")
		return
	}

	booking, err := h.service.RequestBooking(c.Request.Context(), userID, classID)
	if err != nil {
		switch {
		case errors.Is(err, ErrClassNotFound):
			response.NotFound(c, "Cours non trouvé")
		case errors.Is(err, ErrClassFull):
			response.BadRequest(c, "Le cours est complet")
		case errors.Is(err, ErrAlreadyBooked):
			response.BadRequest(c, "Vous avez déjà réservé ce cours")
		default:
			h.logger.Error("create booking failed", zap.Error(err),
				zap.String("user_id", userID.String()), zap.String("class_id", classID.String()))
			response.Internal(c, "Erreur lors de la réservation")
		}
		return
	}

	h.enqueueConfirmation(c, booking)
	response.Created(c, booking)
}

// enqueueConfirmation enqueues the confirmation email job. Best effort: a
// queue failure never fails the booking.
func (h *Handler) enqueueConfirmation(c *gin.Context, booking *models.Booking) {
	if h.queue == nil {
		return
	}
	email, _ := c.Get(middleware.ContextUserEmail)
	recipient, _ := email.(string)
	if recipient == "" {
		return
	}
	payload := queue.EmailPayload{
		BookingID:      booking.ID,
		RecipientEmail: recipient,
		Subject:        "Votre réservation est confirmée",
		Body:           "Votre place pour « " + booking.Class.Title + " » est réservée. À bientôt sur le tapis !",
	}
	if err := h.queue.EnqueueEmail(c.Request.Context(), payload); err != nil {
		h.logger.Warn("enqueue confirmation email failed", zap.Error(err),
			zap.String("booking_id", booking.ID.String()))
	}
}

// Cancel handles DELETE /bookings/:id.
func (h *Handler) Cancel(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Identifiant de réservation invalide")
		return
	}

	if err := h.service.CancelBooking(c.Request.Context(), bookingID, userID); err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			response.NotFound(c, "Réservation non trouvée")
		case errors.Is(err, ErrNotOwner):
			response.Forbidden(c, "Non autorisé")
		default:
			h.logger.Error("cancel booking failed", zap.Error(err),
				zap.String("booking_id", bookingID.String()))
			response.Internal(c, "Erreur lors de l'annulation de la réservation")
		}
		return
	}
	response.OK(c, gin.H{"message": "Réservation annulée avec succès"})
}

// ListMine handles GET /bookings. Anonymous callers get an empty list rather
// than a 401 (the calendar polls this endpoint before sign-in).
func (h *Handler) ListMine(c *gin.Context) {
	userVal, ok := c.Get(middleware.ContextUserID)
	if !ok {
		response.OK(c, []models.Booking{})
		return
	}
	userID := userVal.(uuid.UUID)

	list, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list bookings failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "Erreur lors de la récupération des réservations")
		return
	}
	if list == nil {
		list = []models.Booking{}
	}
	response.OK(c, list)
}

// ListAdmin handles GET /admin/bookings (admin only).
func (h *Handler) ListAdmin(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	list, total, err := h.service.ListAll(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list all bookings failed", zap.Error(err))
		response.Internal(c, "Erreur lors de la récupération des réservations")
		return
	}
	if list == nil {
		list = []models.Booking{}
	}
	response.OK(c, gin.H{
		"bookings": list,
		"total":    total,
		"hasMore":  offset+limit < total,
	})
}
