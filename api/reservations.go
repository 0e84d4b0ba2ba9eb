package api

import (
	"net/http"

	"github.com/Domenick1991/skybooking/internal/cancellation"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

const idempotencyHeader = "Idempotency-Key"

type ReservationHandler struct {
	service booking.BookingUseCase
}

type createReservationRequest struct {
	SlotID string `json:"slot_id" binding:"required"`
	Pax    int    `json:"pax"`
	Email  string `json:"email"`
}

type changePaxRequest struct {
	Pax int `json:"pax"`
}

type cancellationResponse struct {
	Reservation *domain.Reservation `json:"reservation"`
	Quote       cancellation.Quote  `json:"quote"`
}

func NewReservationHandler(service booking.BookingUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.PUT("/:id/confirm", h.confirm)
	router.GET("/:id/cancellation", h.previewCancellation)
	router.DELETE("/:id", h.cancel)
	router.PATCH("/:id/pax", h.changePax)
}

func (h *ReservationHandler) create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := h.service.CreateReservation(c.Request.Context(), booking.CreateReservationInput{
		SlotID:         req.SlotID,
		Pax:            req.Pax,
		Email:          req.Email,
		IdempotencyKey: c.GetHeader(idempotencyHeader),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reservation)
}

func (h *ReservationHandler) get(c *gin.Context) {
	reservation, err := h.service.GetReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}

func (h *ReservationHandler) confirm(c *gin.Context) {
	reservation, err := h.service.ConfirmReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}

func (h *ReservationHandler) previewCancellation(c *gin.Context) {
	result, err := h.service.PreviewCancellation(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cancellationResponse{Reservation: result.Reservation, Quote: result.Quote})
}

// cancel answers 409 with the quote's reason when the reservation is already
// in a terminal state.
func (h *ReservationHandler) cancel(c *gin.Context) {
	result, err := h.service.CancelReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	body := cancellationResponse{Reservation: result.Reservation, Quote: result.Quote}
	if !result.Quote.CanCancel {
		c.JSON(http.StatusConflict, gin.H{"error": result.Quote.Reason, "quote": body.Quote})
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *ReservationHandler) changePax(c *gin.Context) {
	var req changePaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := h.service.ChangePassengers(c.Request.Context(), c.Param("id"), req.Pax)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}
