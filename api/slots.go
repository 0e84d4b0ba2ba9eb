package api

import (
	"net/http"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/service/slots"
	"github.com/gin-gonic/gin"
)

type SlotHandler struct {
	service slots.SlotUseCase
}

type setStatusRequest struct {
	Status domain.SlotStatus `json:"status" binding:"required"`
}

type availabilityResponse struct {
	SlotID         string `json:"slot_id"`
	AvailableSeats int    `json:"available_seats"`
}

func NewSlotHandler(service slots.SlotUseCase) *SlotHandler {
	return &SlotHandler{service: service}
}

func (h *SlotHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/availability", h.availability)
	router.PUT("/:id/status", h.setStatus)
}

func (h *SlotHandler) list(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SlotHandler) get(c *gin.Context) {
	slot, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}

func (h *SlotHandler) availability(c *gin.Context) {
	id := c.Param("id")
	seats, err := h.service.Availability(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, availabilityResponse{SlotID: id, AvailableSeats: seats})
}

func (h *SlotHandler) setStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := h.service.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}
