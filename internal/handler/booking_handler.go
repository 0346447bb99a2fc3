package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/GAMA-00/gato-app-sub001/internal/dto"
	"github.com/GAMA-00/gato-app-sub001/internal/models"
	appErrors "github.com/GAMA-00/gato-app-sub001/pkg/errors"
	"github.com/GAMA-00/gato-app-sub001/pkg/response"
)

type bookingService interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (*models.Appointment, error)
	Cancel(ctx context.Context, appointmentID, callerID string) error
}

// BookingHandler wires the booking write path to HTTP endpoints.
type BookingHandler struct {
	service bookingService
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(service bookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Create godoc
// @Summary Book a provider time window
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.CreateBookingRequest true "Booking request"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload"))
		return
	}
	req.ClientID = claims.UserID
	req.ResidenceID = claims.ResidenceID

	appointment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, appointment)
}

// Cancel godoc
// @Summary Cancel a booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 204 "No Content"
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Cancel(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
