package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// CreateBookingRequest is the request body for POST /bookings.
type CreateBookingRequest struct {
	EventID string `json:"event_id"`
	Email   string `json:"email"`
}

// UpdateBookingRequest is the request body for PATCH /bookings/{id}.
type UpdateBookingRequest struct {
	EventID *string `json:"event_id"`
	Email   *string `json:"email"`
}

// Validate implements Validator.
func (u UpdateBookingRequest) Validate() []string {
	if u.EventID == nil && u.Email == nil {
		return []string{"at least one of event_id or email is required"}
	}
	return nil
}

// BookingSuccessResponse is the success response envelope for a single booking.
type BookingSuccessResponse struct {
	Data  *domain.Booking   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// BookingsByEmailSuccessResponse is the success response envelope for GET /bookings.
type BookingsByEmailSuccessResponse struct {
	Data  []*domain.BookingWithEvent `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

type BookingController struct {
	Logger   *slog.Logger
	Bookings domain.BookingService
}

func NewBookingController(logger *slog.Logger, bookings domain.BookingService) *BookingController {
	return &BookingController{
		Logger:   logger,
		Bookings: bookings,
	}
}

// CreateBooking godoc
// @Summary Book an event
// @Description Books a spot on an event for an email address. The address is stored lowercased. A confirmation email is sent when a mailer is configured.
// @Tags bookings
// @Accept json
// @Produce json
// @Param booking body CreateBookingRequest true "Booking data"
// @Success 201 {object} controllers.BookingSuccessResponse "data contains the created booking"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 422 {object} helpers.APIResponse "error.code: event_not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable (event lookup failed)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings [post]
func (c *BookingController) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	booking, err := c.Bookings.CreateBooking(r.Context(), req.EventID, req.Email)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "booking not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, booking)
}

// ListBookingsByEmail godoc
// @Summary List bookings for an email
// @Description Each booking comes with its event; event is null when the event was deleted.
// @Tags bookings
// @Produce json
// @Param email query string true "Email address (case-insensitive)"
// @Success 200 {object} controllers.BookingsByEmailSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings [get]
func (c *BookingController) ListBookingsByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "email query parameter is required")
		return
	}
	bookings, err := c.Bookings.ListBookingsByEmail(r.Context(), email)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "booking not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, bookings)
}

// UpdateBooking godoc
// @Summary Update a booking
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param body body UpdateBookingRequest true "Fields to update"
// @Success 200 {object} controllers.BookingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: event_not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/{id} [patch]
func (c *BookingController) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathValue(w, r, "id")
	if !ok {
		return
	}
	var req UpdateBookingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	booking, err := c.Bookings.UpdateBooking(r.Context(), id, domain.BookingPatch{EventID: req.EventID, Email: req.Email})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "booking not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, booking)
}

// DeleteBooking godoc
// @Summary Cancel a booking
// @Tags bookings
// @Param id path string true "Booking ID"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/{id} [delete]
func (c *BookingController) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathValue(w, r, "id")
	if !ok {
		return
	}
	if err := c.Bookings.DeleteBooking(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "booking not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
