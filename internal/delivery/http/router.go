package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "eventhub/docs"
	"eventhub/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	eventController *controllers.EventController,
	bookingController *controllers.BookingController,
	healthController *controllers.HealthController,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("POST /events", eventController.CreateEvent)
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/{slug}", eventController.GetEvent)
	mux.HandleFunc("PATCH /events/{slug}", eventController.UpdateEvent)
	mux.HandleFunc("DELETE /events/{slug}", eventController.DeleteEvent)
	mux.HandleFunc("GET /events/{slug}/similar", eventController.GetSimilarEvents)
	mux.HandleFunc("GET /events/{slug}/bookings", eventController.ListEventBookings)

	// Bookings
	mux.HandleFunc("POST /bookings", bookingController.CreateBooking)
	mux.HandleFunc("GET /bookings", bookingController.ListBookingsByEmail)
	mux.HandleFunc("PATCH /bookings/{id}", bookingController.UpdateBooking)
	mux.HandleFunc("DELETE /bookings/{id}", bookingController.DeleteBooking)

	mux.HandleFunc("GET /healthz", healthController.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
