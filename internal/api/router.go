package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/joelohman/birthday-reminder-be/internal/api/handlers"
	"github.com/joelohman/birthday-reminder-be/internal/auth"
	"github.com/joelohman/birthday-reminder-be/internal/scheduler"
	"github.com/joelohman/birthday-reminder-be/internal/services"
	"github.com/joelohman/birthday-reminder-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(hub *websocket.Hub, userService services.UserServiceProvider, birthdayService services.BirthdayServiceProvider, eventService services.EventServiceProvider, reminderScheduler *scheduler.Scheduler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	birthdayHandler := handlers.NewBirthdayHandler(birthdayService)
	eventHandler := handlers.NewEventHandler(eventService)
	reminderHandler := handlers.NewReminderHandler(reminderScheduler)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)

		// WebSocket connection endpoint
		r.Get("/ws", wsHandler.Serve)

		// Everything below requires a valid access token
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(userService))

			r.Route("/me", func(r chi.Router) {
				r.Get("/", userHandler.GetMe)
				r.Patch("/password", userHandler.ChangePassword)
				r.Delete("/", userHandler.Delete)
			})

			r.Route("/birthdays", func(r chi.Router) {
				r.Get("/", birthdayHandler.GetAll)
				r.Post("/", birthdayHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", birthdayHandler.Get)
					r.Put("/", birthdayHandler.Update)
					r.Delete("/", birthdayHandler.Delete)
				})
			})

			r.Get("/events", eventHandler.GetRecent)

			r.Route("/reminders", func(r chi.Router) {
				r.Get("/schedule", reminderHandler.GetSchedule)
				r.Post("/run", reminderHandler.RunNow)
			})
		})
	})

	return r
}
