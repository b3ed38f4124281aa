package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c *controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", c.healthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/room", c.generateRoomCode)
		r.Get("/room/{room-code}", c.getRoomInfo)
	})

	r.HandleFunc("/ws", c.ws)

	return r
}
