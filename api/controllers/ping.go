package controllers

import (
	"net/http"

	"github.com/rashidkhoury/fleetquote-backend/api/middleware"
	"github.com/rashidkhoury/fleetquote-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if actor := middleware.ActorIDFromContext(r.Context()); actor != "" {
			payload["actor_id"] = actor
		}
		responses.WriteSuccess(w, payload)
	}
}
