package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"groupchat/internal/auth"
	"groupchat/internal/chat"
	"groupchat/internal/config"
	"groupchat/internal/store"
)

// Handler holds application dependencies
type Handler struct {
	Config      config.Config
	Store       store.MessageStore
	Coordinator *chat.Coordinator
	Verifier    *auth.Verifier
	Hub         *Hub
}

// New creates a new Handler with the given dependencies
func New(cfg config.Config, messages store.MessageStore, coordinator *chat.Coordinator, verifier *auth.Verifier, hub *Hub) *Handler {
	return &Handler{
		Config:      cfg,
		Store:       messages,
		Coordinator: coordinator,
		Verifier:    verifier,
		Hub:         hub,
	}
}

// SetupRouter configures and returns the HTTP router
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()

	// REST API
	r.HandleFunc("/api/messages/history", h.requireAuth(h.GetHistory)).Methods("GET")
	r.HandleFunc("/api/user", h.requireAuth(h.GetUser)).Methods("GET")

	// WebSocket
	r.HandleFunc("/ws", h.HandleWebSocket).Methods("GET")

	return r
}

type contextKey string

const claimsContextKey contextKey = "claims"

// requireAuth validates the bearer token and stores the claims in the
// request context for downstream handlers.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.Verifier.FromRequest(r)
		if err != nil {
			log.Printf("[%s %s] ❌ Unauthorized: %v", r.Method, r.URL.Path, err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}
		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsContextKey).(*auth.Claims)
	return claims
}

// GetUser handles GET /api/user
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	log.Printf("[GET /api/user] Request received from %s", r.RemoteAddr)

	claims := claimsFrom(r)

	authorities := claims.Roles
	if authorities == nil {
		authorities = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"username":    claims.Username(),
		"authorities": authorities,
	})
}
