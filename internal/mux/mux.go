// Package mux wires the HTTP and websocket surface onto the room
// coordinators. Every authenticated request carries a player id resolved
// from a bearer token; the coordinators do the rest.
package mux

import (
	"context"
	"net/http"
	"strings"

	gmux "github.com/gorilla/mux"

	"pokerroom-server/internal/jwt"
	"pokerroom-server/pkg/room"
)

type ctxKey int

const (
	ctxPlayerKey ctxKey = iota
	ctxRoomKey
)

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version  string
	registry *room.Registry

	// chips every player sits down with
	defaultChips int

	// store for testing purposes
	authRouter *gmux.Router
}

// NewMux returns a new HTTP mux over the given room registry
func NewMux(version string, registry *room.Registry, defaultChips int) *Mux {
	this := &Mux{
		Router:       gmux.NewRouter(),
		version:      version,
		registry:     registry,
		defaultChips: defaultChips,
	}

	this.authRouter = this.Router.NewRoute().Subrouter()
	this.authRouter.Use(this.authMiddleware)

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
		r.Methods(http.MethodPost).Path("/auth/guest").Handler(this.postAuthGuest())
	}

	// requires bearer authorization
	{
		r := this.authRouter

		r.Methods(http.MethodGet).Path("/room").Handler(this.getRooms())
		r.Methods(http.MethodPost).Path("/room").Handler(this.postRoom())

		rr := r.PathPrefix("/room/{id:(?i)[a-f0-9]{8}(?:-[a-f0-9]{4}){3}-[a-f0-9]{12}}").Subrouter()
		rr.Use(this.roomMiddleware)

		rr.Methods(http.MethodGet).Path("").Handler(this.getRoom())
		rr.Methods(http.MethodGet).Path("/ws").Handler(this.getRoomWS())
		rr.Methods(http.MethodPost).Path("/join").Handler(this.postRoomJoin())
		rr.Methods(http.MethodPost).Path("/leave").Handler(this.postRoomLeave())
		rr.Methods(http.MethodPost).Path("/start").Handler(this.postRoomStart())
		rr.Methods(http.MethodPost).Path("/act").Handler(this.postRoomAct())
		rr.Methods(http.MethodPost).Path("/end").Handler(this.postRoomEnd())
	}

	return this
}

func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue("access_token")
		if token == "" {
			authHeader := strings.Split(r.Header.Get("Authorization"), " ")
			if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			token = authHeader[1]
		}

		playerID, err := jwt.ValidPlayerID(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxPlayerKey, playerID)
		w.Header().Set("PokerRoom-PlayerID", playerID)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

func (m *Mux) roomMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := gmux.Vars(r)["id"]
		coordinator, err := m.registry.Coordinator(r.Context(), id)
		if err != nil {
			if err == room.ErrRoomNotFound {
				writeJSONError(w, http.StatusNotFound, nil)
				return
			}

			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxRoomKey, coordinator)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

func playerFromContext(r *http.Request) string {
	return r.Context().Value(ctxPlayerKey).(string)
}

func coordinatorFromContext(r *http.Request) *room.Coordinator {
	return r.Context().Value(ctxRoomKey).(*room.Coordinator)
}
