package mux

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"pokerroom-server/internal/jwt"
)

var usernameRx = regexp.MustCompile(`^\w[\w\- ]{2,39}\z`)

type postAuthGuestPayload struct {
	Username string `json:"username"`
}

type authGuestResponse struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// postAuthGuest issues a bearer token for an ephemeral player identity.
// Full account management belongs to an upstream service; the core only
// requires an authenticated player id.
func (m *Mux) postAuthGuest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postAuthGuestPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if !usernameRx.MatchString(pp.Username) {
			writeJSONError(w, http.StatusBadRequest, errors.New("username must be 3-40 word characters"))
			return
		}

		playerID := uuid.New().String()
		token, err := jwt.Sign(playerID)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusCreated, authGuestResponse{
			PlayerID: playerID,
			Username: pp.Username,
			Token:    token,
		})
	}
}
