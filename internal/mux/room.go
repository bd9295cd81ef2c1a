package mux

import (
	"errors"
	"net/http"
	"regexp"

	"pokerroom-server/pkg/poker/action"
)

var wordChar = regexp.MustCompile(`\w`)

func (m *Mux) getRooms() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := m.registry.ListOpen(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, summaries)
	}
}

type postRoomPayload struct {
	Name      string `json:"name"`
	SeatLimit int    `json:"seatLimit"`
	MinBet    int    `json:"minBet"`
	MaxBet    int    `json:"maxBet"`
}

func (m *Mux) postRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postRoomPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if !wordChar.MatchString(pp.Name) || len(pp.Name) < 3 || len(pp.Name) > 40 {
			writeJSONError(w, http.StatusBadRequest, errors.New("name must be 3-40 characters"))
			return
		}

		_, view, err := m.registry.CreateRoom(r.Context(), pp.Name, playerFromContext(r), pp.SeatLimit, pp.MinBet, pp.MaxBet)
		if err != nil {
			writeCoordinatorError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, view)
	}
}

func (m *Mux) getRoom() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		view, err := coordinatorFromContext(r).View(r.Context(), playerFromContext(r))
		if err != nil {
			writeCoordinatorError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, view)
	})
}

type postRoomJoinPayload struct {
	Username string `json:"username"`
}

func (m *Mux) postRoomJoin() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var pp postRoomJoinPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		playerID := playerFromContext(r)
		username := pp.Username
		if username == "" {
			username = playerID
		}

		view, err := coordinatorFromContext(r).Join(r.Context(), playerID, username, m.defaultChips)
		if err != nil {
			writeCoordinatorError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, view)
	})
}

func (m *Mux) postRoomLeave() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := coordinatorFromContext(r).Leave(r.Context(), playerFromContext(r)); err != nil {
			writeCoordinatorError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (m *Mux) postRoomStart() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		view, err := coordinatorFromContext(r).StartHand(r.Context(), playerFromContext(r))
		if err != nil {
			writeCoordinatorError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, view)
	})
}

type postRoomActPayload struct {
	Action string `json:"action"`
	Amount int    `json:"amount"`
}

func (m *Mux) postRoomAct() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var pp postRoomActPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		anAction, err := action.FromString(pp.Action)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		view, err := coordinatorFromContext(r).Act(r.Context(), playerFromContext(r), anAction, pp.Amount)
		if err != nil {
			writeCoordinatorError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, view)
	})
}

func (m *Mux) postRoomEnd() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		view, err := coordinatorFromContext(r).End(r.Context(), playerFromContext(r))
		if err != nil {
			writeCoordinatorError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, view)
	})
}
