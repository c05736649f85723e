package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/solo"
)

type soloActionRequest struct {
	Option int `json:"option"`
}

func StartSolo(games *solo.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		view, err := games.Start(r.Context(), req.Name, req.Age)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, view)
	}
}

func GetSolo(games *solo.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := games.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// SoloAction dispatches POST /solo/{id}/{action}.
func SoloAction(games *solo.Manager) http.HandlerFunc {
	simple := map[string]func(context.Context, string) (solo.View, error){
		"fifty-fifty":       games.FiftyFifty,
		"ask-audience":      games.AskAudience,
		"phone-friend":      games.PhoneFriend,
		"walk-away":         games.InitiateWalkAway,
		"confirm-walk-away": games.ConfirmWalkAway,
		"cancel-walk-away":  games.CancelWalkAway,
		"restart":           games.Restart,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		action := chi.URLParam(r, "action")

		var (
			view solo.View
			err  error
		)
		if action == "answer" {
			var req soloActionRequest
			if err := decode(r, &req); err != nil {
				writeError(w, err)
				return
			}
			view, err = games.Answer(r.Context(), id, req.Option)
		} else if fn, ok := simple[action]; ok {
			view, err = fn(r.Context(), id)
		} else {
			writeError(w, domain.ErrNotFound)
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}
