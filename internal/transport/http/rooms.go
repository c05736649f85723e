package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
	"millionaire-service/internal/game"
)

type profileRequest struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Age      int    `json:"age"`
}

type actorRequest struct {
	PlayerID string `json:"playerId"`
}

type roomResponse struct {
	PlayerID string      `json:"playerId"`
	Room     domain.Room `json:"room"`
}

func CreateRoom(service *app.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		room, id, err := service.CreateRoom(r.Context(), req.PlayerID, req.Name, req.Age)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, roomResponse{PlayerID: id, Room: hideAnswer(room)})
	}
}

func JoinRoom(service *app.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		room, id, err := service.JoinRoom(r.Context(), chi.URLParam(r, "code"), req.PlayerID, req.Name, req.Age)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, roomResponse{PlayerID: id, Room: hideAnswer(room)})
	}
}

func GetRoom(service *app.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, err := service.GetRoom(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, hideAnswer(room))
	}
}

func StartGame(service *app.Service) http.HandlerFunc {
	return hostAction(service.StartGame)
}

func RestartGame(service *app.Service) http.HandlerFunc {
	return hostAction(service.RestartGame)
}

func hostAction(fn func(ctx context.Context, code, playerID string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req actorRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := fn(r.Context(), chi.URLParam(r, "code"), req.PlayerID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func Results(service *app.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rankings, err := service.Results(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rankings)
	}
}

// JoinQR renders a PNG QR code of the room's join link.
func JoinQR(service *app.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := game.NormalizeCode(chi.URLParam(r, "code"))
		if err != nil {
			writeError(w, err)
			return
		}
		if _, err := service.GetRoom(r.Context(), code); err != nil {
			writeError(w, err)
			return
		}
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		link := fmt.Sprintf("%s://%s/rooms/%s", scheme, r.Host, code)

		png, err := qrcode.Encode(link, qrcode.Medium, 320)
		if err != nil {
			http.Error(w, "failed to generate qr code", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(png)
	}
}

// hideAnswer strips the correct answer from a room sent to clients.
func hideAnswer(room domain.Room) domain.Room {
	if room.CurrentQuestion == nil {
		return room
	}
	out := room.Clone()
	out.CurrentQuestion.CorrectAnswerIndex = -1
	return out
}
