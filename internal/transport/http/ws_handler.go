package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"millionaire-service/internal/app"
)

type WSHandler struct {
	service  *app.Service
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.Service, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type optionPayload struct {
	Option int `json:"option"`
}

type fffPayload struct {
	Order []int `json:"order"`
	Time  int64 `json:"time"`
}

type friendPayload struct {
	TargetPlayerID string `json:"targetPlayerId"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// ServeWS upgrades the request and attaches it to a player session. Query: code, playerId.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	playerID := r.URL.Query().Get("playerId")
	if code == "" || playerID == "" {
		http.Error(w, "missing code or playerId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sess, err := h.service.Connect(r.Context(), code, playerID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer sess.Close()
	log := h.log.With(zap.String("code", code), zap.String("player", playerID))
	log.Info("ws connected")
	defer log.Info("ws disconnected")

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write failed", zap.Error(err))
				for range send {
				}
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		updates := sess.Updates()
		for {
			select {
			case u, ok := <-updates:
				if !ok {
					return
				}
				var msg outboundMessage
				switch u.Type {
				case app.UpdateRoom:
					msg = outboundMessage{Type: "room", Payload: u.View}
				default:
					msg = outboundMessage{Type: string(u.Type), Payload: map[string]string{"message": u.Message}}
				}
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		reply, err := h.dispatch(r.Context(), sess, inbound)
		if err != nil {
			send <- outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}}
			continue
		}
		if reply != nil {
			send <- *reply
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, sess *app.Session, in inboundMessage) (*outboundMessage, error) {
	switch in.Type {
	case "start":
		return nil, sess.Start(ctx)
	case "restart":
		return nil, sess.Restart(ctx)
	case "fastestFinger":
		var p fffPayload
		if err := unmarshal(in.Payload, &p); err != nil {
			return nil, err
		}
		return nil, sess.SubmitFastestFinger(ctx, p.Order, p.Time)
	case "answer":
		var p optionPayload
		if err := unmarshal(in.Payload, &p); err != nil {
			return nil, err
		}
		res, err := sess.Answer(ctx, p.Option)
		if err != nil {
			return nil, err
		}
		return &outboundMessage{Type: "answerResult", Payload: res}, nil
	case "walkAway":
		return nil, sess.InitiateWalkAway()
	case "confirmWalkAway":
		prize, err := sess.ConfirmWalkAway(ctx)
		if err != nil {
			return nil, err
		}
		return &outboundMessage{Type: "walkedAway", Payload: map[string]int{"prize": prize}}, nil
	case "cancelWalkAway":
		sess.CancelWalkAway()
		return nil, nil
	case "fiftyFifty":
		disabled, err := sess.FiftyFifty(ctx)
		if err != nil {
			return nil, err
		}
		return &outboundMessage{Type: "fiftyFifty", Payload: map[string][]int{"disabledOptions": disabled}}, nil
	case "askAudience":
		return nil, sess.AskAudience(ctx)
	case "openFriendPicker":
		friends, err := sess.OpenFriendPicker()
		if err != nil {
			return nil, err
		}
		return &outboundMessage{Type: "friends", Payload: map[string][]string{"playerIds": friends}}, nil
	case "closeFriendPicker":
		sess.CloseFriendPicker()
		return nil, nil
	case "phoneFriend":
		var p friendPayload
		if err := unmarshal(in.Payload, &p); err != nil {
			return nil, err
		}
		return nil, sess.PhoneFriend(ctx, p.TargetPlayerID)
	case "vote":
		var p optionPayload
		if err := unmarshal(in.Payload, &p); err != nil {
			return nil, err
		}
		return nil, sess.Vote(ctx, p.Option)
	case "suggest":
		var p optionPayload
		if err := unmarshal(in.Payload, &p); err != nil {
			return nil, err
		}
		return nil, sess.Suggest(ctx, p.Option)
	default:
		return nil, errUnsupported
	}
}
