package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"study-client/internal/app"
	"study-client/internal/domain"
	"study-client/internal/loading"
	"study-client/internal/logger"
)

// SessionFactory builds the quiz session backing one renderer connection.
type SessionFactory func() *app.QuizSession

type WSHandler struct {
	library    *app.Library
	overlay    *loading.Overlay
	newSession SessionFactory
	log        *logger.Logger
	upgrader   websocket.Upgrader
}

func NewWSHandler(library *app.Library, overlay *loading.Overlay, newSession SessionFactory, log *logger.Logger) *WSHandler {
	return &WSHandler{
		library:    library,
		overlay:    overlay,
		newSession: newSession,
		log:        log.With("component", "WSHandler"),
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

type openPayload struct {
	CourseID string `json:"courseId"`
}

type answerPayload struct {
	Selected string `json:"selected"`
}

type promptPayload struct {
	Prompt string `json:"prompt"`
}

type busyPayload struct {
	Visible bool `json:"visible"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and connects the renderer to a
// fresh quiz session. Busy and video state are pushed as they change; quiz
// state is pushed after every intent that can change it.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	session := h.newSession()
	defer session.Wait()

	busy := make(chan bool, 1)
	unsubscribeBusy := h.overlay.Subscribe(func(visible bool) { offerLatest(busy, visible) })
	defer unsubscribeBusy()
	videos, cancelVideos := session.Video().Subscribe()
	defer cancelVideos()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warn("ws write error", "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			var msg outboundMessage[any]
			select {
			case visible := <-busy:
				msg = outboundMessage[any]{Type: "busy", Payload: busyPayload{Visible: visible}}
			case snap, ok := <-videos:
				if !ok {
					return
				}
				msg = outboundMessage[any]{Type: "video", Payload: snap}
			case <-closeSignals:
				return
			}
			select {
			case send <- msg:
			case <-closeSignals:
				return
			case <-writerDone:
				return
			}
		}
	}()

	// push gives up once the writer has stopped so the read loop never wedges.
	push := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	push(outboundMessage[any]{Type: "busy", Payload: busyPayload{Visible: h.overlay.Visible()}})
	push(outboundMessage[any]{Type: "courses", Payload: h.library.Courses(r.Context())})

read:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		for _, msg := range h.dispatch(r.Context(), session, inbound) {
			if !push(msg) {
				break read
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// dispatch applies one renderer intent and returns the messages to send back.
func (h *WSHandler) dispatch(ctx context.Context, session *app.QuizSession, inbound inboundMessage) []outboundMessage[any] {
	video := session.Video()
	quiz := func() outboundMessage[any] {
		return outboundMessage[any]{Type: "quiz", Payload: session.View()}
	}

	switch inbound.Type {
	case "courses":
		return []outboundMessage[any]{{Type: "courses", Payload: h.library.Courses(ctx)}}
	case "open":
		var payload openPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.CourseID == "" {
			return errorReply("invalid open payload")
		}
		// Load failures are carried in the view's inline error.
		_ = session.Open(ctx, payload.CourseID)
		return []outboundMessage[any]{quiz()}
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorReply("invalid answer payload")
		}
		outcome, err := session.Answer(ctx, payload.Selected)
		if err != nil && !errors.Is(err, domain.ErrAlreadyAnswered) {
			return errorReply(err.Error())
		}
		return []outboundMessage[any]{{Type: "answerResult", Payload: outcome}, quiz()}
	case "next":
		session.Next()
		return []outboundMessage[any]{quiz()}
	case "previous":
		session.Previous()
		return []outboundMessage[any]{quiz()}
	case "video.open":
		if err := session.OpenVideoPrompt(); err != nil {
			return errorReply(err.Error())
		}
	case "video.prompt":
		var payload promptPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorReply("invalid prompt payload")
		}
		if err := video.SetPrompt(payload.Prompt); err != nil {
			return errorReply(err.Error())
		}
	case "video.confirm":
		if err := video.Confirm(ctx); err != nil {
			return errorReply(err.Error())
		}
	case "video.dismiss":
		video.Dismiss()
	case "video.closePlayer":
		video.ClosePlayer()
	default:
		return errorReply("unsupported message type")
	}
	// Video intents are answered through the snapshot subscription.
	return nil
}

// SharedVideo renders a share link as JSON: GET /s/{token}.
func (h *WSHandler) SharedVideo(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.URL.Path, "/s/")
	view := h.library.Shared(r.Context(), token)
	w.Header().Set("Content-Type", "application/json")
	if !view.Available {
		w.WriteHeader(http.StatusNotFound)
	}
	if err := json.NewEncoder(w).Encode(view); err != nil {
		h.log.Warn("write shared video", "error", err)
	}
}

func errorReply(message string) []outboundMessage[any] {
	return []outboundMessage[any]{{Type: "error", Payload: errorPayload{Message: message}}}
}

// offerLatest replaces any unread value in ch with v. Overlay listeners run
// on the request path, so they must never block on a slow renderer.
func offerLatest(ch chan bool, v bool) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
