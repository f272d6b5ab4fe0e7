// Package chatws carries the chatbot conversation over a WebSocket so the
// patient widget gets streaming-style replies and history without polling.
package chatws

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/alshifa-health/hms-platform/internal/appointments"
	"github.com/alshifa-health/hms-platform/internal/auth"
	"github.com/alshifa-health/hms-platform/internal/chatbot"
	"github.com/alshifa-health/hms-platform/pkg/logging"
)

// Responder answers one chat turn; chatbot.Service implements it.
type Responder interface {
	HandleMessage(ctx context.Context, message string, lang chatbot.Language) chatbot.Response
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
	Lang string `json:"lang,omitempty"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string                   `json:"type"` // "message", "booking_confirmed", "typing", "history", "session", "pong", "error"
	Text      string                   `json:"text,omitempty"`
	Role      string                   `json:"role,omitempty"`
	Action    *chatbot.BookingProposal `json:"action,omitempty"`
	SessionID string                   `json:"session_id,omitempty"`
	Timestamp string                   `json:"timestamp,omitempty"`
	Messages  []HistoryMessage         `json:"messages,omitempty"`
}

// HistoryMessage is a simplified transcript entry for history frames.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Handler manages patient chat connections.
type Handler struct {
	responder     Responder
	transcript    Transcript
	patientSecret string
	logger        *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*websocket.Conn // conversationID -> active connection
}

// NewHandler creates a chat WebSocket handler.
func NewHandler(responder Responder, transcript Transcript, patientSecret string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		responder:     responder,
		transcript:    transcript,
		patientSecret: patientSecret,
		logger:        logger,
		sessions:      make(map[string]*websocket.Conn),
	}
}

// ConversationID builds the canonical conversation ID for a patient session.
func ConversationID(patientID int64, sessionID string) string {
	return fmt.Sprintf("patient:%d:%s", patientID, sessionID)
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and serves the chat session. Browsers
// cannot set headers on WebSocket upgrades, so the patient token rides in the
// token query parameter.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	claims, err := auth.ParsePatient(r.URL.Query().Get("token"), h.patientSecret)
	if err != nil {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "invalid or missing token"})
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}
	convID := ConversationID(claims.PatientID, sessionID)

	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sessionID})

	if h.transcript != nil {
		if msgs, err := h.transcript.List(r.Context(), convID, 50); err == nil && len(msgs) > 0 {
			history := make([]HistoryMessage, 0, len(msgs))
			for _, m := range msgs {
				history = append(history, HistoryMessage{
					Role:      m.Role,
					Text:      m.Body,
					Timestamp: m.Timestamp.Format(time.RFC3339),
				})
			}
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: history})
		}
	}

	h.mu.Lock()
	h.sessions[convID] = conn
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.sessions[convID] == conn {
			delete(h.sessions, convID)
		}
		h.mu.Unlock()
	}()

	h.logger.Info("chat connection opened", "patient_id", claims.PatientID, "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("chat connection closed", "patient_id", claims.PatientID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		h.processMessage(r.Context(), conn, convID, msg)
	}
}

func (h *Handler) processMessage(ctx context.Context, conn *websocket.Conn, convID string, msg InboundMessage) {
	now := time.Now().UTC()
	if h.transcript != nil {
		_ = h.transcript.Append(ctx, convID, Message{
			ID:        uuid.New().String(),
			Role:      "user",
			Body:      msg.Text,
			Timestamp: now,
		})
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "typing"})

	var lang chatbot.Language
	switch strings.ToLower(msg.Lang) {
	case "ar":
		lang = chatbot.Arabic
	case "en":
		lang = chatbot.English
	}
	resp := h.responder.HandleMessage(ctx, msg.Text, lang)

	if h.transcript != nil {
		_ = h.transcript.Append(ctx, convID, Message{
			ID:        uuid.New().String(),
			Role:      "assistant",
			Body:      resp.Message,
			Timestamp: time.Now().UTC(),
		})
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "message",
		Role:      "assistant",
		Text:      resp.Message,
		Action:    resp.Action,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// SendToSession pushes a frame to an active session.
func (h *Handler) SendToSession(convID string, msg OutboundMessage) {
	h.mu.RLock()
	conn, ok := h.sessions[convID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	_ = websocket.JSON.Send(conn, msg)
}

// BookingConfirmed fans a confirmation frame out to every open chat session
// of the patient, for example when the front desk books through the REST API
// while the patient's widget is connected. Satisfies appointments.Notifier.
func (h *Handler) BookingConfirmed(patientID int64, appt *appointments.Appointment) {
	prefix := fmt.Sprintf("patient:%d:", patientID)
	h.mu.RLock()
	convIDs := make([]string, 0, 1)
	for id := range h.sessions {
		if strings.HasPrefix(id, prefix) {
			convIDs = append(convIDs, id)
		}
	}
	h.mu.RUnlock()

	frame := OutboundMessage{
		Type: "booking_confirmed",
		Role: "assistant",
		Action: &chatbot.BookingProposal{
			Type:     "booking_confirmed",
			DoctorID: appt.DoctorID,
			Date:     appt.Date,
			Time:     appt.Time,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for _, id := range convIDs {
		h.SendToSession(id, frame)
	}
}

// HandleHistory returns chat history for a session over plain HTTP.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	patient, ok := auth.PatientFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	history := []HistoryMessage{}
	if h.transcript != nil {
		msgs, err := h.transcript.List(r.Context(), ConversationID(patient.PatientID, sessionID), 100)
		if err != nil {
			h.logger.Error("load chat history", "error", err)
			http.Error(w, "failed to load history", http.StatusInternalServerError)
			return
		}
		for _, m := range msgs {
			history = append(history, HistoryMessage{
				Role:      m.Role,
				Text:      m.Body,
				Timestamp: m.Timestamp.Format(time.RFC3339),
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": history})
}
