package chatws

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/alshifa-health/hms-platform/internal/appointments"
	"github.com/alshifa-health/hms-platform/internal/auth"
	"github.com/alshifa-health/hms-platform/internal/chatbot"
	"github.com/alshifa-health/hms-platform/pkg/logging"
)

const patientSecret = "chatws-test-secret"

type echoResponder struct {
	replies atomic.Int64
}

func (e *echoResponder) HandleMessage(ctx context.Context, message string, lang chatbot.Language) chatbot.Response {
	e.replies.Add(1)
	return chatbot.Response{Message: "echo: " + message}
}

func quietLogger() *logging.Logger {
	return logging.NewWithWriter("error", io.Discard)
}

func wsURL(t *testing.T, server *httptest.Server, query string) string {
	t.Helper()
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/chatbot/ws?" + query
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	conn, err := websocket.Dial(wsURL(t, server, query), "", server.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func recvFrame(t *testing.T, conn *websocket.Conn) OutboundMessage {
	t.Helper()
	var msg OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &msg))
	return msg
}

func patientToken(t *testing.T) string {
	t.Helper()
	token, err := auth.NewIssuer(patientSecret, time.Hour).IssuePatient(7, "mona@example.com")
	require.NoError(t, err)
	return token
}

func newChatServer(t *testing.T, responder Responder, transcript Transcript) *httptest.Server {
	t.Helper()
	h := NewHandler(responder, transcript, patientSecret, quietLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("/chatbot/ws", h.HandleWebSocket)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestConversationID(t *testing.T) {
	assert.Equal(t, "patient:7:sess1", ConversationID(7, "sess1"))
}

func TestGenerateSessionID(t *testing.T) {
	s1 := generateSessionID()
	s2 := generateSessionID()
	assert.NotEmpty(t, s1)
	assert.NotEqual(t, s1, s2)
	assert.Len(t, s1, 32)
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	server := newChatServer(t, &echoResponder{}, nil)

	conn := dial(t, server, "session=s1")
	frame := recvFrame(t, conn)
	assert.Equal(t, "error", frame.Type)
}

func TestWebSocketSessionAndEcho(t *testing.T) {
	responder := &echoResponder{}
	server := newChatServer(t, responder, NewMemoryTranscript())

	conn := dial(t, server, "token="+patientToken(t))

	session := recvFrame(t, conn)
	require.Equal(t, "session", session.Type)
	assert.NotEmpty(t, session.SessionID)

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "hello"}))

	typing := recvFrame(t, conn)
	assert.Equal(t, "typing", typing.Type)

	reply := recvFrame(t, conn)
	assert.Equal(t, "message", reply.Type)
	assert.Equal(t, "assistant", reply.Role)
	assert.Equal(t, "echo: hello", reply.Text)
	assert.Equal(t, int64(1), responder.replies.Load())
}

func TestWebSocketPingPong(t *testing.T) {
	server := newChatServer(t, &echoResponder{}, nil)

	conn := dial(t, server, "token="+patientToken(t))
	recvFrame(t, conn) // session

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "ping"}))
	assert.Equal(t, "pong", recvFrame(t, conn).Type)
}

func TestWebSocketSendsHistoryOnReconnect(t *testing.T) {
	transcript := NewMemoryTranscript()
	require.NoError(t, transcript.Append(context.Background(), ConversationID(7, "s1"), Message{
		ID: "a", Role: "user", Body: "earlier", Timestamp: time.Now().UTC(),
	}))
	server := newChatServer(t, &echoResponder{}, transcript)

	conn := dial(t, server, "token="+patientToken(t)+"&session=s1")
	recvFrame(t, conn) // session

	history := recvFrame(t, conn)
	require.Equal(t, "history", history.Type)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "earlier", history.Messages[0].Text)
}

func TestWebSocketStoresBothSides(t *testing.T) {
	transcript := NewMemoryTranscript()
	server := newChatServer(t, &echoResponder{}, transcript)

	conn := dial(t, server, "token="+patientToken(t)+"&session=s2")
	recvFrame(t, conn) // session

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "hello"}))
	recvFrame(t, conn) // typing
	recvFrame(t, conn) // reply

	msgs, err := transcript.List(context.Background(), ConversationID(7, "s2"), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "assistant", msgs[1].Role)
}

func TestBookingConfirmedReachesOpenSessions(t *testing.T) {
	h := NewHandler(&echoResponder{}, nil, patientSecret, quietLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("/chatbot/ws", h.HandleWebSocket)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	conn := dial(t, server, "token="+patientToken(t)+"&session=s9")
	recvFrame(t, conn) // session
	// A ping round trip guarantees the serve loop, and with it the session
	// registration, is running before the push.
	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "ping"}))
	require.Equal(t, "pong", recvFrame(t, conn).Type)

	h.BookingConfirmed(7, &appointments.Appointment{
		ID: 42, PatientID: 7, DoctorID: 3, Date: "2026-09-01", Time: "10:00",
	})

	frame := recvFrame(t, conn)
	assert.Equal(t, "booking_confirmed", frame.Type)
	require.NotNil(t, frame.Action)
	assert.Equal(t, int64(3), frame.Action.DoctorID)
	assert.Equal(t, "2026-09-01", frame.Action.Date)
	assert.Equal(t, "10:00", frame.Action.Time)
}

func TestBookingConfirmedWithoutSessionsIsNoop(t *testing.T) {
	h := NewHandler(&echoResponder{}, nil, patientSecret, quietLogger())
	h.BookingConfirmed(7, &appointments.Appointment{PatientID: 7, DoctorID: 3})
}

func TestHandleHistoryRequiresSession(t *testing.T) {
	h := NewHandler(&echoResponder{}, NewMemoryTranscript(), patientSecret, quietLogger())
	handler := auth.PatientJWT(patientSecret)(http.HandlerFunc(h.HandleHistory))

	req := httptest.NewRequest(http.MethodGet, "/chatbot/history", nil)
	req.Header.Set("Authorization", "Bearer "+patientToken(t))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHistoryReturnsMessages(t *testing.T) {
	transcript := NewMemoryTranscript()
	require.NoError(t, transcript.Append(context.Background(), ConversationID(7, "s1"), Message{
		Role: "assistant", Body: "hi", Timestamp: time.Now().UTC(),
	}))
	h := NewHandler(&echoResponder{}, transcript, patientSecret, quietLogger())
	handler := auth.PatientJWT(patientSecret)(http.HandlerFunc(h.HandleHistory))

	req := httptest.NewRequest(http.MethodGet, "/chatbot/history?session=s1", nil)
	req.Header.Set("Authorization", "Bearer "+patientToken(t))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []HistoryMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "hi", resp.Messages[0].Text)
}
