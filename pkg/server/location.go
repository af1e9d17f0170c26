package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/urlkit/internal/errors"
	"github.com/vango-dev/urlkit/pkg/history"
	"github.com/vango-dev/urlkit/pkg/urlcodec"
)

// Client message types.
const (
	MsgNavigate = "navigate"
	MsgSet      = "set"
	MsgDelete   = "delete"
	MsgHash     = "hash"
	MsgBack     = "back"
	MsgForward  = "forward"
)

// Server message types.
const (
	MsgLocation = "location"
	MsgError    = "error"
)

// ClientMessage is a request sent over a location session.
type ClientMessage struct {
	Type  string          `json:"type"`
	URL   string          `json:"url,omitempty"`
	Key   string          `json:"key,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
	Mode  string          `json:"mode,omitempty"`
}

// ServerMessage is sent after every committed change and on errors.
type ServerMessage struct {
	Type     string             `json:"type"`
	Session  string             `json:"session,omitempty"`
	URL      string             `json:"url,omitempty"`
	Mode     string             `json:"mode,omitempty"`
	Index    int                `json:"index"`
	Length   int                `json:"length"`
	Segments *urlcodec.Segments `json:"segments,omitempty"`
	Error    *errorPayload      `json:"error,omitempty"`
}

// session is one WebSocket connection and its history.
type session struct {
	id      string
	conn    *websocket.Conn
	history *history.History
	codec   []urlcodec.Option
	timeout time.Duration
	logger  *slog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("path")
	if start == "" {
		start = "/"
	}
	opts := []history.Option{
		history.MaxEntries(s.config.MaxHistory),
		history.Debounce(s.config.HistoryDebounce),
		history.WithCodec(s.config.Codec...),
		history.WithLogger(s.logger),
	}
	h, err := history.New(start, opts...)
	if err != nil {
		writeError(w, r, err, 0)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.Close()
		return
	}
	conn.SetReadLimit(s.config.MaxMessageSize)

	sess := &session{
		id:      uuid.NewString(),
		conn:    conn,
		history: h,
		codec:   s.config.Codec,
		timeout: s.config.WriteTimeout,
	}
	sess.logger = s.logger.With("session", sess.id)

	if !s.addSession(sess) {
		sess.close(websocket.CloseGoingAway, "server shutting down")
		return
	}
	defer s.removeSession(sess)

	unsubscribe := h.Subscribe(func(e history.Entry, mode history.Mode) {
		sess.sendLocation(e, mode)
	})
	defer unsubscribe()

	sess.logger.Debug("location session opened", "path", start)
	sess.sendLocation(h.Current(), history.ModeReplace)
	sess.readLoop()
	sess.close(websocket.CloseNormalClosure, "")
	sess.logger.Debug("location session closed")
}

func (sess *session) readLoop() {
	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				sess.logger.Debug("read failed", "error", err)
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sess.sendError(errors.New("U042").WithDetail(err.Error()))
			continue
		}
		if err := sess.apply(msg); err != nil {
			sess.sendError(err)
		}
	}
}

// apply executes one client message against the history.
func (sess *session) apply(msg ClientMessage) error {
	h := sess.history
	mode := history.ParseMode(msg.Mode)

	switch msg.Type {
	case MsgNavigate:
		if msg.URL == "" {
			return errors.New("U042").WithDetail("navigate requires url")
		}
		return h.Visit(msg.URL, mode)
	case MsgSet:
		if msg.Key == "" {
			return errors.New("U042").WithDetail("set requires key")
		}
		var v urlcodec.Value
		if err := v.UnmarshalJSON(msg.Value); err != nil {
			return err
		}
		h.SetValue(msg.Key, v, mode)
	case MsgDelete:
		h.Delete(msg.Key, mode)
	case MsgHash:
		var hash string
		if len(msg.Value) > 0 {
			if err := json.Unmarshal(msg.Value, &hash); err != nil {
				return errors.New("U042").WithDetail("hash value must be a string")
			}
		}
		h.SetHash(hash, mode)
	case MsgBack:
		_, err := h.Back()
		return err
	case MsgForward:
		_, err := h.Forward()
		return err
	default:
		return errors.New("U042").WithDetail("unknown message type " + msg.Type)
	}
	return nil
}

func (sess *session) sendLocation(e history.Entry, mode history.Mode) {
	suffix := urlcodec.EncodeQuery(e.Params, sess.codec...)
	segs := urlcodec.GetURLSegments(e.Path+suffix, sess.codec...)
	sess.write(ServerMessage{
		Type:     MsgLocation,
		Session:  sess.id,
		URL:      e.Path + suffix,
		Mode:     mode.String(),
		Index:    sess.history.Index(),
		Length:   sess.history.Len(),
		Segments: &segs,
	})
}

func (sess *session) sendError(err error) {
	p := payloadOf(err)
	sess.write(ServerMessage{
		Type:    MsgError,
		Session: sess.id,
		Index:   sess.history.Index(),
		Length:  sess.history.Len(),
		Error:   &p,
	})
}

func (sess *session) write(msg ServerMessage) {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	_ = sess.conn.SetWriteDeadline(time.Now().Add(sess.timeout))
	if err := sess.conn.WriteJSON(msg); err != nil {
		sess.logger.Debug("write failed", "error", err)
	}
}

// close sends a close frame, stops the history and closes the connection.
func (sess *session) close(code int, reason string) {
	sess.closeOnce.Do(func() {
		sess.history.Close()
		sess.writeMu.Lock()
		_ = sess.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(time.Second))
		sess.writeMu.Unlock()
		sess.conn.Close()
	})
}
