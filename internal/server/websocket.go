package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rohankatakam/codefolio/internal/chart"
	"github.com/rohankatakam/codefolio/internal/errors"
	"github.com/rohankatakam/codefolio/internal/page"
	"github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Message types sent to the browser
const (
	MessageUpdate = "update"
	MessageReload = "reload"
	MessageError  = "error"
)

// Message is one server-to-browser frame
type Message struct {
	Type    string       `json:"type"`
	Session string       `json:"session"`
	Version uint64       `json:"version"`
	Update  *page.Update `json:"update,omitempty"`
	// SVG is set when the chart was re-rendered
	SVG   string `json:"svg,omitempty"`
	Error string `json:"error,omitempty"`
}

// session owns one browser tab's controller. Only the write loop touches it.
type session struct {
	id      string
	version uint64
	ctrl    *page.Controller
	opts    page.Options
	logger  *logrus.Entry
}

func (s *Server) newSession(id string, progress float64) *session {
	ds := s.data.Load()
	opts := page.Options{
		Layout:            s.layout,
		ThrottlePerSecond: s.cfg.Interaction.ThrottlePerSecond,
		Burst:             s.cfg.Interaction.Burst,
		InitialProgress:   progress,
		Logger:            s.logger,
	}
	return &session{
		id:      id,
		version: ds.Version,
		ctrl:    page.New(ds.Commits, opts),
		opts:    opts,
		logger:  s.logger.WithField("session", id),
	}
}

// rebase moves the session onto the current dataset, keeping its slider
// position and brush.
func (s *Server) rebase(sess *session) *page.Update {
	prev := sess.ctrl.State()
	ds := s.data.Load()

	opts := sess.opts
	opts.InitialProgress = prev.Filter.Progress()
	sess.ctrl = page.New(ds.Commits, opts)
	sess.version = ds.Version

	if prev.Brush != nil {
		brush := *prev.Brush
		if u, err := sess.ctrl.Dispatch(page.Event{Kind: page.KindBrush, Brush: &brush}); err == nil {
			return u
		}
	}
	return sess.ctrl.Snapshot()
}

type inbound struct {
	ev  page.Event
	err error
}

// handleWebSocket upgrades the connection and runs one interactive session.
// A reader goroutine decodes events; the loop below is the only writer.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	notices, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	sess := s.newSession(uuid.NewString(), s.cfg.Interaction.InitialProgress)
	sess.logger.Debug("Session opened")
	defer sess.logger.Debug("Session closed")

	incoming := make(chan inbound)
	quit := make(chan struct{})
	defer close(quit)

	go func() {
		defer close(incoming)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var in inbound
			if err := json.Unmarshal(data, &in.ev); err != nil {
				in.err = errors.ValidationErrorf("event: %v", err)
			}
			select {
			case incoming <- in:
			case <-quit:
				return
			}
		}
	}()

	if err := s.send(conn, sess, MessageUpdate, sess.ctrl.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case in, ok := <-incoming:
			if !ok {
				return
			}
			if in.err != nil {
				if err := s.sendError(conn, sess, in.err); err != nil {
					return
				}
				continue
			}

			u, err := sess.ctrl.Dispatch(in.ev)
			if errors.Is(err, page.ErrThrottled) {
				continue
			}
			if err != nil {
				if err := s.sendError(conn, sess, err); err != nil {
					return
				}
				continue
			}
			if err := s.send(conn, sess, MessageUpdate, u); err != nil {
				return
			}

		case n, ok := <-notices:
			if !ok {
				return
			}
			if n.Version == sess.version {
				continue
			}
			if err := s.send(conn, sess, MessageReload, s.rebase(sess)); err != nil {
				return
			}
		}
	}
}

// rerendered reports whether an update of this kind changes the chart
func rerendered(kind page.Kind) bool {
	switch kind {
	case page.KindHover, page.KindLeave:
		return false
	}
	return true
}

func (s *Server) send(conn *websocket.Conn, sess *session, typ string, u *page.Update) error {
	msg := Message{Type: typ, Session: sess.id, Version: sess.version, Update: u}
	if rerendered(u.Kind) && u.Frame != nil {
		var buf bytes.Buffer
		if err := chart.WriteSVG(&buf, u.Frame); err != nil {
			sess.logger.WithError(err).Error("Failed to render chart")
		} else {
			msg.SVG = buf.String()
		}
	}
	return s.write(conn, sess, msg)
}

func (s *Server) sendError(conn *websocket.Conn, sess *session, err error) error {
	sess.logger.WithError(err).Debug("Rejected interaction")
	return s.write(conn, sess, Message{Type: MessageError, Session: sess.id, Version: sess.version, Error: err.Error()})
}

func (s *Server) write(conn *websocket.Conn, sess *session, msg Message) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		sess.logger.WithError(err).Debug("Websocket write failed")
		return err
	}
	return nil
}
