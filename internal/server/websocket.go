package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kode4food/caravan/topic"
	"github.com/kode4food/timebox"

	"github.com/wayfare-app/onboard/pkg/api"
	"github.com/wayfare-app/onboard/pkg/events"
	"github.com/wayfare-app/onboard/pkg/log"
)

type (
	// Client represents a WebSocket client connection streaming one
	// session's events and navigation signals
	Client struct {
		server   *Server
		conn     *websocket.Conn
		consumer topic.Consumer[*timebox.Event]
		filter   events.EventFilter
		signals  chan *api.NavigationSignal
	}
)

const (
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	maxMessageSize     = 512
	wsBufferSize       = 1024
	incomingBufferSize = 16
	signalBufferSize   = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  wsBufferSize,
	WriteBufferSize: wsBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed",
			log.Error(err))
		return
	}

	noopFilter := func(*timebox.Event) bool { return false }
	client := &Client{
		server:   s,
		conn:     conn,
		consumer: s.eventHub.NewConsumer(),
		filter:   noopFilter,
		signals:  make(chan *api.NavigationSignal, signalBufferSize),
	}

	s.registerWebSocket(client)
	go client.run()
}

// Close terminates the connection; the run loop cleans up
func (c *Client) Close() {
	_ = c.conn.Close()
}

func (c *Client) run() {
	defer func() {
		c.server.unregisterWebSocket(c)
		c.consumer.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	incoming := make(chan []byte, incomingBufferSize)
	go c.readMessages(incoming)

	for {
		select {
		case message, ok := <-incoming:
			if !ok {
				return
			}
			c.handleSubscribe(message)

		case event, ok := <-c.consumer.Receive():
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if !c.sendEventIfMatched(event) {
				return
			}

		case signal := <-c.signals:
			if !c.sendNavigation(signal) {
				return
			}

		case <-ticker.C:
			if !c.sendPing() {
				return
			}
		}
	}
}

func (c *Client) readMessages(incoming chan []byte) {
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			close(incoming)
			return
		}
		incoming <- message
	}
}

func (c *Client) handleSubscribe(message []byte) {
	var sub api.SubscribeRequest
	if err := json.Unmarshal(message, &sub); err != nil {
		slog.Error("Failed to parse WebSocket message",
			log.Error(err))
		return
	}

	if sub.Type != "subscribe" || sub.Data.SessionID == "" {
		return
	}

	c.filter = BuildFilter(&sub.Data)
	c.sendSubscribeState(sub.Data.SessionID)
}

func (c *Client) sendSubscribeState(id api.SessionID) {
	st, err := c.server.engine.GetSession(context.Background(), id)
	if err != nil {
		slog.Error("Failed to get session for subscription",
			log.SessionID(id),
			log.Error(err))
		return
	}

	data, err := json.Marshal(st)
	if err != nil {
		slog.Error("Failed to marshal session state",
			log.SessionID(id),
			log.Error(err))
		return
	}

	msg := api.SubscribedResult{
		Type:      "subscribed",
		SessionID: id,
		Data:      data,
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(msg); err != nil {
		slog.Error("WebSocket write failed",
			slog.String("context", "subscribed"),
			log.Error(err))
	}
}

func (c *Client) sendEventIfMatched(event *timebox.Event) bool {
	if !c.filter(event) {
		return true
	}

	wsEvent := &api.WebSocketEvent{
		Type:      api.EventType(event.Type),
		SessionID: api.SessionID(event.AggregateID[1]),
		Data:      json.RawMessage(event.Data),
		Timestamp: event.Timestamp.UnixMilli(),
		Sequence:  event.Sequence,
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(wsEvent); err != nil {
		slog.Error("WebSocket write failed",
			log.Error(err))
		return false
	}
	return true
}

func (c *Client) sendNavigation(signal *api.NavigationSignal) bool {
	msg := api.NavigationMessage{
		Type: "navigation",
		Data: signal,
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(msg); err != nil {
		slog.Error("WebSocket write failed",
			slog.String("context", "navigation"),
			log.Error(err))
		return false
	}
	return true
}

func (c *Client) sendPing() bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := c.conn.WriteMessage(websocket.PingMessage, nil)
	return err == nil
}

// BuildFilter creates an event filter from a client subscription: one
// session's events, optionally narrowed by type
func BuildFilter(sub *api.ClientSubscription) events.EventFilter {
	sessionFilter := events.FilterSession(sub.SessionID)
	if len(sub.EventTypes) == 0 {
		return sessionFilter
	}

	typeFilter := events.FilterEvents(sub.EventTypes...)
	return func(ev *timebox.Event) bool {
		return sessionFilter(ev) && typeFilter(ev)
	}
}
