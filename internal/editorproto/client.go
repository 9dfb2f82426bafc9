package editorproto

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBufferSize = 64
)

// Subscriptions tracks which routines a client wants push notifications
// for.
type Subscriptions struct {
	routines map[string]bool
	mu       sync.RWMutex
}

func NewSubscriptions() *Subscriptions {
	return &Subscriptions{routines: make(map[string]bool)}
}

// RequestHandler executes a decoded Request and returns the Response to
// send back. Implemented by the editor server wiring runtime.Runtime,
// condition.Evaluator and graph.Load together.
type RequestHandler interface {
	Handle(c *Client, req *Request) *Response
}

// Client is one editor connection, grounded on the teacher's Client —
// same read/write pump split over a buffered send channel, generalized
// from workflow-id/execution-id subscriptions to routine-id
// subscriptions.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	handler RequestHandler
	send    chan *Event

	id        string
	sessionID string
	subs      *Subscriptions
}

func NewClient(id, sessionID string, hub *Hub, conn *websocket.Conn, handler RequestHandler) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		handler:   handler,
		send:      make(chan *Event, sendBufferSize),
		id:        id,
		sessionID: sessionID,
		subs:      NewSubscriptions(),
	}
}

// ReadPump pumps Requests from the connection to the handler. Run it in
// its own goroutine; it returns when the connection closes.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var req Request
		if err := json.Unmarshal(message, &req); err != nil {
			c.sendResponse(NewErrorResponse("", "error", "invalid request format"))
			continue
		}

		resp := c.handler.Handle(c, &req)
		if resp != nil {
			c.sendResponse(resp)
		}
	}
}

// WritePump pumps pushed Events and keepalive pings to the connection.
// Run it in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendResponse(resp *Response) {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteJSON(resp)
}
