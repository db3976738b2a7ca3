package dating

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Configure origin checking in production
		return true
	},
}

type Hub struct {
	clients    map[string]*Client
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan Message
	userID string
}

type Message struct {
	Type   string      `json:"type"`
	UserID string      `json:"user_id"`
	Data   interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client.userID] = client
			log.Printf("User %s connected", client.userID)

		case client := <-h.unregister:
			if _, ok := h.clients[client.userID]; ok {
				delete(h.clients, client.userID)
				close(client.send)
				log.Printf("User %s disconnected", client.userID)
			}

		case message := <-h.broadcast:
			if client, ok := h.clients[message.UserID]; ok {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client.userID)
				}
			}

		case <-h.done:
			for userID, client := range h.clients {
				close(client.send)
				delete(h.clients, userID)
			}
			return
		}
	}
}

func (h *Hub) Shutdown() {
	close(h.done)
}

// send hands a message to the hub loop, dropping it once the hub has
// shut down so callers never block on a dead loop.
func (h *Hub) send(message Message) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// NotifyMatch pushes the new match to both participants
func (h *Hub) NotifyMatch(match *Match) {
	message := Message{
		Type: "new_match",
		Data: match,
	}

	message.UserID = match.User1ID
	h.send(message)

	message.UserID = match.User2ID
	h.send(message)
}

// NotifyStandoutsReady tells a user their daily picks are available
func (h *Hub) NotifyStandoutsReady(userID string) {
	h.send(Message{
		Type:   "standouts_ready",
		UserID: userID,
	})
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan Message, 256),
		userID: userID,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.WriteJSON(message)
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
