package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"

	"hoaxify/models"
)

// writeWait bounds a single socket write so a stalled client is dropped
const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type HoaxNotification struct {
	Type     string `json:"type"`
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// SendSocketFunc returns true if data was successfully sent
type SendSocketFunc func([]byte) bool
type ConnectedClient struct {
	fun SendSocketFunc
}

// ConnectedClients is needed as a user may be connected more than once
type ConnectedClients []*ConnectedClient

// Hub pushes a notification to every connected socket when a hoax is created,
// so clients know to ask for the newer ones
type Hub struct {
	clients cmap.ConcurrentMap[string, ConnectedClients]
	log     zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: cmap.New[ConnectedClients](),
		log:     log.With().Str("component", "hub").Logger(),
	}
}

func (h *Hub) addClient(id string, c *ConnectedClient) {
	h.clients.Upsert(id, ConnectedClients{c}, func(exist bool, valueInMap, newValue ConnectedClients) ConnectedClients {
		if exist {
			return append(valueInMap, c)
		}
		return newValue
	})
}

func (h *Hub) removeClient(id string, c *ConnectedClient) {
	h.clients.Upsert(id, ConnectedClients{}, func(exist bool, valueInMap, newValue ConnectedClients) ConnectedClients {
		if !exist {
			return newValue
		}
		for _, oc := range valueInMap {
			if oc == c {
				continue
			}
			newValue = append(newValue, oc)
		}
		return newValue
	})
}

// Connections returns the number of open sockets
func (h *Hub) Connections() int {
	count := 0
	for item := range h.clients.IterBuffered() {
		count += len(item.Val)
	}
	return count
}

// PostCreated fans the notification out in the background so the request
// creating the post never waits on a socket
func (h *Hub) PostCreated(post *models.Post) {
	data, err := json.Marshal(HoaxNotification{Type: "hoax", ID: post.ID, Username: post.Author.Username})
	if err != nil {
		h.log.Error().Err(err).Msg("marshal notification")
		return
	}
	go h.broadcast(data)
}

func (h *Hub) broadcast(data []byte) {
	for item := range h.clients.IterBuffered() {
		for _, client := range item.Val {
			client.fun(data)
		}
	}
}

func (h *Hub) WebSocket(c *gin.Context, user *models.User) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("upgrade")
		return
	}
	defer conn.Close()

	// Setup client
	writeMutex := sync.Mutex{}
	isConnected := true
	id := strconv.FormatUint(user.ID, 10)
	client := ConnectedClient{}
	client.fun = func(data []byte) bool {
		writeMutex.Lock()
		defer writeMutex.Unlock()
		if !isConnected {
			return false
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug().Err(err).Str("user", id).Msg("write")
			isConnected = false
			return false
		}
		return true
	}
	h.addClient(id, &client)
	defer h.removeClient(id, &client)
	// Main read cycle
	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			writeMutex.Lock()
			isConnected = false
			writeMutex.Unlock()
			break
		}
		if string(message) == "ping" {
			writeMutex.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(mt, []byte("pong"))
			writeMutex.Unlock()
		}
	}
}
