package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/herald-dev/herald/internal/types"
	"github.com/herald-dev/herald/internal/utils"
)

// wsClient serializes writes: gorilla/websocket allows a single concurrent
// writer, and pushes, pings, and the welcome message come from different
// goroutines.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteJSON(v)
}

func (c *wsClient) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

var (
	userClients   = make(map[uint]map[*wsClient]bool)
	userClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type wsEvent struct {
	Type         string                      `json:"type"`
	Notification *types.NotificationResponse `json:"notification,omitempty"`
}

// NotifyRecipients pushes a freshly created notification to every connected
// recipient.
func NotifyRecipients(userIDs []uint, notification types.NotificationResponse) {
	for _, userID := range userIDs {
		userClientsMu.RLock()
		clients := userClients[userID]
		clientsCopy := make([]*wsClient, 0, len(clients))
		for client := range clients {
			clientsCopy = append(clientsCopy, client)
		}
		userClientsMu.RUnlock()

		for _, client := range clientsCopy {
			err := client.writeJSON(wsEvent{
				Type:         "notification",
				Notification: &notification,
			})

			if err != nil {
				log.Printf("Failed to push notification to user %d: %v", userID, err)
				dropClient(userID, client)
				client.conn.Close()
			}
		}
	}
}

func dropClient(userID uint, client *wsClient) {
	userClientsMu.Lock()
	defer userClientsMu.Unlock()

	if clients, exists := userClients[userID]; exists {
		delete(clients, client)
		if len(clients) == 0 {
			delete(userClients, userID)
		}
	}
}

func WebSocket(c *gin.Context) {
	currentUser, err := utils.GetCurrentUser(c)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required", "error": "user not authenticated"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	userID := currentUser.ID
	client := &wsClient{conn: conn}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	userClientsMu.Lock()
	if userClients[userID] == nil {
		userClients[userID] = make(map[*wsClient]bool)
	}
	userClients[userID][client] = true
	userClientsMu.Unlock()

	// Closed when the read loop exits, so the ping goroutine does not park
	// on a stopped ticker forever.
	done := make(chan struct{})

	defer func() {
		close(done)
		dropClient(userID, client)
		conn.Close()

		log.Printf("WebSocket connection closed for user %d", userID)
	}()

	if err := client.writeJSON(wsEvent{Type: "connected"}); err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := client.ping(); err != nil {
					log.Printf("Ping failed for user %d: %v", userID, err)
					return
				}
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for user %d: %v", userID, err)
			break
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for user %d: %v", userID, err)
			}
			break
		}
	}
}
