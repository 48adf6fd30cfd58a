package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"eshop-backend/chat"
	"eshop-backend/middleware"
	"eshop-backend/models"
	"eshop-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

// DefaultAutoReplyDelay spaces the bot's canned response out from the
// customer message so the reply reads as typed, not instant.
const DefaultAutoReplyDelay = 1 * time.Second

const readWait = 60 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS layer on the HTTP side.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type ChatHandler struct {
	DB  *gorm.DB
	Hub *chat.Hub

	// AutoReplyDelay is how long after a customer message the bot answers.
	// Tests shrink this.
	AutoReplyDelay time.Duration
}

// identity is what we could learn about the connection from its session
// cookie. Guests have a nil userID.
type identity struct {
	userID   *uuid.UUID
	username string
}

// identify resolves the optional login behind a websocket request. Chat is
// open to guests, so a missing or invalid token is not an error.
func identify(c *gin.Context) identity {
	token, err := c.Cookie(middleware.SessionCookieName)
	if err != nil || token == "" {
		auth := c.GetHeader("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if token == "" {
		return identity{}
	}

	claims, err := utils.ValidateToken(token)
	if err != nil {
		return identity{}
	}
	uid := claims.UserID
	return identity{userID: &uid, username: claims.Username}
}

// HandleWS upgrades the request and runs the connection's read loop. One
// goroutine reads, one writes; all room state lives in the hub.
func (h *ChatHandler) HandleWS(c *gin.Context) {
	who := identify(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("chat: websocket upgrade failed: %v", err)
		return
	}

	client := chat.NewClient(conn)
	go client.WritePump()

	// Disconnect releases every room membership without a user_left
	// broadcast; only an explicit leave_chat announces departure.
	defer h.Hub.Disconnect(client)

	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})

	for {
		var ev chat.Event
		if err := conn.ReadJSON(&ev); err != nil {
			return
		}

		switch ev.Type {
		case "join_chat":
			h.handleJoin(client, who, ev.Data)
		case "leave_chat":
			h.handleLeave(client, ev.Data)
		case "send_message":
			h.handleMessage(client, who, ev.Data)
		case "typing":
			h.handleTyping(client, ev.Data)
		case "support_request":
			h.handleSupportRequest(client, ev.Data)
		default:
			client.Send(chat.Event{Type: "error", Data: gin.H{"message": "Unknown event type"}})
		}
	}
}

func stringField(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func boolField(data map[string]interface{}, key string) bool {
	v, _ := data[key].(bool)
	return v
}

// handleJoin puts the connection in a session room, replays the session's
// history to the joiner only, and announces the arrival to everyone else.
func (h *ChatHandler) handleJoin(client *chat.Client, who identity, data map[string]interface{}) {
	sessionID := stringField(data, "session_id")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	username := stringField(data, "username")
	if username == "" {
		username = who.username
	}
	if username == "" {
		username = "Guest"
	}

	h.Hub.Join(client, sessionID)

	var history []models.ChatMessage
	if err := h.DB.Where("session_id = ?", sessionID).Order("timestamp ASC").Find(&history).Error; err != nil {
		log.Printf("chat: failed to load history for session %s: %v", sessionID, err)
		history = nil
	}
	if history == nil {
		history = []models.ChatMessage{}
	}

	client.Send(chat.Event{Type: "chat_joined", Data: gin.H{
		"session_id": sessionID,
		"username":   username,
		"history":    history,
	}})

	h.Hub.BroadcastOthers(sessionID, client, chat.Event{Type: "user_joined", Data: gin.H{
		"session_id": sessionID,
		"username":   username,
		"timestamp":  time.Now().UTC(),
	}})
}

func (h *ChatHandler) handleLeave(client *chat.Client, data map[string]interface{}) {
	sessionID := stringField(data, "session_id")
	if sessionID == "" {
		return
	}
	username := stringField(data, "username")
	if username == "" {
		username = "Guest"
	}

	h.Hub.Leave(client, sessionID)

	h.Hub.Broadcast(sessionID, chat.Event{Type: "user_left", Data: gin.H{
		"session_id": sessionID,
		"username":   username,
		"timestamp":  time.Now().UTC(),
	}})
}

// handleMessage persists the message, fans it out to the whole room including
// the sender, and schedules the bot's reply for customer messages.
func (h *ChatHandler) handleMessage(client *chat.Client, who identity, data map[string]interface{}) {
	sessionID := stringField(data, "session_id")
	text := stringField(data, "message")
	if sessionID == "" || strings.TrimSpace(text) == "" {
		client.Send(chat.Event{Type: "error", Data: gin.H{"message": "session_id and message are required"}})
		return
	}

	username := stringField(data, "username")
	if username == "" {
		username = who.username
	}
	if username == "" {
		username = "Guest"
	}
	isSupport := boolField(data, "is_support")

	msg := models.ChatMessage{
		SessionID: sessionID,
		UserID:    who.userID,
		Username:  username,
		Message:   text,
		IsSupport: isSupport,
	}
	if err := h.DB.Create(&msg).Error; err != nil {
		log.Printf("chat: failed to persist message in session %s: %v", sessionID, err)
		client.Send(chat.Event{Type: "error", Data: gin.H{"message": "Failed to send message"}})
		return
	}

	h.Hub.Broadcast(sessionID, chat.Event{Type: "new_message", Data: gin.H{
		"id":         msg.ID,
		"session_id": msg.SessionID,
		"username":   msg.Username,
		"message":    msg.Message,
		"is_support": msg.IsSupport,
		"timestamp":  msg.Timestamp,
	}})

	if !isSupport {
		h.scheduleAutoReply(sessionID, text)
	}
}

// scheduleAutoReply answers a customer message with the canned response after
// a short delay, off the read loop so a slow DB never blocks the connection.
func (h *ChatHandler) scheduleAutoReply(sessionID, text string) {
	delay := h.AutoReplyDelay
	if delay <= 0 {
		delay = DefaultAutoReplyDelay
	}

	reply := chat.AutoReply(text)
	time.AfterFunc(delay, func() {
		msg := models.ChatMessage{
			SessionID: sessionID,
			Username:  chat.BotUsername,
			Message:   reply,
			IsSupport: true,
		}
		if err := h.DB.Create(&msg).Error; err != nil {
			log.Printf("chat: failed to persist auto-reply in session %s: %v", sessionID, err)
			return
		}

		h.Hub.Broadcast(sessionID, chat.Event{Type: "new_message", Data: gin.H{
			"id":         msg.ID,
			"session_id": msg.SessionID,
			"username":   msg.Username,
			"message":    msg.Message,
			"is_support": msg.IsSupport,
			"timestamp":  msg.Timestamp,
		}})
	})
}

// handleTyping relays the indicator to the rest of the room. Nothing is
// persisted.
func (h *ChatHandler) handleTyping(client *chat.Client, data map[string]interface{}) {
	sessionID := stringField(data, "session_id")
	if sessionID == "" {
		return
	}

	h.Hub.BroadcastOthers(sessionID, client, chat.Event{Type: "user_typing", Data: gin.H{
		"session_id": sessionID,
		"username":   stringField(data, "username"),
		"is_typing":  boolField(data, "is_typing"),
	}})
}

// handleSupportRequest alerts the staff room that a session wants a human and
// confirms to the requester.
func (h *ChatHandler) handleSupportRequest(client *chat.Client, data map[string]interface{}) {
	sessionID := stringField(data, "session_id")
	if sessionID == "" {
		client.Send(chat.Event{Type: "error", Data: gin.H{"message": "session_id is required"}})
		return
	}

	h.Hub.Broadcast(chat.SupportRoom, chat.Event{Type: "support_alert", Data: gin.H{
		"session_id": sessionID,
		"username":   stringField(data, "username"),
		"message":    stringField(data, "message"),
		"timestamp":  time.Now().UTC(),
	}})

	client.Send(chat.Event{Type: "support_notified", Data: gin.H{
		"session_id": sessionID,
		"message":    "A support representative has been notified and will join shortly.",
	}})
}
