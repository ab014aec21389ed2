package ws_room

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/quipstack/core/internal/model"
	usecase_sync "github.com/quipstack/core/internal/usecase/sync"
)

type MessageType string

const (
	RoomSnapshot MessageType = "room_snapshot"
)

type Message struct {
	Type     MessageType  `json:"type"`
	RoomID   string       `json:"room_id"`
	Snapshot *SnapshotDTO `json:"snapshot,omitempty"`
}

type SnapshotDTO struct {
	Members     []MemberDTO     `json:"members"`
	Round       *RoundDTO       `json:"round,omitempty"`
	Submissions []SubmissionDTO `json:"submissions"`
}

type MemberDTO struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Score  int    `json:"score"`
}

type RoundDTO struct {
	ID                  string `json:"id"`
	PromptText          string `json:"prompt_text"`
	State               string `json:"state"`
	WinningSubmissionID string `json:"winning_submission_id,omitempty"`
}

type SubmissionDTO struct {
	ID       string `json:"id"`
	PlayerID string `json:"player_id"`
	Text     string `json:"text"`
}

type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	RoomID uuid.UUID
	UserID model.UserID
}

// roomChannel is one observed room: its client set plus the watcher that
// feeds it. The watcher lives exactly as long as the set is non-empty.
type roomChannel struct {
	clients map[*Client]bool
	watcher *usecase_sync.Watcher
	cancel  context.CancelFunc
}

type Hub struct {
	mu sync.RWMutex

	rooms map[uuid.UUID]*roomChannel

	reader   usecase_sync.StateReader
	source   usecase_sync.EventSource
	interval time.Duration
	logger   *slog.Logger
}

func NewHub(reader usecase_sync.StateReader, source usecase_sync.EventSource, interval time.Duration) *Hub {
	return &Hub{
		rooms:    make(map[uuid.UUID]*roomChannel),
		reader:   reader,
		source:   source,
		interval: interval,
		logger:   slog.Default(),
	}
}

// RegisterClient adds the client to its room's set. The first client of a
// room starts the room's watcher; later clients get the current view pushed
// straight away instead of waiting for the next change.
func (h *Hub) RegisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.rooms[client.RoomID]
	if !ok {
		watcher := usecase_sync.NewWatcher(client.RoomID, h.reader, h.source, h.interval)
		ctx, cancel := context.WithCancel(context.Background())
		ch = &roomChannel{
			clients: make(map[*Client]bool),
			watcher: watcher,
			cancel:  cancel,
		}
		h.rooms[client.RoomID] = ch

		go watcher.Run(ctx)
		go h.relay(client.RoomID, watcher)
	} else {
		if payload, err := json.Marshal(snapshotMessage(client.RoomID, ch.watcher.View())); err == nil {
			select {
			case client.Send <- payload:
			default:
			}
		}
	}
	ch.clients[client] = true

	h.logger.Info("client registered",
		"room_id", client.RoomID.String(),
		"user_id", string(client.UserID))
}

// RemoveClient drops the client; the last one out stops the room's watcher.
func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.rooms[client.RoomID]
	if !ok {
		return
	}
	if _, ok := ch.clients[client]; !ok {
		return
	}

	delete(ch.clients, client)
	close(client.Send)
	if len(ch.clients) == 0 {
		ch.cancel()
		delete(h.rooms, client.RoomID)
	}

	h.logger.Info("client unregistered",
		"room_id", client.RoomID.String(),
		"user_id", string(client.UserID))
}

// relay forwards every view change to the room's clients. It unwinds on its
// own when the watcher's update channel closes.
func (h *Hub) relay(roomID uuid.UUID, watcher *usecase_sync.Watcher) {
	for range watcher.Updates() {
		h.broadcastToRoom(roomID, snapshotMessage(roomID, watcher.View()))
	}
}

func (h *Hub) broadcastToRoom(roomID uuid.UUID, message Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ch, ok := h.rooms[roomID]
	if !ok {
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal snapshot", "error", err)
		return
	}

	for client := range ch.clients {
		select {
		case client.Send <- payload:
		default:
			// Slow consumer; the connection's read pump will clean it up.
		}
	}
}

func (h *Hub) StartClientReading(client *Client) {
	defer func() {
		h.RemoveClient(client)
		client.Conn.Close()
	}()

	for {
		_, _, err := client.Conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

func (h *Hub) StartClientWriting(client *Client) {
	defer client.Conn.Close()

	for message := range client.Send {
		err := client.Conn.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			break
		}
	}
}

func snapshotMessage(roomID uuid.UUID, view usecase_sync.RoomView) Message {
	snap := SnapshotDTO{
		Members:     make([]MemberDTO, 0, len(view.Members)),
		Submissions: make([]SubmissionDTO, 0, len(view.Submissions)),
	}
	for _, m := range view.Members {
		snap.Members = append(snap.Members, MemberDTO{
			UserID: string(m.UserID),
			Role:   m.Role,
			Score:  m.Score,
		})
	}
	if view.Round != nil {
		r := RoundDTO{
			ID:         view.Round.ID.String(),
			PromptText: view.Round.PromptText,
			State:      view.Round.State,
		}
		if view.Round.WinningSubmissionID != nil {
			r.WinningSubmissionID = view.Round.WinningSubmissionID.String()
		}
		snap.Round = &r
	}
	for _, s := range view.Submissions {
		snap.Submissions = append(snap.Submissions, SubmissionDTO{
			ID:       s.ID.String(),
			PlayerID: string(s.PlayerID),
			Text:     s.Text,
		})
	}

	return Message{
		Type:     RoomSnapshot,
		RoomID:   roomID.String(),
		Snapshot: &snap,
	}
}
