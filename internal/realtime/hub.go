package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/engine/rpgtoolkit"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/orchestrators/dice"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	fulfillTimeout = 5 * time.Second
)

// Fulfiller resolves roll windows; dice.Service satisfies it
type Fulfiller interface {
	Fulfill(ctx context.Context, input *dice.FulfillInput) (*dice.FulfillOutput, error)
}

// HubConfig holds the hub configuration
type HubConfig struct {
	Logger *zap.Logger
	// CheckOrigin defaults to accepting every origin
	CheckOrigin func(r *http.Request) bool
}

// Hub tracks WebSocket clients per campaign
type Hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

var _ dice.Publisher = (*Hub)(nil)

// client is one connection. Writes are serialized by mu.
type client struct {
	conn       *websocket.Conn
	campaignID string
	playerID   string

	mu     sync.Mutex
	closed bool
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.Unavailable("connection closed")
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *client) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.Unavailable("connection closed")
	}
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	_ = c.conn.Close()
}

// NewHub creates an empty hub
func NewHub(cfg *HubConfig) *Hub {
	h := &Hub{
		logger:  zap.NewNop(),
		clients: make(map[string]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	if cfg != nil {
		if cfg.Logger != nil {
			h.logger = cfg.Logger
		}
		if cfg.CheckOrigin != nil {
			h.upgrader.CheckOrigin = cfg.CheckOrigin
		}
	}
	return h
}

// Routes registers the WebSocket endpoint on r
func (h *Hub) Routes(r *mux.Router, f Fulfiller) {
	r.HandleFunc("/ws/campaigns/{campaignID}", h.Handler(f)).Methods(http.MethodGet)
}

// Handler upgrades requests for /ws/campaigns/{campaignID}. The optional
// player_id query parameter routes manual roll requests to the connection.
func (h *Hub) Handler(f Fulfiller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID := mux.Vars(r)["campaignID"]
		if campaignID == "" {
			http.Error(w, "campaign ID is required", http.StatusBadRequest)
			return
		}

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		c := &client{
			conn:       conn,
			campaignID: campaignID,
			playerID:   r.URL.Query().Get("player_id"),
		}
		h.add(c)
		h.logger.Info("websocket client connected",
			zap.String("campaign_id", c.campaignID),
			zap.String("player_id", c.playerID),
		)

		done := make(chan struct{})
		go h.keepAlive(c, done)
		h.read(c, f)
		close(done)

		h.remove(c)
		c.close()
		h.logger.Info("websocket client disconnected",
			zap.String("campaign_id", c.campaignID),
			zap.String("player_id", c.playerID),
		)
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.campaignID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.campaignID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.campaignID]
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.campaignID)
	}
}

// Clients reports how many connections a campaign has
func (h *Hub) Clients(campaignID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[campaignID])
}

func (h *Hub) keepAlive(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				c.close()
				return
			}
		}
	}
}

// read handles inbound messages until the connection fails
func (h *Hub) read(c *client, f Fulfiller) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", zap.String("campaign_id", c.campaignID), zap.Error(err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.reply(c, TypeError, ErrorMessage{Message: "malformed message"})
			continue
		}
		switch env.Type {
		case TypeRollResult:
			h.submit(c, f, env.Payload)
		default:
			h.reply(c, TypeError, ErrorMessage{Message: "unknown message type " + env.Type})
		}
	}
}

func (h *Hub) submit(c *client, f Fulfiller, payload json.RawMessage) {
	sub, err := decodeSubmission(payload)
	if err != nil || sub.WindowID == "" {
		h.reply(c, TypeError, ErrorMessage{Message: "roll result needs a windowId"})
		return
	}
	if f == nil {
		h.reply(c, TypeError, ErrorMessage{Message: "rolls are not accepted here"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), fulfillTimeout)
	defer cancel()
	out, err := f.Fulfill(ctx, &dice.FulfillInput{
		WindowID: sub.WindowID,
		Total:    sub.Total,
		Values:   sub.Values,
		Scope:    &dice.Submitter{CampaignID: c.campaignID, PlayerID: c.playerID},
	})
	if err != nil {
		h.reply(c, TypeError, ErrorMessage{Message: errors.GetMessage(err)})
		return
	}
	h.reply(c, TypeRollAck, RollAck{WindowID: sub.WindowID, Fulfilled: out.Fulfilled, Total: out.Result.Total})
}

func (h *Hub) reply(c *client, msgType string, payload any) {
	data, err := encode(msgType, payload)
	if err != nil {
		h.logger.Error("failed to encode reply", zap.String("type", msgType), zap.Error(err))
		return
	}
	if err := c.write(data); err != nil {
		h.logger.Debug("failed to write reply", zap.String("campaign_id", c.campaignID), zap.Error(err))
	}
}

// recipients returns the campaign's clients. A non-empty playerID limits
// the result to that player's connections.
func (h *Hub) recipients(campaignID, playerID string) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*client, 0, len(h.clients[campaignID]))
	for c := range h.clients[campaignID] {
		if playerID == "" || c.playerID == playerID {
			out = append(out, c)
		}
	}
	return out
}

func (h *Hub) broadcast(targets []*client, data []byte) int {
	delivered := 0
	for _, c := range targets {
		if err := c.write(data); err != nil {
			h.logger.Debug("dropping client after failed write",
				zap.String("campaign_id", c.campaignID),
				zap.Error(err),
			)
			c.close()
			continue
		}
		delivered++
	}
	return delivered
}

// PublishRollRequest sends req to the campaign's clients. Manual requests
// with a player go only to that player's connections. Having nobody
// connected is not an error; the window timeout covers it.
func (h *Hub) PublishRollRequest(_ context.Context, req *entities.RollRequest) error {
	data, err := encode(TypeRollRequest, req)
	if err != nil {
		return errors.Wrapf(err, "failed to encode roll request")
	}
	playerID := ""
	if req.Manual {
		playerID = req.PlayerID
	}
	delivered := h.broadcast(h.recipients(req.CampaignID, playerID), data)
	h.logger.Debug("roll request sent",
		zap.String("campaign_id", req.CampaignID),
		zap.String("batch_id", req.BatchID),
		zap.Int("clients", delivered),
	)
	return nil
}

// HandleCombatEvent forwards a combat event to the campaign's clients
func (h *Hub) HandleCombatEvent(_ context.Context, event events.Event) error {
	msg := CombatEventMessage{
		Type:        event.Type(),
		CampaignID:  rpgtoolkit.StringValue(event, rpgtoolkit.KeyCampaignID),
		EncounterID: rpgtoolkit.StringValue(event, rpgtoolkit.KeyEncounterID),
		Summary:     rpgtoolkit.StringValue(event, rpgtoolkit.KeySummary),
	}
	if msg.CampaignID == "" {
		return nil
	}
	data, err := encode(TypeCombatEvent, msg)
	if err != nil {
		return errors.Wrapf(err, "failed to encode combat event")
	}
	h.broadcast(h.recipients(msg.CampaignID, ""), data)
	return nil
}

// SubscribeTo registers the hub for every combat event on bus
func (h *Hub) SubscribeTo(bus events.EventBus) {
	for _, eventType := range rpgtoolkit.CombatEventTypes {
		bus.SubscribeFunc(eventType, 0, h.HandleCombatEvent)
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	all := make([]*client, 0)
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.clients = make(map[string]map[*client]struct{})
	h.mu.Unlock()

	for _, c := range all {
		c.close()
	}
}
