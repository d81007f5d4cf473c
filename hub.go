package main

import (
	"time"
)

// roomSummary is the read-only shape served by the debug listing.
type roomSummary struct {
	Code    string `json:"code"`
	Players int    `json:"players"`
	Viewers int    `json:"viewers"`
	Phase   string `json:"phase"`
	Round   int    `json:"round"`
	Age     string `json:"age"`
	Idle    string `json:"idle"`
}

type cleanupRequest struct {
	code string // empty means "evict everything idle right now"
	resp chan int
}

// Hub owns every room and every connected session. All mutation happens
// inside the single run loop, one event at a time, so handlers never
// interleave on the same room and no locking is needed.
type Hub struct {
	cfg   *Config
	rooms map[string]*Room

	clients map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	inbound     chan inboundMessage
	timerEvents chan timerEvent

	summariesReq chan chan []roomSummary
	cleanupReq   chan cleanupRequest
}

func newHub(cfg *Config) *Hub {
	return &Hub{
		cfg:          cfg,
		rooms:        make(map[string]*Room),
		clients:      make(map[*Client]bool),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		inbound:      make(chan inboundMessage, 64),
		timerEvents:  make(chan timerEvent, 64),
		summariesReq: make(chan chan []roomSummary, 8),
		cleanupReq:   make(chan cleanupRequest, 8),
	}
}

func (h *Hub) run() {
	sweep := time.NewTicker(h.cfg.sweepInterval)
	defer sweep.Stop()

	for {
		select {
		case c := <-h.register:
			h.clients[c] = true

		case c := <-h.unregister:
			h.handleDisconnect(c)

		case in := <-h.inbound:
			h.dispatch(in.client, in.msg)

		case ev := <-h.timerEvents:
			h.handleTimerEvent(ev)

		case <-sweep.C:
			h.sweepIdleRooms()

		case resp := <-h.summariesReq:
			resp <- h.roomSummaries()

		case req := <-h.cleanupReq:
			h.handleCleanup(req)
		}
	}
}

func (h *Hub) dispatch(c *Client, msg ClientMessage) {
	switch msg.Type {
	case "create-room":
		h.handleCreateRoom(c, msg)
	case "join-room":
		h.handleJoinRoom(c, msg)
	case "leave-room":
		h.handleLeaveRoom(c, true)
	case "start-game":
		h.handleStartGame(c, msg)
	case "submit-drawing":
		h.handleSubmitDrawing(c, msg, false)
	case "auto-submit-response":
		h.handleSubmitDrawing(c, msg, true)
	case "next-round":
		h.handleNextRound(c)
	case "finish-game":
		h.handleFinishGame(c)
	case "get-room-state":
		h.handleGetRoomState(c)
	default:
		// ignore unknown types
	}
}

// sendTo delivers to a single session, evicting it if its send buffer is
// full rather than letting one slow reader stall the loop. Sessions
// already dropped are skipped; their send channel is closed.
func (h *Hub) sendTo(c *Client, msg any) {
	if !h.clients[c] {
		return
	}

	select {
	case c.send <- msg:
	default:
		h.dropClient(c)
	}
}

// dropClient severs the session's send path. The roster side of the
// departure arrives later through unregister, once the read pump notices
// the closed connection.
func (h *Hub) dropClient(c *Client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)

	if room, ok := h.rooms[c.roomCode]; ok {
		delete(room.clients, c)
	}
}

// broadcast delivers to every session subscribed to the room, viewers
// included, in the order the state machine produced the messages.
func (h *Hub) broadcast(r *Room, msg any) {
	for client := range r.clients {
		h.sendTo(client, msg)
	}
}

// clientByPlayer finds the subscribed session carrying a player id.
func (r *Room) clientByPlayer(playerID string) *Client {
	for client := range r.clients {
		if client.id == playerID {
			return client
		}
	}
	return nil
}

func (h *Hub) sendGameError(c *Client, code string) {
	h.sendTo(c, GameErrorMessage{Type: "game-error", Error: code})
}

func (h *Hub) sendDrawingError(c *Client, code string) {
	h.sendTo(c, DrawingErrorMessage{Type: "drawing-error", Error: code})
}

// roomByPlayer scans live rooms for the one holding a player id. Linear,
// which is fine at the tens-of-rooms scale this server runs at.
func (h *Hub) roomByPlayer(playerID string) (string, *Room) {
	for code, room := range h.rooms {
		if room.player(playerID) != nil {
			return code, room
		}
	}
	return "", nil
}

func (h *Hub) handleDisconnect(c *Client) {
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}

	h.handleLeaveRoom(c, false)
}

func (h *Hub) handleCreateRoom(c *Client, msg ClientMessage) {
	name := msg.PlayerName
	if name == "" || len(name) > h.cfg.maxNameLength {
		h.sendGameError(c, errInvalidName)
		return
	}

	// A session only ever inhabits one room.
	if c.roomCode != "" {
		h.handleLeaveRoom(c, true)
	}

	code := newRoomCode(h.rooms)
	room := newRoom(code, &Player{ID: c.id, Name: name})
	h.rooms[code] = room

	room.clients[c] = true
	c.roomCode = code
	c.viewer = false

	logf(h.cfg, "ROOMS: %q created room %s", name, code)

	h.sendTo(c, RoomCreatedMessage{
		Type:     "room-created",
		Success:  true,
		RoomCode: code,
		Room:     room.snapshot(),
	})
}

func (h *Hub) handleJoinRoom(c *Client, msg ClientMessage) {
	room, ok := h.rooms[msg.RoomCode]
	if !ok {
		h.sendTo(c, RoomJoinedMessage{Type: "room-joined", Error: errRoomNotFound})
		return
	}

	room.touch()

	// A session only ever inhabits one room; joining another leaves the
	// current one first, so its player id can't sit in two rosters.
	if c.roomCode != "" && c.roomCode != room.Code {
		h.handleLeaveRoom(c, true)
	}

	// Viewers subscribe to broadcasts without touching the roster and
	// never count toward capacity.
	if msg.IsViewer {
		room.clients[c] = true
		c.roomCode = room.Code
		c.viewer = true

		snap := room.snapshot()
		h.sendTo(c, RoomJoinedMessage{Type: "room-joined", Success: true, Room: &snap})
		return
	}

	name := msg.PlayerName
	if name == "" || len(name) > h.cfg.maxNameLength {
		h.sendTo(c, RoomJoinedMessage{Type: "room-joined", Error: errInvalidName})
		return
	}

	// A reconnecting player with a known name takes over its old roster
	// entry in place: host flag, position, and drawer duty all follow
	// the rebind to the new session id.
	if msg.Reconnecting {
		if p := room.playerByName(name); p != nil {
			old := p.ID
			p.ID = c.id
			if room.HostID == old {
				room.HostID = c.id
			}
			if room.Game.CurrentDrawer == old {
				room.Game.CurrentDrawer = c.id
			}

			room.clients[c] = true
			c.roomCode = room.Code
			c.viewer = false

			logf(h.cfg, "ROOMS: %q reconnected to room %s", name, room.Code)

			snap := room.snapshot()
			h.sendTo(c, RoomJoinedMessage{Type: "room-joined", Success: true, Room: &snap})
			h.broadcast(room, PlayerJoinedMessage{
				Type:   "player-joined",
				Player: PlayerInfo{ID: p.ID, Name: p.Name, IsHost: p.IsHost, Ready: p.Ready},
				Room:   snap,
			})
			return
		}
	}

	if room.playerByName(name) != nil {
		h.sendTo(c, RoomJoinedMessage{Type: "room-joined", Error: errNameTaken})
		return
	}
	if len(room.Players) >= h.cfg.maxPlayers {
		h.sendTo(c, RoomJoinedMessage{Type: "room-joined", Error: errRoomFull})
		return
	}

	player := &Player{ID: c.id, Name: name}
	room.Players = append(room.Players, player)

	room.clients[c] = true
	c.roomCode = room.Code
	c.viewer = false

	logf(h.cfg, "ROOMS: %q joined room %s", name, room.Code)

	snap := room.snapshot()
	h.sendTo(c, RoomJoinedMessage{Type: "room-joined", Success: true, Room: &snap})
	h.broadcast(room, PlayerJoinedMessage{
		Type:   "player-joined",
		Player: PlayerInfo{ID: player.ID, Name: player.Name},
		Room:   snap,
	})
}

// handleLeaveRoom covers both the explicit leave-room intent and abrupt
// disconnects. Explicit departure by the host ends the whole room;
// silent departure hands the host role down the roster instead.
func (h *Hub) handleLeaveRoom(c *Client, explicit bool) {
	room, ok := h.rooms[c.roomCode]
	if !ok {
		// Fall back to a roster scan in case the session's room binding
		// was lost before the disconnect arrived.
		_, room = h.roomByPlayer(c.id)
		if room == nil {
			return
		}
	}

	delete(room.clients, c)
	c.roomCode = ""

	if c.viewer {
		c.viewer = false
		if explicit {
			h.sendTo(c, LeftRoomMessage{Type: "left-room", Success: true})
		}
		return
	}

	removed := room.removePlayer(c.id)
	if removed == nil {
		return
	}

	room.touch()
	logf(h.cfg, "ROOMS: %q left room %s", removed.Name, room.Code)

	if explicit {
		h.sendTo(c, LeftRoomMessage{Type: "left-room", Success: true})
	}

	if len(room.Players) == 0 {
		h.teardownRoom(room.Code)
		return
	}

	if removed.IsHost {
		if explicit {
			h.broadcast(room, HostLeftMessage{
				Type:     "host-left-room-closed",
				Message:  "The host ended the session.",
				HostName: removed.Name,
			})
			h.teardownRoom(room.Code)
			return
		}

		// Silent host disconnect: first remaining player inherits.
		next := room.Players[0]
		next.IsHost = true
		room.HostID = next.ID
		logf(h.cfg, "ROOMS: %q inherited room %s", next.Name, room.Code)
	}

	h.broadcast(room, PlayerLeftMessage{
		Type:           "player-left",
		Room:           room.snapshot(),
		LeftPlayerID:   removed.ID,
		LeftPlayerName: removed.Name,
	})

	if removed.ID == room.Game.CurrentDrawer {
		h.drawerLost(room)
	}
}

// teardownRoom cancels the room's countdown before dropping it, then
// unbinds every remaining session. Dropping a room with a live timer
// handle would leave the countdown firing into a dead map entry.
func (h *Hub) teardownRoom(code string) {
	room, ok := h.rooms[code]
	if !ok {
		return
	}

	h.cancelTimer(room)
	delete(h.rooms, code)

	for client := range room.clients {
		client.roomCode = ""
		client.viewer = false
		delete(room.clients, client)
	}

	logf(h.cfg, "ROOMS: Room %s torn down", code)
}

func (h *Hub) sweepIdleRooms() int {
	cutoff := time.Now().Add(-h.cfg.roomTimeout)
	evicted := 0

	for code, room := range h.rooms {
		if room.LastActive.Before(cutoff) {
			logf(h.cfg, "ROOMS: Room %s evicted after %s idle", code, time.Since(room.LastActive).Round(time.Second))
			h.teardownRoom(code)
			evicted++
		}
	}

	return evicted
}

func (h *Hub) roomSummaries() []roomSummary {
	summaries := make([]roomSummary, 0, len(h.rooms))
	for code, room := range h.rooms {
		viewers := 0
		for client := range room.clients {
			if client.viewer {
				viewers++
			}
		}

		summaries = append(summaries, roomSummary{
			Code:    code,
			Players: len(room.Players),
			Viewers: viewers,
			Phase:   room.Game.Phase,
			Round:   room.Game.CurrentRound,
			Age:     time.Since(room.CreatedAt).Round(time.Second).String(),
			Idle:    time.Since(room.LastActive).Round(time.Second).String(),
		})
	}
	return summaries
}

func (h *Hub) handleCleanup(req cleanupRequest) {
	if req.code == "" {
		req.resp <- h.sweepIdleRooms()
		return
	}

	if _, ok := h.rooms[req.code]; !ok {
		req.resp <- 0
		return
	}

	h.teardownRoom(req.code)
	req.resp <- 1
}

func (h *Hub) handleGetRoomState(c *Client) {
	room, ok := h.rooms[c.roomCode]
	if !ok {
		h.sendTo(c, RoomStateMessage{Type: "room-state", Error: errRoomNotFound})
		return
	}

	snap := room.snapshot()
	h.sendTo(c, RoomStateMessage{Type: "room-state", Room: &snap, RoomCode: room.Code})
}
