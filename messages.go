package main

import "time"

// Messages coming from clients. A single envelope struct, discriminated
// by Type; unused fields are simply left empty by the client.
type ClientMessage struct {
	Type         string `json:"type"`                   // "create-room", "join-room", "leave-room", "start-game", "submit-drawing", "auto-submit-response", "next-round", "finish-game", "get-room-state"
	PlayerName   string `json:"playerName,omitempty"`   // create-room / join-room / leave-room
	RoomCode     string `json:"roomCode,omitempty"`     // join-room / leave-room
	IsViewer     bool   `json:"isViewer,omitempty"`     // join-room
	Reconnecting bool   `json:"reconnecting,omitempty"` // join-room
	ViewTime     int    `json:"viewTime,omitempty"`     // start-game, seconds
	DrawTime     int    `json:"drawTime,omitempty"`     // start-game, seconds
	Difficulty   string `json:"difficulty,omitempty"`   // start-game
	MaxRounds    int    `json:"maxRounds,omitempty"`    // start-game
	ImageData    string `json:"imageData,omitempty"`    // submit-drawing / auto-submit-response, opaque blob
}

// PlayerInfo is the roster entry shape used inside room snapshots.
type PlayerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
	Ready  bool   `json:"ready"`
}

// GameSnapshot is the public view of a room's game state. The current
// monster id is deliberately absent; only the drawer learns it, via
// MonsterRevealedMessage, and everyone else only at reveal time.
type GameSnapshot struct {
	Phase          string `json:"phase"`
	CurrentDrawer  string `json:"currentDrawer,omitempty"`
	CurrentRound   int    `json:"currentRound"`
	MaxRounds      int    `json:"maxRounds"`
	ViewTime       int    `json:"viewTime"`
	DrawTime       int    `json:"drawTime"`
	Difficulty     string `json:"difficulty"`
	TimeLeft       int    `json:"timeLeft"`
	SubmittedCount int    `json:"submittedCount"`
}

// RoomSnapshot is the public view of a room.
type RoomSnapshot struct {
	Code      string       `json:"code"`
	HostID    string       `json:"hostId"`
	Players   []PlayerInfo `json:"players"`
	CreatedAt time.Time    `json:"createdAt"`
	Game      GameSnapshot `json:"game"`
}

// DrawingInfo is one submitted drawing as shown at reveal.
type DrawingInfo struct {
	PlayerID      string    `json:"playerId"`
	PlayerName    string    `json:"playerName"`
	ImageData     string    `json:"imageData"`
	SubmittedAt   time.Time `json:"submittedAt"`
	AutoSubmitted bool      `json:"autoSubmitted"`
}

// Sent to the creating client after create-room.
type RoomCreatedMessage struct {
	Type     string       `json:"type"` // "room-created"
	Success  bool         `json:"success"`
	RoomCode string       `json:"roomCode"`
	Room     RoomSnapshot `json:"room"`
}

// Sent to the joining client after join-room, success or not.
type RoomJoinedMessage struct {
	Type    string        `json:"type"` // "room-joined"
	Success bool          `json:"success"`
	Room    *RoomSnapshot `json:"room,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Broadcast when a player joins a room.
type PlayerJoinedMessage struct {
	Type   string       `json:"type"` // "player-joined"
	Player PlayerInfo   `json:"player"`
	Room   RoomSnapshot `json:"room"`
}

// Broadcast when a player leaves a room that survives the departure.
type PlayerLeftMessage struct {
	Type           string       `json:"type"` // "player-left"
	Room           RoomSnapshot `json:"room"`
	LeftPlayerID   string       `json:"leftPlayerId"`
	LeftPlayerName string       `json:"leftPlayerName"`
}

// Broadcast to remaining sessions when the host explicitly ends the room.
type HostLeftMessage struct {
	Type     string `json:"type"` // "host-left-room-closed"
	Message  string `json:"message"`
	HostName string `json:"hostName"`
}

// Sent to the departing client after an explicit leave-room.
type LeftRoomMessage struct {
	Type    string `json:"type"` // "left-room"
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Broadcast when the host starts the game.
type GameStartedMessage struct {
	Type      string       `json:"type"` // "game-started"
	GameState GameSnapshot `json:"gameState"`
	Room      RoomSnapshot `json:"room"`
}

// Sent to the drawer only, with the monster to study. Must never reach
// any other session.
type MonsterRevealedMessage struct {
	Type     string `json:"type"` // "monster-revealed"
	Monster  int    `json:"monster"`
	ViewTime int    `json:"viewTime"`
}

// Broadcast on every phase transition. The drawing set and original
// monster are populated only when entering reveal.
type PhaseChangedMessage struct {
	Type            string        `json:"type"` // "phase-changed"
	Phase           string        `json:"phase"`
	GameState       GameSnapshot  `json:"gameState"`
	Room            RoomSnapshot  `json:"room"`
	AllDrawings     []DrawingInfo `json:"allDrawings,omitempty"`
	OriginalMonster int           `json:"originalMonster,omitempty"`
	EarlyEnd        bool          `json:"earlyEnd,omitempty"`
}

// Broadcast once per countdown tick.
type TimerUpdateMessage struct {
	Type     string `json:"type"` // "timer-update"
	TimeLeft int    `json:"timeLeft"`
	Phase    string `json:"phase"`
}

// Broadcast after each accepted submission.
type DrawingSubmittedMessage struct {
	Type           string `json:"type"` // "drawing-submitted"
	PlayerName     string `json:"playerName"`
	TotalSubmitted int    `json:"totalSubmitted"`
	TotalExpected  int    `json:"totalExpected"`
}

// Sent to a single client when its submission is rejected.
type DrawingErrorMessage struct {
	Type  string `json:"type"` // "drawing-error"
	Error string `json:"error"`
}

// Sent to a single client on validation or authorization failure, or
// broadcast room-wide for fatal round errors (no resolvable drawer).
type GameErrorMessage struct {
	Type  string `json:"type"` // "game-error"
	Error string `json:"error"`
}

// Sent to each non-drawer without a submission when the drawing timer
// expires, prompting the client to send whatever is on its canvas.
type AutoSubmitMessage struct {
	Type   string `json:"type"` // "auto-submit-drawing"
	TimeUp bool   `json:"timeUp"`
}

// Broadcast when the host finishes the game.
type GameFinishedMessage struct {
	Type      string       `json:"type"` // "game-finished"
	Room      RoomSnapshot `json:"room"`
	GameState GameSnapshot `json:"gameState"`
}

// Reply to get-room-state.
type RoomStateMessage struct {
	Type     string        `json:"type"` // "room-state"
	Room     *RoomSnapshot `json:"room,omitempty"`
	RoomCode string        `json:"roomCode,omitempty"`
	Error    string        `json:"error,omitempty"`
}
