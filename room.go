package main

import (
	"crypto/rand"
	"time"
)

// Game phases, in the order a round moves through them.
const (
	phaseLobby    = "lobby"
	phaseStudying = "studying"
	phaseDrawing  = "drawing"
	phaseReveal   = "reveal"
	phaseFinished = "finished"
)

// Room codes avoid glyphs that read ambiguously on a phone across the table.
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const roomCodeLength = 4

// Player is one roster entry. The id is the transport session id, so it
// changes when the same person reconnects under the same name.
type Player struct {
	ID     string
	Name   string
	IsHost bool
	Ready  bool
}

// Drawing is one submitted picture, immutable after creation. Name is
// captured at submission time and never re-resolved.
type Drawing struct {
	PlayerID      string
	PlayerName    string
	ImageData     string
	SubmittedAt   time.Time
	AutoSubmitted bool
}

// GameState holds everything about the active game inside a room.
type GameState struct {
	Phase         string
	CurrentDrawer string
	DrawerIndex   int
	CurrentRound  int
	MaxRounds     int
	ViewTime      int
	DrawTime      int
	Difficulty    string
	Monster       int
	UsedMonsters  []int
	Drawings      []Drawing
	TimeLeft      int

	// Timer bookkeeping, owned by the timer service. timerGen is bumped
	// on every start and cancel so late events from a dead countdown are
	// recognized and dropped.
	timerGen  uint64
	timerKind string
	timerStop chan struct{}
}

// Room is one isolated play session. It is mutated only from inside the
// hub loop, never concurrently.
type Room struct {
	Code       string
	HostID     string
	Players    []*Player
	Game       GameState
	CreatedAt  time.Time
	LastActive time.Time

	// All sessions subscribed to this room's broadcasts, including
	// viewers that never enter the roster.
	clients map[*Client]bool
}

func newRoom(code string, host *Player) *Room {
	now := time.Now()
	host.IsHost = true
	return &Room{
		Code:       code,
		HostID:     host.ID,
		Players:    []*Player{host},
		CreatedAt:  now,
		LastActive: now,
		clients:    make(map[*Client]bool),
		Game: GameState{
			Phase:      phaseLobby,
			Difficulty: difficultyAll,
		},
	}
}

func (r *Room) touch() {
	r.LastActive = time.Now()
}

func (r *Room) player(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) playerByName(name string) *Player {
	for _, p := range r.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (r *Room) removePlayer(id string) *Player {
	dst := r.Players[:0]
	var removed *Player

	for _, p := range r.Players {
		if p.ID == id {
			removed = p
			continue
		}
		dst = append(dst, p)
	}
	r.Players = dst

	return removed
}

// expectedSubmissions is everyone except the drawer.
func (r *Room) expectedSubmissions() int {
	if len(r.Players) == 0 {
		return 0
	}
	return len(r.Players) - 1
}

func (r *Room) hasDrawing(playerID string) bool {
	for _, d := range r.Game.Drawings {
		if d.PlayerID == playerID {
			return true
		}
	}
	return false
}

func (r *Room) snapshot() RoomSnapshot {
	players := make([]PlayerInfo, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, PlayerInfo{
			ID:     p.ID,
			Name:   p.Name,
			IsHost: p.IsHost,
			Ready:  p.Ready,
		})
	}

	return RoomSnapshot{
		Code:      r.Code,
		HostID:    r.HostID,
		Players:   players,
		CreatedAt: r.CreatedAt,
		Game: GameSnapshot{
			Phase:          r.Game.Phase,
			CurrentDrawer:  r.Game.CurrentDrawer,
			CurrentRound:   r.Game.CurrentRound,
			MaxRounds:      r.Game.MaxRounds,
			ViewTime:       r.Game.ViewTime,
			DrawTime:       r.Game.DrawTime,
			Difficulty:     r.Game.Difficulty,
			TimeLeft:       r.Game.TimeLeft,
			SubmittedCount: len(r.Game.Drawings),
		},
	}
}

func (r *Room) drawingInfos() []DrawingInfo {
	infos := make([]DrawingInfo, 0, len(r.Game.Drawings))
	for _, d := range r.Game.Drawings {
		infos = append(infos, DrawingInfo{
			PlayerID:      d.PlayerID,
			PlayerName:    d.PlayerName,
			ImageData:     d.ImageData,
			SubmittedAt:   d.SubmittedAt,
			AutoSubmitted: d.AutoSubmitted,
		})
	}
	return infos
}

// randomInt returns a uniform value in [0, n) from crypto/rand, n <= 256.
func randomInt(n int) int {
	var b [1]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		// Reject the tail of the byte range to keep the draw uniform.
		if int(b[0]) < 256-(256%n) {
			return int(b[0]) % n
		}
	}
}

// newRoomCode generates a crypto-random room code and ensures it doesn't
// collide with any live room.
func newRoomCode(live map[string]*Room) string {
	for {
		out := make([]byte, roomCodeLength)
		for i := range out {
			out[i] = roomCodeAlphabet[randomInt(len(roomCodeAlphabet))]
		}
		code := string(out)

		if _, exists := live[code]; !exists {
			return code
		}
	}
}
