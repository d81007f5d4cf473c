package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig uses an hour-long tick interval so countdown goroutines
// never fire on their own; tests drive expiry by hand via expireTimer.
func testConfig() *Config {
	return &Config{
		maxNameLength: 20,
		maxPlayers:    8,
		graceDelay:    2 * time.Second,
		roomTimeout:   30 * time.Minute,
		sweepInterval: 10 * time.Minute,
		tickInterval:  time.Hour,
	}
}

func newTestHub() *Hub {
	return newHub(testConfig())
}

func newTestClient(h *Hub, id string) *Client {
	c := &Client{
		send: make(chan any, 64),
		id:   id,
	}
	h.clients[c] = true
	return c
}

// collect drains everything currently buffered for a client.
func collect(c *Client) []any {
	var out []any
	for {
		select {
		case m := <-c.send:
			out = append(out, m)
		default:
			return out
		}
	}
}

func findMessage[T any](msgs []any) (T, bool) {
	for _, m := range msgs {
		if typed, ok := m.(T); ok {
			return typed, true
		}
	}
	var zero T
	return zero, false
}

// expireTimer feeds the hub the done event its live countdown would
// eventually produce.
func expireTimer(h *Hub, r *Room) {
	h.handleTimerEvent(timerEvent{
		roomCode: r.Code,
		gen:      r.Game.timerGen,
		timeLeft: 0,
		done:     true,
	})
}

// createRoom is shorthand for the create-room intent, returning the room.
func createRoom(t *testing.T, h *Hub, c *Client, name string) *Room {
	t.Helper()

	h.handleCreateRoom(c, ClientMessage{Type: "create-room", PlayerName: name})

	created, ok := findMessage[RoomCreatedMessage](collect(c))
	require.True(t, ok, "expected room-created reply")
	require.True(t, created.Success)

	room, ok := h.rooms[created.RoomCode]
	require.True(t, ok)
	return room
}

func joinRoom(t *testing.T, h *Hub, c *Client, code, name string) {
	t.Helper()

	h.handleJoinRoom(c, ClientMessage{Type: "join-room", RoomCode: code, PlayerName: name})

	joined, ok := findMessage[RoomJoinedMessage](collect(c))
	require.True(t, ok, "expected room-joined reply")
	require.True(t, joined.Success, "join failed: %s", joined.Error)
}

func TestCreateRoom(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(h, "alice-session")

	room := createRoom(t, h, alice, "Alice")

	assert.Len(t, room.Code, roomCodeLength)
	for _, ch := range room.Code {
		assert.Contains(t, roomCodeAlphabet, string(ch))
	}

	require.Len(t, room.Players, 1)
	assert.Equal(t, "Alice", room.Players[0].Name)
	assert.True(t, room.Players[0].IsHost)
	assert.Equal(t, "alice-session", room.HostID)
	assert.Equal(t, phaseLobby, room.Game.Phase)
	assert.Equal(t, room.Code, alice.roomCode)
}

func TestJoinRoom(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(h, "alice-session")
	bob := newTestClient(h, "bob-session")

	room := createRoom(t, h, alice, "Alice")

	h.handleJoinRoom(bob, ClientMessage{Type: "join-room", RoomCode: room.Code, PlayerName: "Bob"})

	joined, ok := findMessage[RoomJoinedMessage](collect(bob))
	require.True(t, ok)
	assert.True(t, joined.Success)
	require.NotNil(t, joined.Room)
	assert.Len(t, joined.Room.Players, 2)

	notice, ok := findMessage[PlayerJoinedMessage](collect(alice))
	require.True(t, ok)
	assert.Equal(t, "Bob", notice.Player.Name)
	assert.Len(t, notice.Room.Players, 2)
	assert.False(t, notice.Player.IsHost)
}

func TestJoinRoomErrors(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(h, "alice-session")
	room := createRoom(t, h, alice, "Alice")

	tests := []struct {
		name string
		msg  ClientMessage
		want string
	}{
		{"unknown code", ClientMessage{RoomCode: "ZZZZ", PlayerName: "Bob"}, errRoomNotFound},
		{"taken name", ClientMessage{RoomCode: room.Code, PlayerName: "Alice"}, errNameTaken},
		{"empty name", ClientMessage{RoomCode: room.Code}, errInvalidName},
		{"overlong name", ClientMessage{RoomCode: room.Code, PlayerName: "ThisNameIsMuchTooLongToAllow"}, errInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(h, "session-"+tt.name)
			h.handleJoinRoom(c, tt.msg)

			joined, ok := findMessage[RoomJoinedMessage](collect(c))
			require.True(t, ok)
			assert.False(t, joined.Success)
			assert.Equal(t, tt.want, joined.Error)
		})
	}

	assert.Len(t, room.Players, 1, "failed joins must not touch the roster")
}

func TestJoinRoomFull(t *testing.T) {
	h := newTestHub()
	h.cfg.maxPlayers = 3

	alice := newTestClient(h, "alice-session")
	room := createRoom(t, h, alice, "Alice")

	joinRoom(t, h, newTestClient(h, "s2"), room.Code, "Bob")
	joinRoom(t, h, newTestClient(h, "s3"), room.Code, "Carol")

	late := newTestClient(h, "s4")
	h.handleJoinRoom(late, ClientMessage{RoomCode: room.Code, PlayerName: "Dave"})

	joined, ok := findMessage[RoomJoinedMessage](collect(late))
	require.True(t, ok)
	assert.False(t, joined.Success)
	assert.Equal(t, errRoomFull, joined.Error)
	assert.Len(t, room.Players, 3)
}

func TestViewerJoin(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(h, "alice-session")
	room := createRoom(t, h, alice, "Alice")

	h.cfg.maxPlayers = 2
	joinRoom(t, h, newTestClient(h, "s2"), room.Code, "Bob")

	// Full roster, but viewers don't count toward capacity.
	viewer := newTestClient(h, "viewer-session")
	h.handleJoinRoom(viewer, ClientMessage{RoomCode: room.Code, IsViewer: true})

	joined, ok := findMessage[RoomJoinedMessage](collect(viewer))
	require.True(t, ok)
	assert.True(t, joined.Success)
	assert.Len(t, room.Players, 2, "viewer must not enter the roster")
	assert.True(t, room.clients[viewer], "viewer must be subscribed")

	// Viewers receive room broadcasts.
	h.broadcast(room, GameErrorMessage{Type: "game-error", Error: "test"})
	_, ok = findMessage[GameErrorMessage](collect(viewer))
	assert.True(t, ok)
}

func TestReconnectRebindsPlayer(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(h, "alice-session-1")
	room := createRoom(t, h, alice, "Alice")
	joinRoom(t, h, newTestClient(h, "bob-session"), room.Code, "Bob")

	// Alice's first session dies silently; she was host, so Bob would
	// inherit if she were removed, but she reconnects instead under a
	// fresh session id before any removal.
	again := newTestClient(h, "alice-session-2")
	h.handleJoinRoom(again, ClientMessage{
		RoomCode:     room.Code,
		PlayerName:   "Alice",
		Reconnecting: true,
	})

	joined, ok := findMessage[RoomJoinedMessage](collect(again))
	require.True(t, ok)
	assert.True(t, joined.Success)

	require.Len(t, room.Players, 2)
	assert.Equal(t, "alice-session-2", room.Players[0].ID, "roster position preserved")
	assert.True(t, room.Players[0].IsHost, "host flag follows the rebind")
	assert.Equal(t, "alice-session-2", room.HostID)

	// The stale session disconnecting later must not disturb the roster.
	h.handleDisconnect(alice)
	assert.Len(t, room.Players, 2)
}

func TestJoinSecondRoomLeavesFirst(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(h, "alice-session")
	roomA := createRoom(t, h, alice, "Alice")
	bob := newTestClient(h, "bob-session")
	joinRoom(t, h, bob, roomA.Code, "Bob")

	carol := newTestClient(h, "carol-session")
	roomB := createRoom(t, h, carol, "Carol")

	joinRoom(t, h, bob, roomB.Code, "Bob")

	assert.Nil(t, roomA.player("bob-session"), "old roster entry must go")
	assert.False(t, roomA.clients[bob], "old subscription must go")
	require.NotNil(t, roomB.player("bob-session"))

	code, found := h.roomByPlayer("bob-session")
	require.NotNil(t, found)
	assert.Equal(t, roomB.Code, code)

	left, ok := findMessage[PlayerLeftMessage](collect(alice))
	require.True(t, ok)
	assert.Equal(t, "Bob", left.LeftPlayerName)

	// Disconnecting now touches only the room Bob actually inhabits.
	h.handleDisconnect(bob)
	assert.Nil(t, roomB.player("bob-session"))
	assert.Len(t, roomA.Players, 1)
}

func TestHostSilentDisconnectPromotesNext(t *testing.T) {
	h := newTestHub()
	carol := newTestClient(h, "carol-session")
	room := createRoom(t, h, carol, "Carol")
	dave := newTestClient(h, "dave-session")
	joinRoom(t, h, dave, room.Code, "Dave")

	h.handleDisconnect(carol)

	require.Contains(t, h.rooms, room.Code, "room persists")
	require.Len(t, room.Players, 1)
	assert.Equal(t, "Dave", room.Players[0].Name)
	assert.True(t, room.Players[0].IsHost)
	assert.Equal(t, "dave-session", room.HostID)

	left, ok := findMessage[PlayerLeftMessage](collect(dave))
	require.True(t, ok)
	assert.Equal(t, "Carol", left.LeftPlayerName)
}

func TestHostExplicitLeaveClosesRoom(t *testing.T) {
	h := newTestHub()
	carol := newTestClient(h, "carol-session")
	room := createRoom(t, h, carol, "Carol")
	dave := newTestClient(h, "dave-session")
	joinRoom(t, h, dave, room.Code, "Dave")

	h.handleLeaveRoom(carol, true)

	closed, ok := findMessage[HostLeftMessage](collect(dave))
	require.True(t, ok)
	assert.Equal(t, "Carol", closed.HostName)

	assert.NotContains(t, h.rooms, room.Code)
	assert.Empty(t, dave.roomCode, "remaining session unbound from the dead room")

	// Subsequent lookups for the code must fail.
	late := newTestClient(h, "late-session")
	h.handleJoinRoom(late, ClientMessage{RoomCode: room.Code, PlayerName: "Erin"})
	joined, ok := findMessage[RoomJoinedMessage](collect(late))
	require.True(t, ok)
	assert.Equal(t, errRoomNotFound, joined.Error)
}

func TestLastPlayerLeavingClosesRoom(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(h, "alice-session")
	room := createRoom(t, h, alice, "Alice")

	h.handleDisconnect(alice)

	assert.NotContains(t, h.rooms, room.Code)
}

// For every sequence of joins and leaves, a non-empty roster holds
// exactly one host.
func TestExactlyOneHostInvariant(t *testing.T) {
	h := newTestHub()

	hostCount := func(r *Room) int {
		n := 0
		for _, p := range r.Players {
			if p.IsHost {
				n++
			}
		}
		return n
	}

	alice := newTestClient(h, "s-alice")
	room := createRoom(t, h, alice, "Alice")

	clients := map[string]*Client{"Alice": alice}
	for _, name := range []string{"Bob", "Carol", "Dave", "Erin"} {
		c := newTestClient(h, "s-"+name)
		joinRoom(t, h, c, room.Code, name)
		clients[name] = c
		assert.Equal(t, 1, hostCount(room))
	}

	for _, name := range []string{"Alice", "Carol", "Bob", "Erin", "Dave"} {
		h.handleDisconnect(clients[name])
		if len(room.Players) > 0 {
			assert.Equal(t, 1, hostCount(room), "after %s left", name)
		}
	}

	assert.NotContains(t, h.rooms, room.Code)
}

func TestRoomByPlayer(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(h, "alice-session")
	room := createRoom(t, h, alice, "Alice")

	code, found := h.roomByPlayer("alice-session")
	require.NotNil(t, found)
	assert.Equal(t, room.Code, code)

	_, found = h.roomByPlayer("stranger")
	assert.Nil(t, found)
}

func TestGetRoomState(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(h, "alice-session")
	room := createRoom(t, h, alice, "Alice")

	h.handleGetRoomState(alice)
	state, ok := findMessage[RoomStateMessage](collect(alice))
	require.True(t, ok)
	require.NotNil(t, state.Room)
	assert.Equal(t, room.Code, state.RoomCode)

	stranger := newTestClient(h, "stranger-session")
	h.handleGetRoomState(stranger)
	state, ok = findMessage[RoomStateMessage](collect(stranger))
	require.True(t, ok)
	assert.Equal(t, errRoomNotFound, state.Error)
}

func TestSweepEvictsIdleRooms(t *testing.T) {
	h := newTestHub()
	alice := newTestClient(h, "alice-session")
	room := createRoom(t, h, alice, "Alice")

	fresh := newTestClient(h, "fresh-session")
	keep := createRoom(t, h, fresh, "Fresh")

	room.LastActive = time.Now().Add(-time.Hour)

	evicted := h.sweepIdleRooms()

	assert.Equal(t, 1, evicted)
	assert.NotContains(t, h.rooms, room.Code)
	assert.Contains(t, h.rooms, keep.Code)
}
