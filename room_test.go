package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoomCode(t *testing.T) {
	live := make(map[string]*Room)

	for i := 0; i < 500; i++ {
		code := newRoomCode(live)

		assert.Len(t, code, roomCodeLength)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(roomCodeAlphabet, ch), "unexpected character %q", ch)
		}

		_, exists := live[code]
		require.False(t, exists, "generated a colliding code")
		live[code] = &Room{}
	}
}

func TestRandomIntBounds(t *testing.T) {
	for _, n := range []int{1, 2, 7, 32, 60, 256} {
		for i := 0; i < 200; i++ {
			v := randomInt(n)
			assert.GreaterOrEqual(t, v, 0)
			assert.Less(t, v, n)
		}
	}
}

func TestRoomRosterHelpers(t *testing.T) {
	room := newRoom("TEST", &Player{ID: "a", Name: "Alice"})
	room.Players = append(room.Players,
		&Player{ID: "b", Name: "Bob"},
		&Player{ID: "c", Name: "Carol"},
	)

	assert.Equal(t, "Bob", room.player("b").Name)
	assert.Nil(t, room.player("x"))

	assert.Equal(t, "c", room.playerByName("Carol").ID)
	assert.Nil(t, room.playerByName("carol"), "names are case-sensitive")

	removed := room.removePlayer("b")
	require.NotNil(t, removed)
	assert.Equal(t, "Bob", removed.Name)
	assert.Len(t, room.Players, 2)
	assert.Nil(t, room.removePlayer("b"), "second removal finds nothing")

	assert.Equal(t, 1, room.expectedSubmissions())
}

func TestRoomSnapshotOmitsMonster(t *testing.T) {
	room := newRoom("TEST", &Player{ID: "a", Name: "Alice"})
	room.Game.Phase = phaseStudying
	room.Game.Monster = 17
	room.Game.CurrentDrawer = "a"

	snap := room.snapshot()

	assert.Equal(t, "TEST", snap.Code)
	assert.Equal(t, phaseStudying, snap.Game.Phase)
	assert.Equal(t, "a", snap.Game.CurrentDrawer)

	// The snapshot type has no monster field at all; make sure drawings
	// and submission counts still surface.
	room.Game.Drawings = append(room.Game.Drawings, Drawing{PlayerID: "b", PlayerName: "Bob"})
	assert.Equal(t, 1, room.snapshot().Game.SubmittedCount)
}

func TestHasDrawing(t *testing.T) {
	room := newRoom("TEST", &Player{ID: "a", Name: "Alice"})

	assert.False(t, room.hasDrawing("b"))
	room.Game.Drawings = append(room.Game.Drawings, Drawing{PlayerID: "b"})
	assert.True(t, room.hasDrawing("b"))
	assert.False(t, room.hasDrawing("a"))
}
