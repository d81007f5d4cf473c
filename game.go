package main

import "time"

// Default round lengths, in seconds, used when start-game omits them.
const (
	defaultViewTime = 20
	defaultDrawTime = 120
)

func (h *Hub) handleStartGame(c *Client, msg ClientMessage) {
	room, ok := h.rooms[c.roomCode]
	if !ok {
		h.sendGameError(c, errRoomNotFound)
		return
	}
	if c.id != room.HostID {
		logf(h.cfg, "GAME: Non-host start-game attempt in room %s", room.Code)
		h.sendGameError(c, errNotHost)
		return
	}
	if len(room.Players) < 2 {
		h.sendGameError(c, errNotEnoughPlayers)
		return
	}

	viewTime := msg.ViewTime
	if viewTime <= 0 {
		viewTime = defaultViewTime
	}
	drawTime := msg.DrawTime
	if drawTime <= 0 {
		drawTime = defaultDrawTime
	}
	maxRounds := msg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = len(room.Players)
	}
	difficulty := msg.Difficulty
	if _, ok := monsterBands[difficulty]; !ok {
		difficulty = difficultyAll
	}

	room.Game.ViewTime = viewTime
	room.Game.DrawTime = drawTime
	room.Game.MaxRounds = maxRounds
	room.Game.Difficulty = difficulty
	room.Game.DrawerIndex = 0
	room.Game.CurrentRound = 1

	room.touch()
	logf(h.cfg, "GAME: Room %s started (%d players, view %ds, draw %ds, %s)",
		room.Code, len(room.Players), viewTime, drawTime, difficulty)

	h.broadcast(room, GameStartedMessage{
		Type:      "game-started",
		GameState: room.snapshot().Game,
		Room:      room.snapshot(),
	})

	h.startRound(room)
}

// startRound picks the drawer and monster, resets the round's drawings,
// and opens the studying phase. The monster id travels only to the
// drawer; the broadcast snapshot never carries it.
func (h *Hub) startRound(r *Room) {
	drawer, index := pickDrawer(r.Players, r.Game.DrawerIndex)
	if drawer == nil {
		h.broadcast(r, GameErrorMessage{Type: "game-error", Error: errNoDrawer})
		return
	}

	r.Game.DrawerIndex = index
	r.Game.CurrentDrawer = drawer.ID
	r.Game.Monster = pickMonster(r.Game.Difficulty, r.Game.UsedMonsters)
	r.Game.UsedMonsters = append(r.Game.UsedMonsters, r.Game.Monster)
	r.Game.Drawings = nil
	r.Game.Phase = phaseStudying
	r.touch()

	logf(h.cfg, "GAME: Room %s round %d, %q draws monster %d",
		r.Code, r.Game.CurrentRound, drawer.Name, r.Game.Monster)

	snap := r.snapshot()
	h.broadcast(r, PhaseChangedMessage{
		Type:      "phase-changed",
		Phase:     phaseStudying,
		GameState: snap.Game,
		Room:      snap,
	})

	if dc := r.clientByPlayer(drawer.ID); dc != nil {
		h.sendTo(dc, MonsterRevealedMessage{
			Type:     "monster-revealed",
			Monster:  r.Game.Monster,
			ViewTime: r.Game.ViewTime,
		})
	}

	h.startTimer(r, r.Game.ViewTime, timerStudying)
}

// enterDrawing moves the room from studying to drawing once the view
// countdown runs out.
func (h *Hub) enterDrawing(r *Room) {
	r.Game.Phase = phaseDrawing
	r.touch()

	snap := r.snapshot()
	h.broadcast(r, PhaseChangedMessage{
		Type:      "phase-changed",
		Phase:     phaseDrawing,
		GameState: snap.Game,
		Room:      snap,
	})

	h.startTimer(r, r.Game.DrawTime, timerDrawing)
}

// drawTimeExpired prompts every non-drawer without a submission to send
// whatever is on its canvas, then allows a short grace window before the
// reveal happens regardless.
func (h *Hub) drawTimeExpired(r *Room) {
	pending := 0

	for _, p := range r.Players {
		if p.ID == r.Game.CurrentDrawer || r.hasDrawing(p.ID) {
			continue
		}
		pending++
		if pc := r.clientByPlayer(p.ID); pc != nil {
			h.sendTo(pc, AutoSubmitMessage{Type: "auto-submit-drawing", TimeUp: true})
		}
	}

	if pending == 0 {
		h.enterReveal(r, false)
		return
	}

	logf(h.cfg, "GAME: Room %s draw time up, %d auto-submissions pending", r.Code, pending)
	h.startTimer(r, h.graceTicks(), timerGrace)
}

// enterReveal closes the round: the full drawing set and the original
// monster go out to everyone, early or not.
func (h *Hub) enterReveal(r *Room, early bool) {
	h.cancelTimer(r)

	r.Game.Phase = phaseReveal
	r.touch()

	snap := r.snapshot()
	h.broadcast(r, PhaseChangedMessage{
		Type:            "phase-changed",
		Phase:           phaseReveal,
		GameState:       snap.Game,
		Room:            snap,
		AllDrawings:     r.drawingInfos(),
		OriginalMonster: r.Game.Monster,
		EarlyEnd:        early,
	})
}

func (h *Hub) handleSubmitDrawing(c *Client, msg ClientMessage, auto bool) {
	room, ok := h.rooms[c.roomCode]
	if !ok {
		h.sendDrawingError(c, errRoomNotFound)
		return
	}

	player := room.player(c.id)
	if player == nil {
		h.sendDrawingError(c, errRoomNotFound)
		return
	}
	if room.Game.Phase != phaseDrawing {
		h.sendDrawingError(c, errWrongPhase)
		return
	}
	if c.id == room.Game.CurrentDrawer {
		h.sendDrawingError(c, errDrawerCannotSubmit)
		return
	}
	if room.hasDrawing(c.id) {
		h.sendDrawingError(c, errDuplicateSubmission)
		return
	}

	// Auto-submissions with no canvas data are recorded anyway; the
	// empty blob is the placeholder shown at reveal.
	room.Game.Drawings = append(room.Game.Drawings, Drawing{
		PlayerID:      c.id,
		PlayerName:    player.Name,
		ImageData:     msg.ImageData,
		SubmittedAt:   time.Now(),
		AutoSubmitted: auto,
	})
	room.touch()

	submitted := len(room.Game.Drawings)
	expected := room.expectedSubmissions()

	h.broadcast(room, DrawingSubmittedMessage{
		Type:           "drawing-submitted",
		PlayerName:     player.Name,
		TotalSubmitted: submitted,
		TotalExpected:  expected,
	})

	if submitted < expected {
		return
	}

	// Everyone who can submit has: close the round now instead of
	// waiting out the countdown. A round completed during the grace
	// window after the countdown expired isn't an early end.
	switch room.Game.timerKind {
	case timerDrawing:
		h.enterReveal(room, true)
	case timerGrace:
		h.enterReveal(room, false)
	}
}

// handleNextRound rotates the drawer and begins the next round. Round
// count never auto-finishes the game; ending is the host's explicit
// call via finish-game.
func (h *Hub) handleNextRound(c *Client) {
	room, ok := h.rooms[c.roomCode]
	if !ok {
		h.sendGameError(c, errRoomNotFound)
		return
	}
	if c.id != room.HostID {
		logf(h.cfg, "GAME: Non-host next-round attempt in room %s", room.Code)
		h.sendGameError(c, errNotHost)
		return
	}
	// Only meaningful inside a running game; from the lobby the round
	// settings haven't been chosen yet, and a finished game stays done.
	if room.Game.Phase == phaseLobby || room.Game.Phase == phaseFinished {
		h.sendGameError(c, errWrongPhase)
		return
	}
	if len(room.Players) == 0 {
		h.sendGameError(c, errNotEnoughPlayers)
		return
	}

	room.Game.CurrentRound++
	room.Game.DrawerIndex = (room.Game.DrawerIndex + 1) % len(room.Players)

	h.startRound(room)
}

func (h *Hub) handleFinishGame(c *Client) {
	room, ok := h.rooms[c.roomCode]
	if !ok {
		h.sendGameError(c, errRoomNotFound)
		return
	}
	if c.id != room.HostID {
		logf(h.cfg, "GAME: Non-host finish-game attempt in room %s", room.Code)
		h.sendGameError(c, errNotHost)
		return
	}

	h.cancelTimer(room)
	room.Game.Phase = phaseFinished
	room.touch()

	logf(h.cfg, "GAME: Room %s finished after %d rounds", room.Code, room.Game.CurrentRound)

	snap := room.snapshot()
	h.broadcast(room, GameFinishedMessage{
		Type:      "game-finished",
		Room:      snap,
		GameState: snap.Game,
	})
}

// drawerLost handles the current drawer vanishing mid-round: the round
// cannot continue without its monster-describer, so it reveals whatever
// has been drawn so far and leaves the host to advance or finish.
func (h *Hub) drawerLost(r *Room) {
	if r.Game.Phase != phaseStudying && r.Game.Phase != phaseDrawing {
		return
	}

	logf(h.cfg, "GAME: Room %s lost its drawer mid-round", r.Code)

	h.broadcast(r, GameErrorMessage{Type: "game-error", Error: errNoDrawer})
	r.Game.CurrentDrawer = ""
	h.enterReveal(r, true)
}
