package main

import "time"

// Internal countdown kinds. The grace countdown runs between the drawing
// timer expiring and the reveal, while the public phase stays "drawing";
// its ticks are not broadcast.
const (
	timerStudying = "studying"
	timerDrawing  = "drawing"
	timerGrace    = "grace"
)

// timerEvent is what a countdown goroutine feeds back into the hub loop.
// Events are tagged with the generation they were started under, so the
// hub can discard anything from a countdown that has since been replaced.
type timerEvent struct {
	roomCode string
	gen      uint64
	timeLeft int
	done     bool
}

// cancelTimer invalidates any live countdown for the room. Idempotent,
// and safe to call when no countdown is active. Every teardown path must
// come through here before the room is dropped, or the countdown keeps
// firing into a map entry that no longer exists.
func (h *Hub) cancelTimer(r *Room) {
	r.Game.timerGen++
	if r.Game.timerStop != nil {
		close(r.Game.timerStop)
		r.Game.timerStop = nil
	}
	r.Game.TimeLeft = 0
}

// startTimer replaces any live countdown with a new one of the given
// length and broadcasts the initial tick immediately. At most one
// countdown is live per room at any instant.
func (h *Hub) startTimer(r *Room, seconds int, kind string) {
	h.cancelTimer(r)

	stop := make(chan struct{})
	r.Game.timerStop = stop
	r.Game.timerKind = kind

	// Grace ticks are internal bookkeeping; snapshots keep showing zero
	// so clients don't mistake them for a real countdown.
	if kind != timerGrace {
		r.Game.TimeLeft = seconds
	}

	go h.runCountdown(r.Code, r.Game.timerGen, seconds, stop)

	if kind != timerGrace {
		h.broadcast(r, TimerUpdateMessage{
			Type:     "timer-update",
			TimeLeft: seconds,
			Phase:    r.Game.Phase,
		})
	}
}

// graceTicks converts the configured grace delay into countdown ticks.
func (h *Hub) graceTicks() int {
	ticks := int(h.cfg.graceDelay / h.cfg.tickInterval)
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

func (h *Hub) runCountdown(code string, gen uint64, seconds int, stop chan struct{}) {
	ticker := time.NewTicker(h.cfg.tickInterval)
	defer ticker.Stop()

	remaining := seconds

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			remaining--

			ev := timerEvent{
				roomCode: code,
				gen:      gen,
				timeLeft: remaining,
				done:     remaining <= 0,
			}

			select {
			case h.timerEvents <- ev:
			case <-stop:
				return
			}

			if remaining <= 0 {
				return
			}
		}
	}
}

// handleTimerEvent runs inside the hub loop. Stale generations are late
// ticks from an already-replaced countdown and are dropped on the floor.
func (h *Hub) handleTimerEvent(ev timerEvent) {
	r, ok := h.rooms[ev.roomCode]
	if !ok || ev.gen != r.Game.timerGen {
		return
	}

	if r.Game.timerKind != timerGrace {
		r.Game.TimeLeft = ev.timeLeft
		h.broadcast(r, TimerUpdateMessage{
			Type:     "timer-update",
			TimeLeft: ev.timeLeft,
			Phase:    r.Game.Phase,
		})
	}

	if !ev.done {
		return
	}

	// The countdown goroutine has exited on its own; drop the handle so
	// a later cancel doesn't close an already-finished channel.
	r.Game.timerStop = nil

	switch r.Game.timerKind {
	case timerStudying:
		h.enterDrawing(r)
	case timerDrawing:
		h.drawTimeExpired(r)
	case timerGrace:
		h.enterReveal(r, false)
	}
}
