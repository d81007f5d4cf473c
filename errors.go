/*
Copyright © 2025 TeeJayWilliamson
*/

package main

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Stable error strings for game-error / drawing-error payloads. All are
// sent to the offending client only, except no-drawer, which is broadcast
// room-wide when a round loses its drawer.
const (
	errRoomNotFound        = "room-not-found"
	errNameTaken           = "name-taken"
	errRoomFull            = "room-full"
	errInvalidName         = "invalid-name"
	errNotHost             = "not-host"
	errNotEnoughPlayers    = "not-enough-players"
	errWrongPhase          = "wrong-phase"
	errDrawerCannotSubmit  = "drawer-cannot-submit"
	errDuplicateSubmission = "duplicate-submission"
	errNoDrawer            = "no-drawer"
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
