/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// ReportMessage is pushed to live clients after every scan.
type ReportMessage struct {
	Type      string    `json:"type"`              // "report" or "error"
	Header    string    `json:"header,omitempty"`  // report header line
	Lines     []string  `json:"lines,omitempty"`   // one line per record
	Total     int64     `json:"total"`             // total bytes
	Message   string    `json:"message,omitempty"` // error text
	Generated time.Time `json:"generated"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func newReportMessage(ctx context.Context, cfg *Config, sc Scanner) ReportMessage {
	scanCtx, cancel := cfg.scanContext(ctx)
	defer cancel()

	report, err := generateReport(scanCtx, cfg, sc)
	if err != nil {
		return ReportMessage{
			Type:      "error",
			Message:   err.Error(),
			Generated: time.Now(),
		}
	}

	lines := report.Lines()

	return ReportMessage{
		Type:      "report",
		Header:    lines[0],
		Lines:     lines[1:],
		Total:     report.Total,
		Generated: time.Now(),
	}
}

// serveLive sends a report as soon as the client connects, then again every
// refresh interval until the client or the server goes away.
func serveLive(ctx context.Context, cfg *Config, sc Scanner) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: Websocket upgrade for %s failed: %v", realIP(r), err)

			return
		}
		defer conn.Close()

		logf(cfg, "SERVE: Live report to %s", realIP(r))

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		send := func() error {
			_ = conn.SetWriteDeadline(time.Now().Add(timeout))

			return conn.WriteJSON(newReportMessage(ctx, cfg, sc))
		}

		if err := send(); err != nil {
			return
		}

		var tick <-chan time.Time
		if cfg.refresh > 0 {
			ticker := time.NewTicker(cfg.refresh)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(time.Second))
				return
			case <-closed:
				return
			case <-tick:
				if err := send(); err != nil {
					return
				}
			}
		}
	}
}
