package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pershin-daniil/bsa-site/pkg/countdown"
	"github.com/pershin-daniil/bsa-site/pkg/fetcher"
	"github.com/pershin-daniil/bsa-site/pkg/models"
	"github.com/pershin-daniil/bsa-site/pkg/worker"
)

// countdownHandler streams the countdown board of every upcoming event once
// per tick until the client disconnects. Events are fetched once per stream.
func (s *Server) countdownHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()
	events := fetcher.Load[models.Event](ctx, s.api, models.Events)
	if !loaded(s, events, "events") {
		return
	}
	if events.Failed() {
		s.writeResponse(w, http.StatusBadGateway, events.Err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(_ context.Context, _ time.Time) error {
		data, err := json.Marshal(countdown.Board(events.Items, s.now(), s.loc))
		if err != nil {
			return fmt.Errorf("err encoding countdown: %w", err)
		}
		if _, err = fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return fmt.Errorf("err writing countdown: %w", err)
		}
		flusher.Flush()
		return nil
	}
	if err := send(ctx, s.now()); err != nil {
		s.log.Debugf("countdown stream closed: %v", err)
		return
	}
	if err := worker.Run(ctx, s.tick, send); err != nil {
		s.log.Debugf("countdown stream closed: %v", err)
	}
}
