package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/tartampluch/go-valentine/internal/config"
	"github.com/tartampluch/go-valentine/internal/content"
	"github.com/tartampluch/go-valentine/internal/engine"
)

// countdownStream pushes a countdown frame every tick. The ticker belongs to the
// connection: it stops when the client goes away or the server shuts down.
func (s *Server) countdownStream(c echo.Context) error {
	loc := s.localizer(c)
	dates, err := s.deps.Content.SpecialDates(c.Request().Context())
	if err != nil {
		return err
	}

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader already answered the client.
		s.log.Warn(config.ErrWSUpgrade, config.LogKeyError, err)
		return nil
	}
	defer func() { _ = conn.Close() }()

	log := slog.With(config.LogKeyComponent, config.CompStream, config.LogKeyRemoteIP, c.RealIP())
	log.Debug(config.MsgStreamOpen)
	s.metrics.streamsActive.Inc()
	defer s.metrics.streamsActive.Dec()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// Clients never send frames; reading only surfaces the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := engine.NewTicker(s.deps.Content.Clock(), s.interval, func(now time.Time) error {
		frame := newCountdownResponse(content.BuildCountdown(dates, now), loc)
		if err := conn.SetWriteDeadline(time.Now().Add(config.WSWriteTimeout)); err != nil {
			return err
		}
		return conn.WriteJSON(frame)
	})
	if err := ticker.Start(ctx); err != nil {
		return err
	}
	<-ticker.Done()
	ticker.Stop()

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(config.WSWriteTimeout))
	log.Debug(config.MsgStreamClosed, config.LogKeyError, ticker.Err())
	return nil
}
