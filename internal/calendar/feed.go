package calendar

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-valentine/internal/config"
	"github.com/tartampluch/go-valentine/internal/content"
	"github.com/tartampluch/go-valentine/internal/engine"
)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// Feed serves the last rendered calendar. Reads are lock-free; the feed is
// read often by calendar clients and rewritten only when dates change.
type Feed struct {
	cache atomic.Pointer[cacheItem]
	clock engine.Clock
}

// NewFeed returns an empty feed. It answers 503 until the first Update.
func NewFeed(clock engine.Clock) *Feed {
	if clock == nil {
		clock = engine.RealClock{}
	}
	return &Feed{clock: clock}
}

// Update atomically replaces the served content.
func (f *Feed) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	if old := f.cache.Load(); old != nil && old.etag == etag {
		return
	}

	f.cache.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: f.clock.Now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompCalendar,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// Ready reports whether a calendar has been rendered.
func (f *Feed) Ready() bool { return f.cache.Load() != nil }

// ServeHTTP serves the ICS content with conditional GET support.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	item := f.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyError, err,
			)
		}
	}
}

// DateLister supplies the dates to publish.
type DateLister interface {
	SpecialDates(ctx context.Context) ([]content.SpecialDate, error)
}

// Publisher keeps a Feed in sync with the stored special dates.
type Publisher struct {
	Dates     DateLister
	Generator *Generator
	Feed      *Feed
}

// Refresh renders the current dates into the feed.
func (p *Publisher) Refresh(ctx context.Context) error {
	dates, err := p.Dates.SpecialDates(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrCalendarRender, err)
	}
	data, err := p.Generator.Render(ctx, dates)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrCalendarRender, err)
	}
	p.Feed.Update(data)
	return nil
}

// OnChange is a content.ChangeFunc re-rendering the feed when special dates change.
func (p *Publisher) OnChange(ctx context.Context, kind string) {
	if kind != content.KindSpecialDate {
		return
	}
	if err := p.Refresh(ctx); err != nil {
		slog.Error(config.ErrCalendarRender,
			config.LogKeyComponent, config.CompCalendar,
			config.LogKeyError, err)
	}
}

// Run refreshes the feed every interval until ctx is cancelled, so the published
// year window follows the calendar. Render failures are logged, not fatal.
func (p *Publisher) Run(ctx context.Context, interval time.Duration) *engine.Ticker {
	t := engine.NewTicker(p.Generator.Clock, interval, func(time.Time) error {
		if err := p.Refresh(ctx); err != nil {
			slog.Error(config.ErrCalendarRender,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyError, err)
		}
		return nil
	})
	// A fresh ticker cannot already be running.
	_ = t.Start(ctx)
	return t
}
