package sentiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/coder/websocket"

	"github.com/RyanBlaney/sonido-aura/logging"
	"github.com/RyanBlaney/sonido-aura/observe"
)

// FeedOption configures a Feed
type FeedOption func(*Feed)

// WithFeedMetrics counts received signals on m
func WithFeedMetrics(m *observe.Metrics) FeedOption {
	return func(f *Feed) { f.metrics = m }
}

// WithFeedLogger replaces the global logger
func WithFeedLogger(l logging.Logger) FeedOption {
	return func(f *Feed) { f.logger = l }
}

// WithDialOptions passes options such as headers to the WebSocket dial
func WithDialOptions(opts *websocket.DialOptions) FeedOption {
	return func(f *Feed) { f.dialOpts = opts }
}

// Feed subscribes to a WebSocket that pushes backend verdicts and stores
// each one into a Cell. It does not reconnect.
type Feed struct {
	url      string
	cell     *Cell
	dialOpts *websocket.DialOptions
	metrics  *observe.Metrics
	logger   logging.Logger
}

// NewFeed creates a feed writing into cell
func NewFeed(url string, cell *Cell, opts ...FeedOption) *Feed {
	f := &Feed{url: url, cell: cell}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logging.GetGlobalLogger()
	}
	f.logger = f.logger.WithFields(logging.Fields{
		"component": "sentiment_feed",
		"url":       url,
	})
	return f
}

// Run reads messages until the server closes the connection or ctx ends.
// A normal close returns nil. Undecodable messages are logged and skipped.
func (f *Feed) Run(ctx context.Context) error {
	if f.cell == nil {
		return errors.New("sentiment: feed has no cell")
	}

	conn, _, err := websocket.Dial(ctx, f.url, f.dialOpts)
	if err != nil {
		return fmt.Errorf("sentiment: dial: %w", err)
	}
	defer conn.CloseNow()

	f.logger.Info("Sentiment feed connected")

	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				f.logger.Info("Sentiment feed closed by server")
				return nil
			}
			return fmt.Errorf("sentiment: read: %w", err)
		}

		sig, err := Parse(msg)
		if err != nil {
			f.logger.Warn("Skipping undecodable sentiment message", logging.Fields{
				"error": err.Error(),
				"size":  len(msg),
			})
			continue
		}

		f.cell.Store(sig)
		f.metrics.RecordSentiment(ctx, string(sig.Type))
		f.logger.Debug("Sentiment updated", logging.Fields{
			"type":      sig.Type,
			"intensity": sig.Intensity,
			"keywords":  len(sig.Keywords),
		})
	}
}
