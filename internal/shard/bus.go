package shard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	KindCommand = "command"
	KindAudio   = "audio"
	KindReply   = "reply"
	KindError   = "error"
)

// ErrBadMessage marks a frame that arrived intact but did not decode. The
// connection is still usable after it.
var ErrBadMessage = errors.New("decode bus message")

type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
	// Audio is a compressed clip (wav, mp3 or ogg); Format names its type
	// when the bytes do not.
	Audio    []byte `json:"audio,omitempty"`
	Format   string `json:"format,omitempty"`
	Category string `json:"category,omitempty"`
	Status   string `json:"status,omitempty"`
	Exit     bool   `json:"exit,omitempty"`
}

// Bus is a JSON-over-websocket connection to the message hub.
type Bus struct {
	url    string
	dialer *websocket.Dialer

	wmu  sync.Mutex
	conn *websocket.Conn
}

func Dial(ctx context.Context, url string) (*Bus, error) {
	b := &Bus{url: url, dialer: websocket.DefaultDialer}
	if err := b.dial(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bus) dial(ctx context.Context) error {
	conn, _, err := b.dialer.DialContext(ctx, b.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", b.url, err)
	}

	b.wmu.Lock()
	b.conn = conn
	b.wmu.Unlock()

	log.Info("Connected to bus", "url", b.url)
	return nil
}

// Reconnect redials until it succeeds or ctx ends, waiting every between
// attempts.
func (b *Bus) Reconnect(ctx context.Context, every time.Duration) error {
	b.Close()
	for {
		err := b.dial(ctx)
		if err == nil {
			return nil
		}
		log.Warn("Bus reconnect failed", "err", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(every):
		}
	}
}

func (b *Bus) Read() (*Message, error) {
	_, data, err := b.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadMessage, err)
	}
	return &m, nil
}

func (b *Bus) Write(m *Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}

	b.wmu.Lock()
	defer b.wmu.Unlock()
	return b.conn.WriteMessage(websocket.TextMessage, data)
}

func (b *Bus) Close() error {
	b.wmu.Lock()
	defer b.wmu.Unlock()
	if b.conn == nil {
		return nil
	}
	return b.conn.Close()
}
