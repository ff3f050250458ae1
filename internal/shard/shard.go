// Package shard connects the assistant to a websocket message bus. Other
// shards send it typed commands or recorded audio and get spoken-style
// replies back.
package shard

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"time"

	"zara/internal/logging"
	"zara/internal/router"
)

type Assistant interface {
	Turn(ctx context.Context, transcript string) router.Reply
}

// Transcriber turns a compressed clip into text. format is a file name or
// extension hint and may be empty.
type Transcriber func(ctx context.Context, audio []byte, format string) (string, error)

type Shard struct {
	Name       string
	Bus        *Bus
	Assistant  Assistant
	Transcribe Transcriber
	// Reconnect is the pause between redials after the hub drops us.
	Reconnect time.Duration
}

// Run serves bus messages until ctx ends.
func (s *Shard) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.Bus.Close()
	}()

	log.Info("Shard ready", "name", s.Name)
	for {
		msg, err := s.Bus.Read()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, ErrBadMessage) {
				log.Error("Bus read failed", "err", err)
				continue
			}
			// Any other read error leaves the websocket unusable.
			log.Warn("Bus connection lost", "err", err)
			if err := s.Bus.Reconnect(ctx, s.reconnect()); err != nil {
				return nil
			}
			continue
		}

		resp := s.Handle(ctx, msg)
		if resp == nil {
			continue
		}
		if err := s.Bus.Write(resp); err != nil {
			log.Error("Failed to send reply", "to", resp.To, "err", err)
		}
	}
}

func (s *Shard) reconnect() time.Duration {
	if s.Reconnect > 0 {
		return s.Reconnect
	}
	return 2 * time.Second
}

// Handle answers one message. Messages for other shards, replies and
// unknown kinds get no response.
func (s *Shard) Handle(ctx context.Context, msg *Message) *Message {
	if msg.To != "" && msg.To != s.Name {
		return nil
	}
	ctx = logging.With(ctx, log.Default().With("source", "bus", "from", msg.From))

	var text string
	switch msg.Kind {
	case KindCommand:
		text = msg.Content
	case KindAudio:
		t, err := s.transcribe(ctx, msg)
		if err != nil {
			log.Warn("Bus audio not transcribed", "from", msg.From, "err", err)
			return &Message{From: s.Name, To: msg.From, Kind: KindError, Content: router.NotUnderstoodText,
				Status: string(router.StatusNotUnderstood)}
		}
		text = t
	default:
		log.Debug("Ignoring bus message", "kind", msg.Kind, "from", msg.From)
		return nil
	}

	reply := s.Assistant.Turn(ctx, text)
	return &Message{
		From:     s.Name,
		To:       msg.From,
		Kind:     KindReply,
		Content:  reply.Text,
		Category: string(reply.Category),
		Status:   string(reply.Status),
		Exit:     reply.Exit,
	}
}

func (s *Shard) transcribe(ctx context.Context, msg *Message) (string, error) {
	if len(msg.Audio) == 0 {
		return "", errors.New("empty audio")
	}
	if s.Transcribe == nil {
		return "", errors.New("no transcriber")
	}
	text, err := s.Transcribe(ctx, msg.Audio, msg.Format)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return text, nil
}
