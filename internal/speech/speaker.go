// Package speech turns Chinese text into audio for the bot's pronunciation buttons.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrUnavailable is returned when no synthesizer could produce audio.
var ErrUnavailable = errors.New("speech unavailable")

// Format is the audio container of a clip.
type Format string

const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
)

// Audio is one synthesized clip.
type Audio struct {
	Text   string
	Data   []byte
	Format Format
}

// FileName returns a name for uploading the clip.
func (a *Audio) FileName() string {
	return "speech." + string(a.Format)
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string) (*Audio, error)
}

// Speaker tries each synthesizer in order and caches the first success.
type Speaker struct {
	chain []Synthesizer
	cache *Cache
	log   *zap.Logger
}

// NewSpeaker creates a Speaker. Nil synthesizers are skipped; cache may be nil.
func NewSpeaker(log *zap.Logger, cache *Cache, chain ...Synthesizer) *Speaker {
	s := &Speaker{cache: cache, log: log}
	for _, syn := range chain {
		if syn != nil {
			s.chain = append(s.chain, syn)
		}
	}
	return s
}

// Speak returns audio for text, from cache when possible.
func (s *Speaker) Speak(ctx context.Context, text string) (*Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", ErrUnavailable)
	}

	if s.cache != nil {
		if audio, ok := s.cache.Get(text); ok {
			return audio, nil
		}
	}

	var errs []error
	for _, syn := range s.chain {
		audio, err := syn.Synthesize(ctx, text)
		if err != nil {
			s.log.Warn("speech synthesizer failed",
				zap.String("synthesizer", syn.Name()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", syn.Name(), err))
			continue
		}

		if s.cache != nil {
			if err = s.cache.Put(audio); err != nil {
				s.log.Warn("failed to cache speech", zap.Error(err))
			}
		}
		return audio, nil
	}

	if len(errs) == 0 {
		return nil, ErrUnavailable
	}
	return nil, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
}
