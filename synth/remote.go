package synth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/notevox/notevox/internal/audio"
	"github.com/notevox/notevox/internal/cache"
	"github.com/notevox/notevox/speech"
)

// RemoteSynthesizer speaks through an HTTP synthesis server that
// returns raw PCM (mono signed 16-bit little endian). Responses are
// cached so re-reading a note does not re-hit the server, and
// requests are rate limited to stay inside the server's quota.
type RemoteSynthesizer struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	player   audio.Player
	store    *cache.Manager
	voices   []speech.Voice
	logger   *log.Logger
}

// NewRemoteSynthesizer builds an HTTP synthesizer from settings. The
// player is injected so tests can run without an audio device. store
// may be nil to disable caching.
func NewRemoteSynthesizer(cfg speech.RemoteSettings, player audio.Player, store *cache.Manager, logger *log.Logger) (*RemoteSynthesizer, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: no remote synthesis URL configured", speech.ErrSynthesizerNotAvailable)
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid remote synthesis URL: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}

	interval := time.Minute / time.Duration(cfg.RequestsPerMinute)
	return &RemoteSynthesizer{
		endpoint: cfg.URL,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		player:   player,
		store:    store,
		voices:   cfg.Voices,
		logger:   logger,
	}, nil
}

// Voices returns the configured voice registry.
func (s *RemoteSynthesizer) Voices() []speech.Voice {
	return s.voices
}

// Speak fetches (or recalls) the clip for the utterance and plays it
// to completion.
func (s *RemoteSynthesizer) Speak(ctx context.Context, u speech.Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return nil
	}

	pcm, err := s.fetch(ctx, u)
	if err != nil {
		return err
	}
	return s.player.Play(ctx, pcm)
}

func (s *RemoteSynthesizer) fetch(ctx context.Context, u speech.Utterance) ([]byte, error) {
	key := cache.Key(u.Text, u.Voice.Name)
	if s.store != nil {
		if pcm, ok := s.store.Get(key); ok {
			return pcm, nil
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build synthesis request: %w", err)
	}
	q := req.URL.Query()
	q.Set("text", u.Text)
	if u.Voice.Name != "" {
		q.Set("voice", u.Voice.Name)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("synthesis server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesis response: %w", err)
	}

	if s.store != nil {
		if err := s.store.Put(key, pcm); err != nil {
			s.logger.Debug("failed to cache clip", "key", key, "err", err)
		}
	}
	return pcm, nil
}

// Cancel silences the current clip.
func (s *RemoteSynthesizer) Cancel() {
	s.player.Stop()
}

// Close releases the player and cache.
func (s *RemoteSynthesizer) Close() error {
	err := s.player.Close()
	if s.store != nil {
		if cerr := s.store.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
