package speech

import (
	"fmt"
	"strings"
	"time"
)

// Settings contains all speech configuration options.
type Settings struct {
	// Voice selection
	DefaultVoice string  `yaml:"default_voice" env:"NOTEVOX_DEFAULT_VOICE"`
	EnglishRatio float64 `yaml:"english_ratio" env:"NOTEVOX_ENGLISH_RATIO" envDefault:"0.65"`

	// Session behavior
	FollowCursor     bool `yaml:"follow_cursor" env:"NOTEVOX_FOLLOW_CURSOR" envDefault:"true"`
	HeadingsAnywhere bool `yaml:"headings_anywhere" env:"NOTEVOX_HEADINGS_ANYWHERE" envDefault:"false"`
	SkipBlankLines   bool `yaml:"skip_blank_lines" env:"NOTEVOX_SKIP_BLANK_LINES" envDefault:"false"`
	SkipCodeBlocks   bool `yaml:"skip_code_blocks" env:"NOTEVOX_SKIP_CODE_BLOCKS" envDefault:"false"`

	// Engine selection: command, remote, mock, or auto (command with
	// remote fallback).
	Engine string `yaml:"engine" env:"NOTEVOX_ENGINE" envDefault:"command"`

	// Engine-specific configurations
	Command CommandSettings `yaml:"command"`
	Remote  RemoteSettings  `yaml:"remote"`
}

// CommandSettings configures the subprocess synthesizer.
type CommandSettings struct {
	Binary    string        `yaml:"binary" env:"NOTEVOX_COMMAND_BINARY"`
	Args      []string      `yaml:"args"`
	VoiceFlag string        `yaml:"voice_flag" env:"NOTEVOX_COMMAND_VOICE_FLAG"`
	Timeout   time.Duration `yaml:"timeout" env:"NOTEVOX_COMMAND_TIMEOUT" envDefault:"2m"`
	Voices    []Voice       `yaml:"voices"`
}

// RemoteSettings configures the HTTP synthesizer.
type RemoteSettings struct {
	URL               string        `yaml:"url" env:"NOTEVOX_REMOTE_URL"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"NOTEVOX_REMOTE_RPM" envDefault:"50"`
	Timeout           time.Duration `yaml:"timeout" env:"NOTEVOX_REMOTE_TIMEOUT" envDefault:"30s"`
	SampleRate        int           `yaml:"sample_rate" env:"NOTEVOX_REMOTE_SAMPLE_RATE" envDefault:"44100"`
	CacheEnabled      bool          `yaml:"cache_enabled" env:"NOTEVOX_REMOTE_CACHE" envDefault:"true"`
	CacheDir          string        `yaml:"cache_dir" env:"NOTEVOX_REMOTE_CACHE_DIR"`
	CacheMaxMB        int           `yaml:"cache_max_mb" env:"NOTEVOX_REMOTE_CACHE_MAX_MB" envDefault:"100"`
	Voices            []Voice       `yaml:"voices"`
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		EnglishRatio: 0.65,
		FollowCursor: true,
		Engine:       "command",
		Command:      DefaultCommandSettings(),
		Remote:       DefaultRemoteSettings(),
	}
}

// DefaultCommandSettings returns default subprocess synthesizer
// settings. The binary is resolved per-platform at construction time
// when left empty.
func DefaultCommandSettings() CommandSettings {
	return CommandSettings{
		Timeout: 2 * time.Minute,
	}
}

// DefaultRemoteSettings returns default HTTP synthesizer settings.
func DefaultRemoteSettings() RemoteSettings {
	return RemoteSettings{
		RequestsPerMinute: 50,
		Timeout:           30 * time.Second,
		SampleRate:        44100,
		CacheEnabled:      true,
		CacheMaxMB:        100,
	}
}

// Validate checks if the settings are valid.
func (s *Settings) Validate() error {
	validEngines := []string{"command", "remote", "mock", "auto"}
	engineValid := false
	for _, e := range validEngines {
		if strings.EqualFold(s.Engine, e) {
			engineValid = true
			s.Engine = strings.ToLower(s.Engine)
			break
		}
	}
	if !engineValid {
		return fmt.Errorf("invalid engine '%s': must be one of %v", s.Engine, validEngines)
	}

	if s.EnglishRatio <= 0 || s.EnglishRatio > 1 {
		return fmt.Errorf("english_ratio must be in (0, 1], got %f", s.EnglishRatio)
	}

	switch s.Engine {
	case "command", "auto":
		if err := s.Command.Validate(); err != nil {
			return fmt.Errorf("command config: %w", err)
		}
	}
	if s.Engine == "remote" || s.Engine == "auto" {
		if err := s.Remote.Validate(); err != nil {
			return fmt.Errorf("remote config: %w", err)
		}
	}

	return nil
}

// Validate checks if the subprocess synthesizer settings are valid.
func (c *CommandSettings) Validate() error {
	if c.Timeout < time.Second {
		return fmt.Errorf("timeout must be at least 1 second, got %v", c.Timeout)
	}
	return nil
}

// Validate checks if the HTTP synthesizer settings are valid.
func (c *RemoteSettings) Validate() error {
	if c.RequestsPerMinute < 1 {
		return fmt.Errorf("requests_per_minute must be positive, got %d", c.RequestsPerMinute)
	}
	if c.Timeout < time.Second {
		return fmt.Errorf("timeout must be at least 1 second, got %v", c.Timeout)
	}
	if c.SampleRate != 44100 && c.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", c.SampleRate)
	}
	if c.CacheMaxMB < 1 || c.CacheMaxMB > 10000 {
		return fmt.Errorf("cache_max_mb must be between 1 and 10000, got %d", c.CacheMaxMB)
	}
	return nil
}
