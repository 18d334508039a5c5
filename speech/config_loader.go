package speech

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadSettingsFromViper loads speech settings from Viper, merging the
// config file over defaults. Missing keys keep their defaults so a
// malformed or partial config never breaks activation.
func LoadSettingsFromViper() (Settings, error) {
	cfg := DefaultSettings()

	if viper.IsSet("speech.default_voice") {
		cfg.DefaultVoice = viper.GetString("speech.default_voice")
	}
	if viper.IsSet("speech.english_ratio") {
		cfg.EnglishRatio = viper.GetFloat64("speech.english_ratio")
	}
	if viper.IsSet("speech.follow_cursor") {
		cfg.FollowCursor = viper.GetBool("speech.follow_cursor")
	}
	if viper.IsSet("speech.headings_anywhere") {
		cfg.HeadingsAnywhere = viper.GetBool("speech.headings_anywhere")
	}
	if viper.IsSet("speech.skip_blank_lines") {
		cfg.SkipBlankLines = viper.GetBool("speech.skip_blank_lines")
	}
	if viper.IsSet("speech.skip_code_blocks") {
		cfg.SkipCodeBlocks = viper.GetBool("speech.skip_code_blocks")
	}
	if viper.IsSet("speech.engine") {
		cfg.Engine = viper.GetString("speech.engine")
	}

	cfg.Command = loadCommandSettings()
	cfg.Remote = loadRemoteSettings()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid speech configuration: %w", err)
	}

	return cfg, nil
}

func loadCommandSettings() CommandSettings {
	cfg := DefaultCommandSettings()

	if viper.IsSet("speech.command.binary") {
		cfg.Binary = viper.GetString("speech.command.binary")
	}
	if viper.IsSet("speech.command.args") {
		cfg.Args = viper.GetStringSlice("speech.command.args")
	}
	if viper.IsSet("speech.command.voice_flag") {
		cfg.VoiceFlag = viper.GetString("speech.command.voice_flag")
	}
	if viper.IsSet("speech.command.timeout") {
		if d, err := time.ParseDuration(viper.GetString("speech.command.timeout")); err == nil {
			cfg.Timeout = d
		}
	}
	cfg.Voices = loadVoices("speech.command.voices")

	return cfg
}

func loadRemoteSettings() RemoteSettings {
	cfg := DefaultRemoteSettings()

	if viper.IsSet("speech.remote.url") {
		cfg.URL = viper.GetString("speech.remote.url")
	}
	if viper.IsSet("speech.remote.requests_per_minute") {
		cfg.RequestsPerMinute = viper.GetInt("speech.remote.requests_per_minute")
	}
	if viper.IsSet("speech.remote.timeout") {
		if d, err := time.ParseDuration(viper.GetString("speech.remote.timeout")); err == nil {
			cfg.Timeout = d
		}
	}
	if viper.IsSet("speech.remote.sample_rate") {
		cfg.SampleRate = viper.GetInt("speech.remote.sample_rate")
	}
	if viper.IsSet("speech.remote.cache_enabled") {
		cfg.CacheEnabled = viper.GetBool("speech.remote.cache_enabled")
	}
	if viper.IsSet("speech.remote.cache_dir") {
		cfg.CacheDir = viper.GetString("speech.remote.cache_dir")
	}
	if viper.IsSet("speech.remote.cache_max_mb") {
		cfg.CacheMaxMB = viper.GetInt("speech.remote.cache_max_mb")
	}
	cfg.Voices = loadVoices("speech.remote.voices")

	return cfg
}

// loadVoices reads a voice list of the form
//
//	voices:
//	  - name: Samantha
//	    language: en-US
func loadVoices(key string) []Voice {
	if !viper.IsSet(key) {
		return nil
	}
	var voices []Voice
	raw := viper.Get(key)
	entries, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	for _, e := range entries {
		m, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		v := Voice{}
		if name, ok := m["name"].(string); ok {
			v.Name = name
		}
		if lang, ok := m["language"].(string); ok {
			v.Language = lang
		}
		if v.Name != "" {
			voices = append(voices, v)
		}
	}
	return voices
}

// SetDefaults sets default values in Viper for speech configuration.
func SetDefaults() {
	defaults := DefaultSettings()

	viper.SetDefault("speech.default_voice", defaults.DefaultVoice)
	viper.SetDefault("speech.english_ratio", defaults.EnglishRatio)
	viper.SetDefault("speech.follow_cursor", defaults.FollowCursor)
	viper.SetDefault("speech.headings_anywhere", defaults.HeadingsAnywhere)
	viper.SetDefault("speech.skip_blank_lines", defaults.SkipBlankLines)
	viper.SetDefault("speech.skip_code_blocks", defaults.SkipCodeBlocks)
	viper.SetDefault("speech.engine", defaults.Engine)

	viper.SetDefault("speech.command.timeout", defaults.Command.Timeout.String())

	viper.SetDefault("speech.remote.requests_per_minute", defaults.Remote.RequestsPerMinute)
	viper.SetDefault("speech.remote.timeout", defaults.Remote.Timeout.String())
	viper.SetDefault("speech.remote.sample_rate", defaults.Remote.SampleRate)
	viper.SetDefault("speech.remote.cache_enabled", defaults.Remote.CacheEnabled)
	viper.SetDefault("speech.remote.cache_max_mb", defaults.Remote.CacheMaxMB)
}
