package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// setupLog configures the global logger. Logging is discarded unless
// debug mode is on, since stdout belongs to the TUI.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	if !viper.GetBool("debug") {
		return func() error { return nil }, nil
	}

	log.SetLevel(log.DebugLevel)

	if logFile := viper.GetString("log_file"); logFile != "" {
		f, err := tea.LogToFile(logFile, "notevox")
		if err != nil {
			return nil, fmt.Errorf("error setting up log: %w", err)
		}
		log.SetOutput(f)
		return f.Close, nil
	}

	log.SetOutput(os.Stderr)
	return func() error { return nil }, nil
}
