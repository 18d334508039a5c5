package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# style name or JSON path for the rendered preview (default "auto")
style: "auto"
# show line numbers in the note view
line_numbers: false

# read-aloud configuration
speech:
  # preferred voice name; empty picks one via the language heuristic
  default_voice: ""
  # share of ASCII letters above which a line is assumed to be English
  english_ratio: 0.65
  # move the cursor to each line as it is spoken
  follow_cursor: true
  # treat "#" headings mid-line as headings too
  headings_anywhere: false
  # do not vocalize blank lines
  skip_blank_lines: false
  # do not vocalize fenced code blocks
  skip_code_blocks: false

  # speech engine: command, remote, mock, or auto (command with
  # remote fallback)
  engine: "command"

  # subprocess engine configuration
  command:
    # binary to run; empty picks the platform default (say or espeak)
    binary: ""
    # extra arguments passed before the text
    args: []
    # flag used to pass the voice name
    voice_flag: ""
    timeout: "2m"
    # voices the binary offers
    voices: []
    #  - name: Samantha
    #    language: en-US

  # HTTP engine configuration
  remote:
    # url: "https://tts.example.com/speak"
    requests_per_minute: 50
    timeout: "30s"
    sample_rate: 44100
    cache_enabled: true
    # cache_dir: "~/.cache/notevox/audio"
    cache_max_mb: 100
    voices: []
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the notevox config file",
	Long:    paragraph(fmt.Sprintf("\n%s the notevox config file. We'll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("notevox config\nnotevox config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("NoteVox", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
