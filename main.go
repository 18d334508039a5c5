// Package main provides the entry point for the NoteVox CLI
// application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"github.com/muesli/gitcha"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/notevox/notevox/editor"
	"github.com/notevox/notevox/internal/audio"
	"github.com/notevox/notevox/internal/cache"
	"github.com/notevox/notevox/speech"
	"github.com/notevox/notevox/synth"
	"github.com/notevox/notevox/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	markdownExtensions = []string{"*.md", "*.mdown", "*.mkdn", "*.mkd", "*.markdown"}

	configFile      string
	style           string
	showLineNumbers bool
	voiceName       string
	engineName      string
	followCursor    bool
	skipCodeBlocks  bool

	rootCmd = &cobra.Command{
		Use:   "notevox [PATH]",
		Short: "Read markdown notes aloud from the terminal",
		Long: paragraph(
			fmt.Sprintf("\nRead your markdown notes %s, line by line, from the comfort of the terminal.", keyword("aloud")),
		),
		SilenceErrors: false,
		SilenceUsage:  true,
		Args:          cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		RunE: execute,
	}
)

// expandPath expands a leading tilde to the user's home directory.
func expandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

// validateStyle checks if the style is a default style, if not, checks
// that the custom style exists.
func validateStyle(style string) error {
	if style != "auto" && styles.DefaultStyles[style] == nil {
		style = expandPath(style)
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func validateOptions() error {
	if configFile != "" {
		viper.SetConfigFile(expandPath(configFile))
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config: %w", err)
		}
	}

	style = viper.GetString("style")
	showLineNumbers = viper.GetBool("line_numbers")

	if err := validateStyle(style); err != nil {
		return err
	}

	// Flags beat the config file, but only when actually given, so an
	// untouched flag default never shadows a configured value.
	flags := rootCmd.PersistentFlags()
	if flags.Changed("voice") {
		viper.Set("speech.default_voice", voiceName)
	}
	if flags.Changed("engine") {
		viper.Set("speech.engine", engineName)
	}
	if flags.Changed("follow-cursor") {
		viper.Set("speech.follow_cursor", followCursor)
	}
	if flags.Changed("skip-code-blocks") {
		viper.Set("speech.skip_code_blocks", skipCodeBlocks)
	}
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// resolveNote turns the CLI argument into the path of a markdown file.
// A directory argument picks the first markdown file found within it.
func resolveNote(arg string) (string, error) {
	if arg == "" {
		arg = "."
	}
	arg = expandPath(arg)

	st, err := os.Stat(arg)
	if err != nil {
		return "", fmt.Errorf("unable to open note: %w", err)
	}
	if !st.IsDir() {
		return filepath.Abs(arg)
	}

	ch, err := gitcha.FindFilesExcept(arg, markdownExtensions, nil)
	if err != nil {
		return "", fmt.Errorf("unable to search for markdown: %w", err)
	}
	res, ok := <-ch
	if !ok {
		return "", fmt.Errorf("no markdown files found in %s", arg)
	}
	return res.Path, nil
}

func execute(cmd *cobra.Command, args []string) error {
	// If stdin is a pipe, read the note from it.
	if yes, err := stdinIsPipe(); err != nil {
		return err
	} else if yes {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("unable to read stdin: %w", err)
		}
		return run(editor.NewBuffer(string(b)), "")
	}

	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	path, err := resolveNote(arg)
	if err != nil {
		return err
	}
	buf, err := editor.Load(path)
	if err != nil {
		return err
	}
	return run(buf, path)
}

func run(buf *editor.Buffer, path string) error {
	settings, err := speech.LoadSettingsFromViper()
	if err != nil {
		return err
	}

	synthesizer, cleanup, err := buildSynthesizer(settings)
	if err != nil {
		return err
	}
	defer cleanup()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return runCLI(buf, synthesizer, settings)
	}
	return runTUI(buf, path, synthesizer, settings)
}

// buildSynthesizer constructs the speech engine the settings ask for.
// The returned cleanup releases any audio or cache resources.
func buildSynthesizer(settings speech.Settings) (speech.Synthesizer, func(), error) {
	noop := func() {}

	switch settings.Engine {
	case "mock":
		return synth.NewMockSynthesizer(nil), noop, nil

	case "command":
		s, err := synth.NewCommandSynthesizer(settings.Command, log.Default())
		return s, noop, err

	case "remote":
		return buildRemote(settings.Remote)

	case "auto":
		primary, err := synth.NewCommandSynthesizer(settings.Command, log.Default())
		secondary, cleanup, serr := buildSecondary(settings.Remote)
		if serr != nil {
			return nil, noop, serr
		}
		if err != nil {
			// No speech binary on this system. Use the fallback
			// engine directly.
			log.Debug("command engine unavailable", "err", err)
			return secondary, cleanup, nil
		}
		return synth.NewFallbackSynthesizer(primary, secondary, 3, log.Default()), cleanup, nil

	default:
		return nil, noop, fmt.Errorf("unknown speech engine: %q", settings.Engine)
	}
}

func buildSecondary(cfg speech.RemoteSettings) (speech.Synthesizer, func(), error) {
	if cfg.URL == "" {
		return synth.NewMockSynthesizer(nil), func() {}, nil
	}
	return buildRemote(cfg)
}

func buildRemote(cfg speech.RemoteSettings) (speech.Synthesizer, func(), error) {
	noop := func() {}

	audioCfg := audio.DefaultConfig()
	if cfg.SampleRate > 0 {
		audioCfg.SampleRate = cfg.SampleRate
	}
	player, err := audio.NewOtoPlayer(audioCfg)
	if err != nil {
		return nil, noop, fmt.Errorf("unable to open audio device: %w", err)
	}

	var store *cache.Manager
	if cfg.CacheEnabled {
		cacheCfg := cache.DefaultConfig()
		if cfg.CacheDir != "" {
			cacheCfg.DiskPath = expandPath(cfg.CacheDir)
		}
		if cfg.CacheMaxMB > 0 {
			cacheCfg.DiskCapacity = int64(cfg.CacheMaxMB) << 20
		}
		store, err = cache.NewManager(cacheCfg)
		if err != nil {
			log.Warn("speech cache disabled", "err", err)
			store = nil
		}
	}

	s, err := synth.NewRemoteSynthesizer(cfg, player, store, log.Default())
	if err != nil {
		_ = player.Close()
		if store != nil {
			_ = store.Close()
		}
		return nil, noop, err
	}
	return s, func() { _ = s.Close() }, nil
}

// runCLI reads the whole note aloud once, printing each line as it is
// spoken. Used when stdout is not a terminal.
func runCLI(buf *editor.Buffer, s speech.Synthesizer, settings speech.Settings) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctrl := speech.NewController(buf, s, settings, log.Default())

	done := make(chan speech.DoneEvent, 1)
	var failure error
	ctrl.OnLine(func(ev speech.LineEvent) {
		fmt.Println(ev.Text)
	})
	ctrl.OnError(func(err error) {
		failure = err
	})
	ctrl.OnDone(func(ev speech.DoneEvent) {
		done <- ev
	})

	if err := ctrl.Speak(); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		_ = ctrl.Cancel()
		<-done
		return nil
	case ev := <-done:
		if ev.Reason == speech.ReasonError && failure != nil {
			return failure
		}
		return nil
	}
}

func runTUI(buf *editor.Buffer, path string, s speech.Synthesizer, settings speech.Settings) error {
	// Read environment to get debugging stuff and style overrides.
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	if cfg.GlamourStyle == "" && style != "auto" {
		cfg.GlamourStyle = style
	}
	if path != "" {
		cfg.NoteName = filepath.Base(path)
	}
	cfg.ShowLineNums = cfg.ShowLineNums || showLineNumbers

	ctrl := speech.NewController(buf, s, settings, log.Default())
	notifier := speech.NewNotifier(ctrl)

	p := tea.NewProgram(
		ui.New(cfg, buf, ctrl, notifier, log.Default()),
		tea.WithAltScreen(),
	)

	if path != "" {
		watcher, err := editor.NewWatcher(path, func() {
			p.Send(ui.ReloadMsg{})
		}, log.Default())
		if err != nil {
			log.Warn("cannot watch note for changes", "err", err)
		} else {
			defer watcher.Close() //nolint:errcheck
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	// Assigned here rather than in the rootCmd literal to avoid an
	// initialization cycle: validateOptions refers back to rootCmd.
	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		return validateOptions()
	}
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path for the rendered preview")
	rootCmd.Flags().BoolVarP(&showLineNumbers, "line-numbers", "l", false, "show line numbers")
	rootCmd.PersistentFlags().StringVar(&voiceName, "voice", "", "preferred voice name")
	rootCmd.PersistentFlags().StringVarP(&engineName, "engine", "e", "", "speech engine (command, remote, mock, auto)")
	rootCmd.PersistentFlags().BoolVar(&followCursor, "follow-cursor", true, "move the cursor to each line as it is spoken")
	rootCmd.PersistentFlags().BoolVar(&skipCodeBlocks, "skip-code-blocks", false, "do not vocalize fenced code blocks")

	// Config bindings
	_ = viper.BindPFlag("style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("line_numbers", rootCmd.Flags().Lookup("line-numbers"))

	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("debug", false)
	viper.SetDefault("log_file", "")
	speech.SetDefaults()

	rootCmd.AddCommand(speakCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "notevox")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find the configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "notevox")}, dirs...)
	}

	if c := os.Getenv("NOTEVOX_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("notevox")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("notevox")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "notevox.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
