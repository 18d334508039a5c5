package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notevox/notevox/editor"
	"github.com/notevox/notevox/speech"
)

var speakCmd = &cobra.Command{
	Use:     "speak [PATH]",
	Short:   "Read a note aloud once, without the TUI",
	Long:    paragraph(fmt.Sprintf("\nRead a note %s from top to bottom and exit, printing each line as it is spoken.", keyword("aloud"))),
	Example: paragraph("notevox speak notes/todo.md\nnotevox speak --engine mock notes/todo.md"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
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

		settings, err := speech.LoadSettingsFromViper()
		if err != nil {
			return err
		}
		synthesizer, cleanup, err := buildSynthesizer(settings)
		if err != nil {
			return err
		}
		defer cleanup()

		return runCLI(buf, synthesizer, settings)
	},
}
