package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/NewsLens/internal/speech"
)

var speakLang string

// speakCmd creates the "speak" subcommand.
func speakCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speak [text]",
		Short: "Render text as MP3, translating it first if needed",
		Long: fmt.Sprintf(`Translate the text into the target language when it is written in another
one, synthesize it and write an MP3 file to the audio directory.

Supported languages: %s`, strings.Join(speech.LanguageCodes(), ", ")),
		Args: cobra.MinimumNArgs(1),
		RunE: runSpeak,
	}

	cmd.Flags().StringVarP(&speakLang, "lang", "l", "", "target language (default from config)")

	return cmd
}

func runSpeak(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	store, err := speech.NewAudioStore(cfg.Speech.AudioDir, logger)
	if err != nil {
		return fmt.Errorf("create audio store: %w", err)
	}
	svc := speech.NewService(cfg.Speech, store, logger)

	file, err := svc.Speak(context.Background(), strings.Join(args, " "), speakLang)
	if err != nil {
		return err
	}
	fmt.Println(file.Path)
	return nil
}
