package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
	"github.com/MegaGrindStone/asisten-kepsek/internal/session"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type askFlags struct {
	language    string
	model       string
	temperature float64
	maxTokens   int
}

func newAskCmd(root *rootFlags) *cobra.Command {
	flags := &askFlags{}

	cmd := &cobra.Command{
		Use:   "ask [MESSAGE...]",
		Short: "Ask the assistant one question and print the reply",
		Long:  "Ask the assistant one question and print the reply. Without arguments the message is read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("error reading stdin: %w", err)
				}
				text = string(b)
			}

			cfg, err := root.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			settings, err := cfg.settings()
			if err != nil {
				return err
			}
			settings, err = flags.apply(cmd, settings)
			if err != nil {
				return err
			}

			gw, reason, err := buildGateway(cfg, nil, logger)
			if err != nil {
				return err
			}
			if gw == nil {
				return errors.New(reason)
			}

			return ask(cmd, gw, settings, text)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.language, "lang", "", "answer language (id, en)")
	f.StringVar(&flags.model, "model", "", "model identifier")
	f.Float64Var(&flags.temperature, "temperature", 0, "sampling temperature (0-1)")
	f.IntVar(&flags.maxTokens, "max-tokens", 0, "reply length limit")

	return cmd
}

// apply overrides settings with the flags the user set explicitly.
func (f *askFlags) apply(cmd *cobra.Command, settings models.Settings) (models.Settings, error) {
	if cmd.Flags().Changed("lang") {
		lang, err := models.ParseLanguage(f.language)
		if err != nil {
			return models.Settings{}, err
		}
		settings.Language = lang
	}
	if cmd.Flags().Changed("model") {
		settings.Model = f.model
	}
	if cmd.Flags().Changed("temperature") {
		settings.Temperature = f.temperature
	}
	if cmd.Flags().Changed("max-tokens") {
		settings.MaxTokens = f.maxTokens
	}
	if err := settings.Validate(); err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

// ask runs a single turn in a throwaway session. A failed model call is printed like in the web page and
// reported as an error.
func ask(cmd *cobra.Command, gw session.Gateway, settings models.Settings, text string) error {
	s := session.New(uuid.New().String(), settings)

	reply, err := s.Submit(cmd.Context(), gw, text)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(cmd.OutOrStdout(), reply.Content); err != nil {
		return err
	}
	if reply.Error {
		return errors.New("model call failed")
	}
	return nil
}
