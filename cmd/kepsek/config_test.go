package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
	"github.com/MegaGrindStone/asisten-kepsek/internal/prompts"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigProviders(t *testing.T) {
	tests := []struct {
		name         string
		yaml         string
		wantProvider string
		wantErr      bool
	}{
		{
			name:         "No llm section defaults to openai",
			yaml:         "port: \"9000\"\n",
			wantProvider: "openai",
		},
		{
			name:         "OpenAI",
			yaml:         "llm:\n  provider: openai\n  baseURL: http://localhost:1234/v1\n",
			wantProvider: "openai",
		},
		{
			name:         "OpenRouter",
			yaml:         "llm:\n  provider: openrouter\n  apiKey: key\n",
			wantProvider: "openrouter",
		},
		{
			name:         "Anthropic",
			yaml:         "llm:\n  provider: anthropic\n",
			wantProvider: "anthropic",
		},
		{
			name:         "Ollama",
			yaml:         "llm:\n  provider: ollama\n  host: http://localhost:11434\n",
			wantProvider: "ollama",
		},
		{
			name:    "Unknown provider",
			yaml:    "llm:\n  provider: nope\n",
			wantErr: true,
		},
		{
			name:    "Missing provider",
			yaml:    "llm:\n  host: http://localhost:11434\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(writeConfig(t, tt.yaml), true)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProvider, cfg.llm.provider())
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false)
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, defaultMaxSessions, cfg.MaxSessions)
	assert.Equal(t, defaultModels, cfg.Models)
	assert.Equal(t, "openai", cfg.llm.provider())

	settings, err := cfg.settings()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)
}

func TestLoadConfigMissingRequiredFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), true)
	require.Error(t, err)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "port: \"9000\"\nmodels: [gpt-4]\ndefaults:\n  language: en\n  temperature: 0\n")
	t.Setenv("KEPSEK_PORT", "9100")
	t.Setenv("KEPSEK_MODELS", "gpt-4,gpt-4o-mini")
	t.Setenv("KEPSEK_MAX_TOKENS", "512")

	cfg, err := loadConfig(path, true)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, []string{"gpt-4", "gpt-4o-mini"}, cfg.Models)

	settings, err := cfg.settings()
	require.NoError(t, err)
	assert.Equal(t, models.LanguageEnglish, settings.Language)
	assert.Zero(t, settings.Temperature)
	assert.Equal(t, 512, settings.MaxTokens)
}

func TestConfigSettingsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "Unknown language", yaml: "defaults:\n  language: fr\n"},
		{name: "Temperature too high", yaml: "defaults:\n  temperature: 1.5\n"},
		{name: "Max tokens too small", yaml: "defaults:\n  maxTokens: 10\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(writeConfig(t, tt.yaml), true)
			require.NoError(t, err)

			_, err = cfg.settings()
			assert.Error(t, err)
		})
	}
}

func TestConfigLogLevel(t *testing.T) {
	cfg := config{LogLevel: "debug"}
	level, err := cfg.logLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	cfg.LogLevel = "loud"
	_, err = cfg.logLevel()
	assert.Error(t, err)
}

func TestBuildGatewayMissingCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	tests := []struct {
		name       string
		llm        llmConfig
		wantReason string
	}{
		{
			name:       "OpenAI",
			llm:        &openAIConfig{},
			wantReason: "OPENAI_API_KEY belum disetel pada environment. Set sebelum menggunakan Asisten AI.",
		},
		{
			name:       "OpenRouter",
			llm:        &openRouterConfig{},
			wantReason: "OPENROUTER_API_KEY belum disetel pada environment. Set sebelum menggunakan Asisten AI.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.llm.gateway(discardLogger())
			require.ErrorIs(t, err, ErrMissingCredential)

			gw, reason, err := buildGateway(config{llm: tt.llm}, nil, discardLogger())
			require.NoError(t, err)
			assert.Nil(t, gw)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestBuildGatewayWithCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "secret")

	gw, reason, err := buildGateway(config{llm: &openAIConfig{}}, nil, discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, gw)
	assert.Empty(t, reason)

	gw, _, err = buildGateway(config{llm: &ollamaConfig{}}, nil, discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, gw)
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPromptCmd(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{
			name: "Surat edaran",
			args: []string{"prompt", "surat-edaran", "--topik", "Rapat", "--audiens", "Guru",
				"--tanggal", "2025-01-10", "--penandatangan", "Kepala Sekolah"},
			want: prompts.BuildSuratEdaran("Rapat", "Guru", "2025-01-10", "Kepala Sekolah", "Formal", false),
		},
		{
			name: "Surat edaran bilingual",
			args: []string{"prompt", "surat-edaran", "--tanggal", "2025-01-10", "--gaya", "Semi-formal", "--bilingual"},
			want: prompts.BuildSuratEdaran("Informasi Ujian Akhir Semester", "Orang Tua/Wali Siswa",
				"2025-01-10", "Kepala Sekolah", "Semi-formal", true),
		},
		{
			name: "RKS",
			args: []string{"prompt", "rks", "--periode", "2026", "--fokus", "Literasi", "--indikator", ""},
			want: prompts.BuildRKS("2026", "Literasi", ""),
		},
		{
			name: "Jadwal",
			args: []string{"prompt", "jadwal", "--jenis", "Jadwal Piket", "--kondisi", "Adil"},
			want: prompts.BuildJadwal("Jadwal Piket", "Adil"),
		},
		{
			name:    "Unknown kind",
			args:    []string{"prompt", "memo"},
			wantErr: true,
		},
		{
			name:    "Invalid date",
			args:    []string{"prompt", "surat-edaran", "--tanggal", "10/01/2025"},
			wantErr: true,
		},
		{
			name:    "Unknown style",
			args:    []string{"prompt", "surat-edaran", "--gaya", "Santai"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runRoot(t, tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

type stubGateway struct {
	reply string
	err   error

	got models.CompletionRequest
}

func (s *stubGateway) Complete(_ context.Context, req models.CompletionRequest) (string, error) {
	s.got = req
	return s.reply, s.err
}

func TestAsk(t *testing.T) {
	newCmd := func() (*cobra.Command, *bytes.Buffer) {
		var out bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&out)
		cmd.SetContext(context.Background())
		return cmd, &out
	}

	t.Run("Reply", func(t *testing.T) {
		cmd, out := newCmd()
		gw := &stubGateway{reply: "Halo, Bapak/Ibu."}

		require.NoError(t, ask(cmd, gw, models.DefaultSettings(), "Halo"))
		assert.Equal(t, "Halo, Bapak/Ibu.\n", out.String())
		assert.Equal(t, "Halo", gw.got.UserText)
		assert.Empty(t, gw.got.History)
		assert.Equal(t, "gpt-4", gw.got.Model)
	})

	t.Run("Gateway failure", func(t *testing.T) {
		cmd, out := newCmd()
		gw := &stubGateway{err: errors.New("timeout")}

		require.Error(t, ask(cmd, gw, models.DefaultSettings(), "Halo"))
		assert.True(t, strings.HasPrefix(out.String(), "Terjadi kesalahan saat memanggil model: "))
	})

	t.Run("Blank message", func(t *testing.T) {
		cmd, _ := newCmd()
		require.Error(t, ask(cmd, &stubGateway{}, models.DefaultSettings(), "  "))
	})
}

func TestAskFlagsApply(t *testing.T) {
	flags := &askFlags{}
	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&flags.language, "lang", "", "")
	cmd.Flags().StringVar(&flags.model, "model", "", "")
	cmd.Flags().Float64Var(&flags.temperature, "temperature", 0, "")
	cmd.Flags().IntVar(&flags.maxTokens, "max-tokens", 0, "")

	require.NoError(t, cmd.Flags().Parse([]string{"--lang", "en", "--temperature", "0"}))

	got, err := flags.apply(cmd, models.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, models.LanguageEnglish, got.Language)
	assert.Zero(t, got.Temperature)
	assert.Equal(t, "gpt-4", got.Model)
	assert.Equal(t, 800, got.MaxTokens)

	require.NoError(t, cmd.Flags().Parse([]string{"--max-tokens", "5"}))
	_, err = flags.apply(cmd, models.DefaultSettings())
	assert.ErrorIs(t, err, models.ErrInvalidSettings)
}
