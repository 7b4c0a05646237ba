package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
	"github.com/MegaGrindStone/asisten-kepsek/internal/prompts"
)

type homePageData struct {
	ChatPanel chatPanelData

	Settings models.Settings
	Models   []string
	Warning  string

	CredentialEnv string

	Kinds         []prompts.Kind
	Styles        []prompts.Style
	ScheduleTypes []prompts.ScheduleType
	SuratEdaran   prompts.SuratEdaran
	RKS           prompts.RKS
	Jadwal        prompts.Jadwal

	Limits settingsLimits
}

type settingsLimits struct {
	MinTemperature, MaxTemperature, TemperatureStep float64
	MinMaxTokens, MaxMaxTokens, MaxTokensStep       int
}

var limits = settingsLimits{
	MinTemperature:  models.MinTemperature,
	MaxTemperature:  models.MaxTemperature,
	TemperatureStep: models.TemperatureStep,
	MinMaxTokens:    models.MinMaxTokens,
	MaxMaxTokens:    models.MaxMaxTokens,
	MaxTokensStep:   models.MaxTokensStep,
}

// HandleHome renders the single page: settings sidebar, template forms and the chat panel of the caller's
// session. When the gateway is disabled the page carries a blocking warning and the chat input is
// disabled.
func (m Main) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s := m.session(w, r)

	data := homePageData{
		ChatPanel:     m.chatPanelData(s),
		Settings:      s.Settings(),
		Models:        m.models,
		CredentialEnv: m.credentialEnv,
		Kinds:         prompts.Kinds,
		Styles:        prompts.Styles,
		ScheduleTypes: prompts.ScheduleTypes,
		SuratEdaran:   prompts.DefaultSuratEdaran(time.Now()),
		RKS:           prompts.DefaultRKS(),
		Jadwal:        prompts.DefaultJadwal(),
		Limits:        limits,
	}
	if m.gateway == nil {
		data.Warning = m.disabledReason
	}

	if err := m.templates.ExecuteTemplate(w, "home.html", data); err != nil {
		m.logger.Error("Failed to render home page", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
