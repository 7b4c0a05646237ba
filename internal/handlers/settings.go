package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
)

// HandleSettings replaces the generation settings of the caller's session with the "language", "model",
// "temperature" and "max_tokens" form fields.
func (m Main) HandleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s := m.session(w, r)

	settings, err := m.settingsFromForm(r)
	if err == nil {
		err = s.UpdateSettings(settings)
	}
	if err != nil {
		m.logger.Warn("Rejected settings",
			slog.String("sessionID", s.ID()),
			slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.logger.Debug("Settings updated",
		slog.String("sessionID", s.ID()),
		slog.String("settings", fmt.Sprintf("%+v", settings)))
	w.WriteHeader(http.StatusNoContent)
}

func (m Main) settingsFromForm(r *http.Request) (models.Settings, error) {
	lang, err := models.ParseLanguage(r.FormValue("language"))
	if err != nil {
		return models.Settings{}, err
	}

	model := r.FormValue("model")
	if !slices.Contains(m.models, model) {
		return models.Settings{}, fmt.Errorf("%w: model %q is not available", models.ErrInvalidSettings, model)
	}

	temp, err := strconv.ParseFloat(r.FormValue("temperature"), 64)
	if err != nil {
		return models.Settings{}, fmt.Errorf("%w: temperature: %w", models.ErrInvalidSettings, err)
	}

	maxTokens, err := strconv.Atoi(r.FormValue("max_tokens"))
	if err != nil {
		return models.Settings{}, fmt.Errorf("%w: max_tokens: %w", models.ErrInvalidSettings, err)
	}

	return models.Settings{
		Language:    lang,
		Model:       model,
		Temperature: temp,
		MaxTokens:   maxTokens,
	}, nil
}
