package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MegaGrindStone/asisten-kepsek/internal/metrics"
	"github.com/MegaGrindStone/asisten-kepsek/internal/prompts"
)

// HandleTemplate fills the template named by the "kind" path value (or form field) with the form fields and
// stores the result as the session's prepared prompt. Nothing is sent to the model until the prompt is
// used.
func (m Main) HandleTemplate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tmpl, err := templateFromForm(r)
	if err != nil {
		m.logger.Warn("Rejected template form", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s := m.session(w, r)
	s.SetPendingPrompt(tmpl.Prompt())
	metrics.TemplatePromptsTotal.WithLabelValues(string(tmpl.Kind())).Inc()

	m.writeChatPanel(w, s)
}

func templateFromForm(r *http.Request) (prompts.Template, error) {
	raw := r.PathValue("kind")
	if raw == "" {
		raw = r.FormValue("kind")
	}
	kind, err := prompts.ParseKind(raw)
	if err != nil {
		return nil, err
	}

	switch kind {
	case prompts.KindSuratEdaran:
		date := r.FormValue("tanggal")
		if _, err := time.Parse(prompts.DateLayout, date); err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", date, err)
		}
		style, err := prompts.ParseStyle(r.FormValue("gaya"))
		if err != nil {
			return nil, err
		}
		return prompts.SuratEdaran{
			Topic:     r.FormValue("topik"),
			Audience:  r.FormValue("audiens"),
			Date:      date,
			Signer:    r.FormValue("penandatangan"),
			Style:     style,
			Bilingual: r.FormValue("bilingual") != "",
		}, nil
	case prompts.KindRKS:
		return prompts.RKS{
			Period:     r.FormValue("periode"),
			Focus:      r.FormValue("fokus"),
			Indicators: r.FormValue("indikator"),
		}, nil
	case prompts.KindJadwal:
		scheduleType, err := prompts.ParseScheduleType(r.FormValue("jenis"))
		if err != nil {
			return nil, err
		}
		return prompts.Jadwal{
			Type:       scheduleType,
			Conditions: r.FormValue("kondisi"),
		}, nil
	}

	return nil, fmt.Errorf("unhandled template kind: %s", kind)
}
