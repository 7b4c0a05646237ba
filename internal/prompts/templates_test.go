package prompts_test

import (
	"strings"
	"testing"
	"time"

	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
	"github.com/MegaGrindStone/asisten-kepsek/internal/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSuratEdaran(t *testing.T) {
	got := prompts.BuildSuratEdaran("UAS", "Orang Tua", "2025-06-01", "Budi", "Formal", false)

	for _, v := range []string{"UAS", "Orang Tua", "2025-06-01", "Budi", "Formal"} {
		assert.Contains(t, got, v)
	}
	assert.NotContains(t, got, "bilingual")
	assert.Contains(t, got, "Gunakan Bahasa Indonesia yang jelas dan formal.")
	assert.True(t, strings.HasPrefix(got, "Susun draf Surat Edaran sekolah tentang 'UAS'.\n"))
	assert.Equal(t, got, prompts.BuildSuratEdaran("UAS", "Orang Tua", "2025-06-01", "Budi", "Formal", false))
}

func TestBuildSuratEdaranBilingual(t *testing.T) {
	mono := prompts.BuildSuratEdaran("UAS", "Orang Tua", "2025-06-01", "Budi", "Formal", false)
	bi := prompts.BuildSuratEdaran("UAS", "Orang Tua", "2025-06-01", "Budi", "Formal", true)

	assert.Contains(t, bi, "Tulis bilingual (Indonesia dan Inggris)")
	assert.NotContains(t, bi, "Gunakan Bahasa Indonesia yang jelas dan formal.")
	assert.Equal(t, strings.Count(mono, "\n"), strings.Count(bi, "\n"), "bilingual toggles a clause, not the structure")
}

func TestBuildSuratEdaranEmptyFields(t *testing.T) {
	got := prompts.BuildSuratEdaran("", "", "", "", "", false)

	assert.Contains(t, got, "- Audiens: \n")
	assert.Contains(t, got, "- Penandatangan: \n")
}

func TestBuildRKS(t *testing.T) {
	got := prompts.BuildRKS("Juli-Desember 2025", "Literasi\nP5", "")

	assert.Contains(t, got, "- Periode: Juli-Desember 2025\n")
	assert.Contains(t, got, "- Fokus Program:\nLiterasi\nP5\n")
	assert.Contains(t, got, "- Indikator Keberhasilan (opsional):\n\n")
	assert.Contains(t, got, "Gunakan placeholder untuk angka anggaran")
}

func TestBuildJadwal(t *testing.T) {
	got := prompts.BuildJadwal("Pembagian Tugas Guru", "Hindari bentrok.")

	assert.True(t, strings.HasPrefix(got, "Susun pembagian tugas guru untuk SMA. "))
	assert.Contains(t, got, "(jika relevan):\nHindari bentrok.\n")
}

func TestTemplateVariants(t *testing.T) {
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		tmpl     prompts.Template
		wantKind prompts.Kind
		want     string
	}{
		{
			tmpl:     prompts.DefaultSuratEdaran(today),
			wantKind: prompts.KindSuratEdaran,
			want:     "- Tanggal: 2025-06-01\n",
		},
		{
			tmpl:     prompts.DefaultRKS(),
			wantKind: prompts.KindRKS,
			want:     "Penguatan Projek P5",
		},
		{
			tmpl:     prompts.DefaultJadwal(),
			wantKind: prompts.KindJadwal,
			want:     "Susun jadwal mengajar untuk SMA.",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.wantKind), func(t *testing.T) {
			assert.Equal(t, tt.wantKind, tt.tmpl.Kind())
			assert.Contains(t, tt.tmpl.Prompt(), tt.want)
		})
	}
}

func TestParseEnums(t *testing.T) {
	for _, k := range prompts.Kinds {
		got, err := prompts.ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
		assert.NotEmpty(t, k.Title())
	}
	_, err := prompts.ParseKind("memo")
	assert.Error(t, err)

	st, err := prompts.ParseStyle("Semi-formal")
	require.NoError(t, err)
	assert.Equal(t, prompts.StyleSemiFormal, st)
	_, err = prompts.ParseStyle("Casual")
	assert.Error(t, err)

	sch, err := prompts.ParseScheduleType("Jadwal Piket")
	require.NoError(t, err)
	assert.Equal(t, prompts.SchedulePicket, sch)
	_, err = prompts.ParseScheduleType("Jadwal Ujian")
	assert.Error(t, err)
}

func TestSystemPrompt(t *testing.T) {
	assert.True(t, strings.HasPrefix(prompts.SystemPrompt(models.LanguageIndonesian), "Anda adalah asisten AI"))
	assert.True(t, strings.HasPrefix(prompts.SystemPrompt(models.LanguageEnglish), "You are an AI advisor"))
	assert.Equal(t, prompts.SystemPrompt(models.LanguageIndonesian), prompts.SystemPrompt(""))
}
