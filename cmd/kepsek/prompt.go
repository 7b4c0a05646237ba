package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/MegaGrindStone/asisten-kepsek/internal/prompts"
	"github.com/spf13/cobra"
)

type promptFlags struct {
	suratEdaran prompts.SuratEdaran
	style       string

	rks prompts.RKS

	jadwal       prompts.Jadwal
	scheduleType string
}

func newPromptCmd() *cobra.Command {
	surat := prompts.DefaultSuratEdaran(time.Now())
	jadwal := prompts.DefaultJadwal()
	flags := &promptFlags{
		suratEdaran:  surat,
		style:        string(surat.Style),
		rks:          prompts.DefaultRKS(),
		jadwal:       jadwal,
		scheduleType: string(jadwal.Type),
	}

	kinds := make([]string, len(prompts.Kinds))
	for i, k := range prompts.Kinds {
		kinds[i] = string(k)
	}

	cmd := &cobra.Command{
		Use:       "prompt KIND",
		Short:     "Print the prompt a template form would prepare",
		Long:      "Print the prompt a template form would prepare. KIND is one of: " + strings.Join(kinds, ", ") + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := flags.template(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tmpl.Prompt())
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.suratEdaran.Topic, "topik", flags.suratEdaran.Topic, "surat-edaran: topik surat")
	f.StringVar(&flags.suratEdaran.Audience, "audiens", flags.suratEdaran.Audience, "surat-edaran: audiens")
	f.StringVar(&flags.suratEdaran.Date, "tanggal", flags.suratEdaran.Date, "surat-edaran: tanggal (YYYY-MM-DD)")
	f.StringVar(&flags.suratEdaran.Signer, "penandatangan", flags.suratEdaran.Signer, "surat-edaran: penandatangan")
	f.StringVar(&flags.style, "gaya", flags.style, "surat-edaran: gaya bahasa (Formal, Semi-formal)")
	f.BoolVar(&flags.suratEdaran.Bilingual, "bilingual", false, "surat-edaran: versi bilingual ID-EN")
	f.StringVar(&flags.rks.Period, "periode", flags.rks.Period, "rks: periode")
	f.StringVar(&flags.rks.Focus, "fokus", flags.rks.Focus, "rks: fokus program, satu per baris")
	f.StringVar(&flags.rks.Indicators, "indikator", flags.rks.Indicators, "rks: indikator keberhasilan")
	f.StringVar(&flags.scheduleType, "jenis", flags.scheduleType, "jadwal: jenis jadwal/tugas")
	f.StringVar(&flags.jadwal.Conditions, "kondisi", flags.jadwal.Conditions, "jadwal: kondisi/kebijakan")

	return cmd
}

func (f *promptFlags) template(kind string) (prompts.Template, error) {
	k, err := prompts.ParseKind(kind)
	if err != nil {
		return nil, err
	}

	switch k {
	case prompts.KindSuratEdaran:
		if _, err := time.Parse(prompts.DateLayout, f.suratEdaran.Date); err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", f.suratEdaran.Date, err)
		}
		style, err := prompts.ParseStyle(f.style)
		if err != nil {
			return nil, err
		}
		s := f.suratEdaran
		s.Style = style
		return s, nil
	case prompts.KindRKS:
		return f.rks, nil
	case prompts.KindJadwal:
		scheduleType, err := prompts.ParseScheduleType(f.scheduleType)
		if err != nil {
			return nil, err
		}
		j := f.jadwal
		j.Type = scheduleType
		return j, nil
	}

	return nil, fmt.Errorf("unhandled template kind: %s", k)
}
