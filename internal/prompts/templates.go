package prompts

import (
	"fmt"
	"strings"
)

// Kind identifies one of the quick templates offered next to the chat.
type Kind string

const (
	// KindSuratEdaran drafts a school circular letter.
	KindSuratEdaran Kind = "surat-edaran"
	// KindRKS drafts a school work plan and budget (RKS/RKAS).
	KindRKS Kind = "rks"
	// KindJadwal drafts a schedule or a task allocation.
	KindJadwal Kind = "jadwal"
)

// Kinds lists the template kinds in the order they are presented.
var Kinds = []Kind{KindSuratEdaran, KindRKS, KindJadwal}

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSuratEdaran, KindRKS, KindJadwal:
		return k, nil
	default:
		return "", fmt.Errorf("unknown template kind: %q", s)
	}
}

// Title returns the tab label of the template kind.
func (k Kind) Title() string {
	switch k {
	case KindSuratEdaran:
		return "Surat Edaran"
	case KindRKS:
		return "RKS/RKAS"
	case KindJadwal:
		return "Jadwal & Tugas"
	default:
		return string(k)
	}
}

// Style is the register of a circular letter.
type Style string

const (
	StyleFormal     Style = "Formal"
	StyleSemiFormal Style = "Semi-formal"
)

// Styles lists the selectable letter styles.
var Styles = []Style{StyleFormal, StyleSemiFormal}

// ParseStyle returns the Style named by s.
func ParseStyle(s string) (Style, error) {
	switch st := Style(s); st {
	case StyleFormal, StyleSemiFormal:
		return st, nil
	default:
		return "", fmt.Errorf("unknown letter style: %q", s)
	}
}

// ScheduleType is the kind of schedule or allocation the Jadwal template asks for.
type ScheduleType string

const (
	ScheduleTeaching   ScheduleType = "Jadwal Mengajar"
	SchedulePicket     ScheduleType = "Jadwal Piket"
	ScheduleTeacherJob ScheduleType = "Pembagian Tugas Guru"
)

// ScheduleTypes lists the selectable schedule types.
var ScheduleTypes = []ScheduleType{ScheduleTeaching, SchedulePicket, ScheduleTeacherJob}

// ParseScheduleType returns the ScheduleType named by s.
func ParseScheduleType(s string) (ScheduleType, error) {
	for _, st := range ScheduleTypes {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown schedule type: %q", s)
}

// Template is a filled-in template form. Each kind has exactly one implementation.
type Template interface {
	Kind() Kind
	Prompt() string
}

// SuratEdaran holds the fields of the circular letter form.
type SuratEdaran struct {
	Topic     string
	Audience  string
	Date      string
	Signer    string
	Style     Style
	Bilingual bool
}

// RKS holds the fields of the work plan form. Focus and Indicators are newline separated lists.
type RKS struct {
	Period     string
	Focus      string
	Indicators string
}

// Jadwal holds the fields of the schedule form. Conditions is a newline separated list.
type Jadwal struct {
	Type       ScheduleType
	Conditions string
}

func (SuratEdaran) Kind() Kind { return KindSuratEdaran }
func (RKS) Kind() Kind         { return KindRKS }
func (Jadwal) Kind() Kind      { return KindJadwal }

func (s SuratEdaran) Prompt() string {
	return BuildSuratEdaran(s.Topic, s.Audience, s.Date, s.Signer, string(s.Style), s.Bilingual)
}

func (r RKS) Prompt() string {
	return BuildRKS(r.Period, r.Focus, r.Indicators)
}

func (j Jadwal) Prompt() string {
	return BuildJadwal(string(j.Type), j.Conditions)
}

const (
	bilingualClause  = "Tulis bilingual (Indonesia dan Inggris) dengan dua bagian terpisah dan konsisten."
	indonesianClause = "Gunakan Bahasa Indonesia yang jelas dan formal."
)

// BuildSuratEdaran returns the instruction for drafting a circular letter about topic.
func BuildSuratEdaran(topic, audience, date, signer, style string, bilingual bool) string {
	langNote := indonesianClause
	if bilingual {
		langNote = bilingualClause
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Susun draf Surat Edaran sekolah tentang '%s'.\n", topic)
	fmt.Fprintf(&sb, "- Audiens: %s\n", audience)
	fmt.Fprintf(&sb, "- Tanggal: %s\n", date)
	fmt.Fprintf(&sb, "- Penandatangan: %s\n", signer)
	fmt.Fprintf(&sb, "- Gaya bahasa: %s\n", style)
	fmt.Fprintf(&sb, "- %s\n", langNote)
	sb.WriteString("Strukturkan: Kop/Identitas, Nomor, Perihal, Salam pembuka, Isi utama (tujuan, rincian, waktu/tempat jika ada), ")
	sb.WriteString("Instruksi/harapan, Penutup, Tanda tangan, Tembusan (jika perlu). ")
	sb.WriteString("Sertakan placeholder yang jelas untuk nomor surat, lampiran, dan kontak.")
	return sb.String()
}

// BuildRKS returns the instruction for drafting a concise senior high school work plan.
func BuildRKS(period, focus, indicators string) string {
	var sb strings.Builder
	sb.WriteString("Buat RKS/RKAS ringkas untuk tingkat SMA dengan format tabel/poin yang mudah dipahami.\n")
	fmt.Fprintf(&sb, "- Periode: %s\n", period)
	fmt.Fprintf(&sb, "- Fokus Program:\n%s\n", focus)
	fmt.Fprintf(&sb, "- Indikator Keberhasilan (opsional):\n%s\n", indicators)
	sb.WriteString("Cantumkan: tujuan, kegiatan utama, PIC, timeline, kebutuhan sumber daya/anggaran (perkiraan), ")
	sb.WriteString("indikator & cara evaluasi, risiko & mitigasi. ")
	sb.WriteString("Gunakan placeholder untuk angka anggaran dan sesuaikan dengan regulasi sekolah.")
	return sb.String()
}

// BuildJadwal returns the instruction for drafting the schedule named by scheduleType.
func BuildJadwal(scheduleType, conditions string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Susun %s untuk SMA. ", strings.ToLower(scheduleType))
	sb.WriteString("Berikan langkah penyusunan, asumsi, dan keluaran akhir berupa tabel/poin yang rapi. ")
	fmt.Fprintf(&sb, "Pertimbangkan ketentuan berikut (jika relevan):\n%s\n", conditions)
	sb.WriteString("Sertakan catatan tentang cara menyesuaikan jika terjadi konflik jadwal.")
	return sb.String()
}
