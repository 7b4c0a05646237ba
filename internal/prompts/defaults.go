package prompts

import "time"

// DateLayout is the layout of the letter date field.
const DateLayout = "2006-01-02"

// DefaultSuratEdaran returns the prefilled circular letter form, dated today.
func DefaultSuratEdaran(today time.Time) SuratEdaran {
	return SuratEdaran{
		Topic:    "Informasi Ujian Akhir Semester",
		Audience: "Orang Tua/Wali Siswa",
		Date:     today.Format(DateLayout),
		Signer:   "Kepala Sekolah",
		Style:    StyleFormal,
	}
}

// DefaultRKS returns the prefilled work plan form.
func DefaultRKS() RKS {
	return RKS{
		Period: "Juli-Desember 2025",
		Focus: "Peningkatan Literasi\nPenguatan Projek P5\n" +
			"Pengembangan Kompetensi Guru\nPerbaikan Sarana/Prasarana",
		Indicators: "Nilai literasi meningkat 10%\nMinimal 2 pelatihan guru per semester\n" +
			"Ketersediaan perpustakaan digital",
	}
}

// DefaultJadwal returns the prefilled schedule form.
func DefaultJadwal() Jadwal {
	return Jadwal{
		Type: ScheduleTeaching,
		Conditions: "Prioritaskan pemerataan beban mengajar.\n" +
			"Perhatikan sertifikasi dan keahlian guru.\n" +
			"Hindari bentrok dengan jadwal wali kelas.",
	}
}
