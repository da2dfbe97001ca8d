package minutes

import (
	"strings"
	"testing"

	"github.com/bktutor/session-portal/internal/portal"
)

func TestExportFileName(t *testing.T) {
	named := portal.Appointment{ID: "a1", Name: "Ôn giữa kỳ"}
	if got := ExportFileName(named); got != "Ôn giữa kỳ.txt" {
		t.Errorf("named: got %q", got)
	}

	unnamed := portal.Appointment{ID: "a1"}
	if got := ExportFileName(unnamed); got != "BienBan_a1.txt" {
		t.Errorf("unnamed: got %q", got)
	}
}

func TestExportTextFullDocument(t *testing.T) {
	appt := portal.Appointment{
		ID:        "a1",
		Name:      "Ôn tập Giải tích 1",
		TutorName: "Trần Thị B",
		StartTime: "2026-03-12 09:00:00",
		Place:     "H6-101",
	}
	rows := []ParticipantRow{
		{StudentID: "2210001", Name: "Sinh viên 2210001", Email: "2210001@hcmut.edu.vn", Result: "Đạt"},
		{StudentID: "2210002", Name: "Sinh viên 2210002", Email: "2210002@hcmut.edu.vn"},
	}

	got := ExportText(appt, "Giải đề mẫu chương 1-3.", rows, []string{"de-cuong.pdf"})

	want := strings.Join([]string{
		"CỘNG HÒA XÃ HỘI CHỦ NGHĨA VIỆT NAM",
		"Độc lập - Tự do - Hạnh phúc",
		"----------------------------",
		"",
		"BIÊN BẢN BUỔI TƯ VẤN: Ôn tập Giải tích 1",
		"Người phụ trách (Tutor): Trần Thị B",
		"Ngày: 2026-03-12 09:00:00",
		"Địa điểm: H6-101",
		"",
		"NỘI DUNG:",
		"Giải đề mẫu chương 1-3.",
		"",
		"DANH SÁCH SINH VIÊN & KẾT QUẢ:",
		"1. Sinh viên 2210001 (2210001@hcmut.edu.vn) - Kết quả: Đạt",
		"2. Sinh viên 2210002 (2210002@hcmut.edu.vn) - Kết quả: Chưa chấm",
		"",
		"TÀI LIỆU ĐÍNH KÈM:",
		"- de-cuong.pdf",
	}, "\n")

	if got != want {
		t.Errorf("document mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestExportTextPlaceholders(t *testing.T) {
	appt := portal.Appointment{ID: "a1", Name: "Buổi trống"}

	got := ExportText(appt, "", nil, nil)

	for _, line := range []string{
		"Người phụ trách (Tutor): ---",
		"(Không có nội dung)",
		"- Không có sinh viên tham gia.",
		"- Không có.",
	} {
		if !strings.Contains(got, line) {
			t.Errorf("missing placeholder line %q in:\n%s", line, got)
		}
	}
}
