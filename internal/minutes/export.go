package minutes

import (
	"fmt"
	"strings"

	"github.com/bktutor/session-portal/internal/portal"
)

// The export format below is reproduced verbatim from the portal's
// established minutes document, placeholders included, so existing archives
// stay comparable.

// ExportFileName names the text export after the session topic, falling
// back to the session id when the topic is empty.
func ExportFileName(appt portal.Appointment) string {
	name := appt.Name
	if name == "" {
		name = "BienBan_" + appt.ID
	}
	return name + ".txt"
}

// ExportText renders the minutes document: boilerplate header, session
// metadata, free-text content, the numbered participant results, and the
// attachment list. Empty sections get explicit placeholder lines.
func ExportText(appt portal.Appointment, content string, rows []ParticipantRow, fileNames []string) string {
	var lines []string
	lines = append(lines,
		"CỘNG HÒA XÃ HỘI CHỦ NGHĨA VIỆT NAM",
		"Độc lập - Tự do - Hạnh phúc",
		"----------------------------",
		"",
	)

	tutor := appt.TutorName
	if tutor == "" {
		tutor = "---"
	}
	lines = append(lines,
		fmt.Sprintf("BIÊN BẢN BUỔI TƯ VẤN: %s", appt.Name),
		fmt.Sprintf("Người phụ trách (Tutor): %s", tutor),
		fmt.Sprintf("Ngày: %s", appt.StartTime),
		fmt.Sprintf("Địa điểm: %s", appt.Place),
		"",
		"NỘI DUNG:",
	)

	if content == "" {
		lines = append(lines, "(Không có nội dung)")
	} else {
		lines = append(lines, content)
	}

	lines = append(lines, "", "DANH SÁCH SINH VIÊN & KẾT QUẢ:")
	if len(rows) == 0 {
		lines = append(lines, "- Không có sinh viên tham gia.")
	} else {
		for i, row := range rows {
			result := row.Result
			if result == "" {
				result = "Chưa chấm"
			}
			lines = append(lines, fmt.Sprintf("%d. %s (%s) - Kết quả: %s", i+1, row.Name, row.Email, result))
		}
	}

	lines = append(lines, "", "TÀI LIỆU ĐÍNH KÈM:")
	if len(fileNames) == 0 {
		lines = append(lines, "- Không có.")
	} else {
		for _, name := range fileNames {
			lines = append(lines, "- "+name)
		}
	}

	return strings.Join(lines, "\n")
}
