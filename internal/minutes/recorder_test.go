package minutes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bktutor/session-portal/internal/portal"
)

// memDownloader captures artifacts in memory.
type memDownloader struct {
	saved map[string]string
}

func newMemDownloader() *memDownloader {
	return &memDownloader{saved: make(map[string]string)}
}

func (m *memDownloader) Save(name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.saved[name] = string(data)
	return nil
}

func newMinutesClient(t *testing.T, handler http.HandlerFunc) *portal.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return portal.NewClient(srv.URL, portal.StaticCredentials("test-token"))
}

func testAppointment() portal.Appointment {
	return portal.Appointment{
		ID:           "a1",
		Name:         "Ôn tập Giải tích 1",
		TutorName:    "Trần Thị B",
		StartTime:    "2026-03-12 09:00:00",
		Place:        "H6-101",
		CurrentSlots: []string{"2210001", "2210002"},
		Status:       portal.StatusOpen,
	}
}

func TestInitializeSynthesizesParticipants(t *testing.T) {
	rec := NewRecorder(nil, nil)
	rec.Initialize(testAppointment())

	rows := rec.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Name != "Sinh viên 2210001" {
		t.Errorf("name: got %q", rows[0].Name)
	}
	if rows[0].Email != "2210001@hcmut.edu.vn" {
		t.Errorf("email: got %q", rows[0].Email)
	}
	if rows[0].Result != "" {
		t.Errorf("result should start empty, got %q", rows[0].Result)
	}
}

func TestInitializeResetsState(t *testing.T) {
	rec := NewRecorder(nil, nil)
	rec.Initialize(testAppointment())
	rec.SetContent("draft")
	rec.AddFiles(AttachmentFromBytes("x.txt", []byte("x")))

	rec.Initialize(portal.Appointment{ID: "a2", CurrentSlots: []string{"2210009"}})

	if got := rec.Rows(); len(got) != 1 || got[0].StudentID != "2210009" {
		t.Errorf("rows not rebuilt: %+v", got)
	}
	if len(rec.Files()) != 0 {
		t.Error("attachments should be cleared")
	}
	if rec.Payload().Content != "" {
		t.Error("content should be cleared")
	}
}

func TestSetResultOutOfRange(t *testing.T) {
	rec := NewRecorder(nil, nil)
	rec.Initialize(testAppointment())

	if err := rec.SetResult(2, "Đạt"); err == nil {
		t.Error("expected error for out-of-range index")
	}
	if err := rec.SetResult(-1, "Đạt"); err == nil {
		t.Error("expected error for negative index")
	}
}

func TestRemoveFileIgnoresOutOfRange(t *testing.T) {
	rec := NewRecorder(nil, nil)
	rec.Initialize(testAppointment())
	rec.AddFiles(
		AttachmentFromBytes("a.txt", []byte("a")),
		AttachmentFromBytes("b.txt", []byte("b")),
	)

	rec.RemoveFile(5)
	rec.RemoveFile(-1)
	if len(rec.Files()) != 2 {
		t.Fatalf("out-of-range removal must be a no-op, got %d files", len(rec.Files()))
	}

	rec.RemoveFile(0)
	files := rec.Files()
	if len(files) != 1 || files[0].Name != "b.txt" {
		t.Errorf("unexpected files after removal: %+v", files)
	}
}

func TestPayloadJoinsFileNames(t *testing.T) {
	rec := NewRecorder(nil, nil)
	rec.Initialize(testAppointment())
	rec.SetContent("Giải đề mẫu.")
	rec.SetResult(0, "Đạt")
	rec.AddFiles(
		AttachmentFromBytes("a.txt", []byte("a")),
		AttachmentFromBytes("b.txt", []byte("b")),
	)

	p := rec.Payload()
	if p.FileLink != "a.txt, b.txt" {
		t.Errorf("file link: got %q", p.FileLink)
	}
	if len(p.StudentResults) != 2 {
		t.Fatalf("expected 2 results, got %d", len(p.StudentResults))
	}
	if p.StudentResults[0].Score != "Đạt" || p.StudentResults[1].Score != "" {
		t.Errorf("results not carried in order: %+v", p.StudentResults)
	}
}

func TestSaveSubmitsThenDownloads(t *testing.T) {
	var submitted portal.MinutesPayload
	client := newMinutesClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/minutes") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&submitted); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "minutes saved"})
	})

	sink := newMemDownloader()
	rec := NewRecorder(client, sink)
	rec.Initialize(testAppointment())
	rec.SetContent("Giải đề mẫu chương 1-3.")
	rec.SetResult(0, "Đạt")
	rec.SetResult(1, "Đạt")
	rec.AddFiles(AttachmentFromBytes("de-cuong.pdf", []byte("pdf-bytes")))

	if err := rec.Save(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if submitted.Content != "Giải đề mẫu chương 1-3." {
		t.Errorf("submitted content: got %q", submitted.Content)
	}
	if len(submitted.StudentResults) != 2 || submitted.StudentResults[0].Score != "Đạt" {
		t.Errorf("submitted results: %+v", submitted.StudentResults)
	}

	export, ok := sink.saved["Ôn tập Giải tích 1.txt"]
	if !ok {
		t.Fatalf("export not downloaded, saved: %v", keys(sink.saved))
	}
	if !strings.Contains(export, "BIÊN BẢN BUỔI TƯ VẤN: Ôn tập Giải tích 1") {
		t.Errorf("export content wrong:\n%s", export)
	}
	if sink.saved["de-cuong.pdf"] != "pdf-bytes" {
		t.Errorf("attachment not downloaded, saved: %v", keys(sink.saved))
	}
}

func TestSaveFailureDownloadsNothing(t *testing.T) {
	client := newMinutesClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "appointment already cancelled"})
	})

	sink := newMemDownloader()
	rec := NewRecorder(client, sink)
	rec.Initialize(testAppointment())
	rec.AddFiles(AttachmentFromBytes("a.txt", []byte("a")))

	if err := rec.Save(context.Background()); !errors.Is(err, portal.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if len(sink.saved) != 0 {
		t.Errorf("remote failure must not produce downloads, saved: %v", keys(sink.saved))
	}
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
