// Package minutes assembles the closure record of a tutoring session: free
// text, per-participant results and attachments, persisted through the
// collaborator and then exported as downloadable artifacts.
package minutes

import (
	"context"
	"fmt"
	"strings"

	"github.com/bktutor/session-portal/internal/portal"
)

// ParticipantRow is one gradeable participant, derived from the session's
// booked slots. Name and email are synthesized from the student id the same
// way the portal always has.
type ParticipantRow struct {
	StudentID string
	Name      string
	Email     string
	Result    string
}

// Recorder holds the in-progress minutes for one session. All mutation is
// local; nothing touches the collaborator until Save.
type Recorder struct {
	client    *portal.Client
	downloads Downloader

	appt    portal.Appointment
	content string
	rows    []ParticipantRow
	files   []Attachment
}

func NewRecorder(client *portal.Client, downloads Downloader) *Recorder {
	return &Recorder{client: client, downloads: downloads}
}

// Initialize resets the recorder for a session: one empty result row per
// booked student, no content, no attachments. Safe to call again whenever
// the source appointment changes.
func (r *Recorder) Initialize(appt portal.Appointment) {
	r.appt = appt
	r.content = ""
	r.files = nil

	r.rows = make([]ParticipantRow, 0, len(appt.CurrentSlots))
	for _, studentID := range appt.CurrentSlots {
		r.rows = append(r.rows, ParticipantRow{
			StudentID: studentID,
			Name:      "Sinh viên " + studentID,
			Email:     studentID + "@hcmut.edu.vn",
		})
	}
}

func (r *Recorder) SetContent(content string) {
	r.content = content
}

// SetResult records the grade text for the participant at index.
func (r *Recorder) SetResult(index int, value string) error {
	if index < 0 || index >= len(r.rows) {
		return fmt.Errorf("participant index %d out of range", index)
	}
	r.rows[index].Result = value
	return nil
}

func (r *Recorder) AddFiles(files ...Attachment) {
	r.files = append(r.files, files...)
}

// RemoveFile drops the attachment at index; out-of-range indexes are
// ignored, matching remove buttons racing a list re-render.
func (r *Recorder) RemoveFile(index int) {
	if index < 0 || index >= len(r.files) {
		return
	}
	r.files = append(r.files[:index], r.files[index+1:]...)
}

// Rows returns a copy of the participant rows for rendering.
func (r *Recorder) Rows() []ParticipantRow {
	out := make([]ParticipantRow, len(r.rows))
	copy(out, r.rows)
	return out
}

// Files returns a copy of the attachment list for rendering.
func (r *Recorder) Files() []Attachment {
	out := make([]Attachment, len(r.files))
	copy(out, r.files)
	return out
}

// Payload builds the wire body Save submits: the content, the comma-joined
// attachment names, and one result per participant row in order.
func (r *Recorder) Payload() portal.MinutesPayload {
	results := make([]portal.StudentResult, 0, len(r.rows))
	for _, row := range r.rows {
		results = append(results, portal.StudentResult{
			StudentID: row.StudentID,
			Score:     row.Result,
		})
	}
	return portal.MinutesPayload{
		Content:        r.content,
		FileLink:       strings.Join(r.fileNames(), ", "),
		StudentResults: results,
	}
}

// Save persists the record remotely, then produces the downloadable
// artifacts: the text export first, then every attachment. If the remote
// save fails nothing is downloaded; there is no partial-success state.
func (r *Recorder) Save(ctx context.Context) error {
	if err := r.client.SaveMinutes(ctx, r.appt.ID, r.Payload()); err != nil {
		return err
	}

	doc := ExportText(r.appt, r.content, r.rows, r.fileNames())
	if err := r.downloads.Save(ExportFileName(r.appt), strings.NewReader(doc)); err != nil {
		return fmt.Errorf("export minutes: %w", err)
	}

	for _, f := range r.files {
		if err := f.download(r.downloads); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) fileNames() []string {
	if len(r.files) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.files))
	for _, f := range r.files {
		names = append(names, f.Name)
	}
	return names
}
