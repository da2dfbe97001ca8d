package minutes

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDirDownloaderStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	d := DirDownloader{Dir: dir}

	if err := d.Save("../../etc/evil.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "evil.txt")); err != nil {
		t.Errorf("file should land inside the download dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "..", "..", "etc", "evil.txt")); err == nil {
		t.Error("attachment name escaped the download dir")
	}
}

func TestDirDownloaderCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "downloads")
	d := DirDownloader{Dir: dir}

	if err := d.Save("doc.txt", strings.NewReader("nội dung")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "doc.txt"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "nội dung" {
		t.Errorf("content: got %q", data)
	}
}

type trackingCloser struct {
	io.Reader
	closed bool
}

func (c *trackingCloser) Close() error {
	c.closed = true
	return nil
}

type failingDownloader struct{}

func (failingDownloader) Save(string, io.Reader) error {
	return errors.New("disk full")
}

func TestAttachmentClosesHandleOnFailure(t *testing.T) {
	tc := &trackingCloser{Reader: strings.NewReader("data")}
	a := Attachment{
		Name: "a.txt",
		open: func() (io.ReadCloser, error) { return tc, nil },
	}

	if err := a.download(failingDownloader{}); err == nil {
		t.Fatal("expected sink failure to propagate")
	}
	if !tc.closed {
		t.Error("handle must be closed when the sink fails")
	}
}

func TestAttachmentFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := AttachmentFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Name != "notes.txt" || a.Size != 5 {
		t.Errorf("unexpected attachment: %+v", a)
	}

	sink := newMemDownloader()
	if err := a.download(sink); err != nil {
		t.Fatalf("download: %v", err)
	}
	if sink.saved["notes.txt"] != "hello" {
		t.Errorf("content: got %q", sink.saved["notes.txt"])
	}
}
