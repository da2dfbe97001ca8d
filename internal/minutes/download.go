package minutes

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Downloader receives the artifacts a minutes save produces: the text
// export and every attached file.
type Downloader interface {
	Save(name string, r io.Reader) error
}

// DirDownloader writes artifacts into a directory, the portal's stand-in
// for a browser download.
type DirDownloader struct {
	Dir string
}

func (d DirDownloader) Save(name string, r io.Reader) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}

	// Strip any path components so an attachment name cannot escape Dir.
	path := filepath.Join(d.Dir, filepath.Base(name))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Attachment is a file held client-side until submission. Its content is
// only opened when the download runs, and the handle is released on every
// exit path.
type Attachment struct {
	Name string
	Size int64
	open func() (io.ReadCloser, error)
}

// AttachmentFromFile references a file on disk without holding it open.
func AttachmentFromFile(path string) (Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, err
	}
	return Attachment{
		Name: filepath.Base(path),
		Size: info.Size(),
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// AttachmentFromBytes wraps in-memory content, mainly for tests.
func AttachmentFromBytes(name string, data []byte) Attachment {
	return Attachment{
		Name: name,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// download streams the attachment into the sink, closing the handle whether
// or not the copy succeeds.
func (a Attachment) download(d Downloader) error {
	rc, err := a.open()
	if err != nil {
		return fmt.Errorf("open attachment %s: %w", a.Name, err)
	}
	defer rc.Close()

	if err := d.Save(a.Name, rc); err != nil {
		return fmt.Errorf("download attachment %s: %w", a.Name, err)
	}
	return nil
}
