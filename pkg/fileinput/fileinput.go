// Package fileinput turns a host file selection (a multipart upload or a
// list of local paths) into plain File handles and passes them upward. It
// neither parses nor uploads files.
package fileinput

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoFiles is returned by Select when nothing remains after filtering.
	ErrNoFiles = errors.New("fileinput: no files selected")
	// ErrNotAccepted marks a file rejected by the accept list.
	ErrNotAccepted = errors.New("fileinput: file type not accepted")
)

// File is a handle to a selected file.
type File struct {
	Name        string
	Size        int64
	ContentType string
	open        func() (io.ReadCloser, error)
}

// Open returns the file contents.
func (f File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("fileinput: %q has no content", f.Name)
	}
	return f.open()
}

// FromBytes builds an in-memory File.
func FromBytes(name, contentType string, data []byte) File {
	if contentType == "" {
		contentType = detectType(name)
	}
	return File{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: contentType,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// UploadFunc receives the accepted selection.
type UploadFunc func(ctx context.Context, files []File) error

// Picker mirrors a file input element: an accept list, a multiple flag and
// the upload callback.
type Picker struct {
	// Accept holds extensions (".pdf"), MIME types ("image/png") or
	// wildcards ("image/*"). Empty accepts everything.
	Accept []string
	// Multiple allows more than one file per selection.
	Multiple bool
	// OnUpload receives the accepted files.
	OnUpload UploadFunc
	// Label is the translation key of the picker button.
	Label string
}

// ParseAccept splits an HTML accept attribute ("image/*,.pdf").
func ParseAccept(attr string) []string {
	var out []string
	for _, part := range strings.Split(attr, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// AcceptAttr renders Accept as an HTML attribute value.
func (p Picker) AcceptAttr() string {
	return strings.Join(p.Accept, ",")
}

// Accepts reports whether a file with name and contentType passes the
// accept list.
func (p Picker) Accepts(name, contentType string) bool {
	if len(p.Accept) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	mediaType := strings.ToLower(contentType)
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}
	for _, rule := range p.Accept {
		rule = strings.ToLower(strings.TrimSpace(rule))
		switch {
		case rule == "":
		case strings.HasPrefix(rule, "."):
			if ext == rule {
				return true
			}
		case strings.HasSuffix(rule, "/*"):
			if strings.HasPrefix(mediaType, strings.TrimSuffix(rule, "*")) {
				return true
			}
		case rule == mediaType:
			return true
		}
	}
	return false
}

// FromMultipart wraps the headers of a multipart form field.
func FromMultipart(headers []*multipart.FileHeader) []File {
	files := make([]File, 0, len(headers))
	for _, header := range headers {
		if header == nil {
			continue
		}
		h := header
		contentType := h.Header.Get("Content-Type")
		if contentType == "" {
			contentType = detectType(h.Filename)
		}
		files = append(files, File{
			Name:        filepath.Base(h.Filename),
			Size:        h.Size,
			ContentType: contentType,
			open: func() (io.ReadCloser, error) {
				return h.Open()
			},
		})
	}
	return files
}

// FromPaths stats local files and wraps them.
func FromPaths(paths ...string) ([]File, error) {
	files := make([]File, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("fileinput: stat %q: %w", path, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("fileinput: %q is a directory", path)
		}
		p := path
		files = append(files, File{
			Name:        filepath.Base(p),
			Size:        info.Size(),
			ContentType: detectType(p),
			open: func() (io.ReadCloser, error) {
				return os.Open(p)
			},
		})
	}
	return files, nil
}

// Filter splits files into accepted and rejected by the accept list. A
// single-file picker keeps only the first accepted file.
func (p Picker) Filter(files []File) (accepted, rejected []File) {
	for _, f := range files {
		if !p.Accepts(f.Name, f.ContentType) {
			rejected = append(rejected, f)
			continue
		}
		if !p.Multiple && len(accepted) == 1 {
			rejected = append(rejected, f)
			continue
		}
		accepted = append(accepted, f)
	}
	return accepted, rejected
}

// Select filters files and hands the accepted ones to OnUpload. Rejected
// names are reported in the returned error, joined with ErrNotAccepted,
// after OnUpload ran.
func (p Picker) Select(ctx context.Context, files []File) error {
	accepted, rejected := p.Filter(files)
	if len(accepted) == 0 {
		if len(rejected) > 0 {
			return fmt.Errorf("%w: %w: %s", ErrNoFiles, ErrNotAccepted, names(rejected))
		}
		return ErrNoFiles
	}

	var uploadErr error
	if p.OnUpload != nil {
		uploadErr = p.OnUpload(ctx, accepted)
	}
	if len(rejected) > 0 {
		return errors.Join(uploadErr, fmt.Errorf("%w: %s", ErrNotAccepted, names(rejected)))
	}
	return uploadErr
}

func names(files []File) string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return strings.Join(out, ", ")
}

func detectType(name string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return "application/octet-stream"
}
