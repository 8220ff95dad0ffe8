package asis

import (
	"errors"
	"io"
	"os"

	"github.com/indigo-web/asisd/http/status"
)

// File is an opened asis file. Its first line is transcoded into an HTTP status
// line, everything else is passed through as is.
type File struct {
	r      io.ReadCloser
	line   [maxStatusLineLen]byte
	code   status.Code
	parsed bool
}

// Open opens the file at path. Failing to open it is reported as not found.
func Open(path string) (*File, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, status.ErrNotFound
	}

	return NewFile(fd), nil
}

func NewFile(r io.ReadCloser) *File {
	return &File{r: r}
}

// Code returns the status code and whether it has been parsed yet.
func (f *File) Code() (status.Code, bool) {
	return f.code, f.parsed
}

// Transcode streams the file into w, reading it in chunks of len(buff). The status
// line must fit into the first chunk; a malformed one is reported before anything
// is written into w. Once the status line is out, every following chunk goes
// unmodified, until the file is exhausted.
func (f *File) Transcode(w io.Writer, buff []byte) error {
	for {
		n, err := f.r.Read(buff)
		if n > 0 {
			if werr := f.write(w, buff[:n]); werr != nil {
				return werr
			}
		}

		switch {
		case err == nil:
		case !f.parsed:
			// an empty or unreadable (e.g. a directory) file has no status line either
			return status.ErrNoStatusLine
		case errors.Is(err, io.EOF):
			return nil
		default:
			return err
		}
	}
}

func (f *File) write(w io.Writer, chunk []byte) error {
	if f.parsed {
		_, err := w.Write(chunk)
		return err
	}

	code, rest, err := ParseStatusLine(chunk)
	if err != nil {
		return err
	}

	f.code, f.parsed = code, true
	if _, err = w.Write(AppendStatusLine(f.line[:0], code)); err != nil {
		return err
	}

	if len(rest) == 0 {
		return nil
	}

	_, err = w.Write(rest)
	return err
}

func (f *File) Close() error {
	return f.r.Close()
}
