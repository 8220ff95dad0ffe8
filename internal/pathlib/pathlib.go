package pathlib

import (
	"io/fs"
	"os"
	"strings"

	"github.com/indigo-web/asisd/http/status"
	"github.com/indigo-web/utils/uf"
)

type statFunc func(name string) (fs.FileInfo, error)

// Resolver maps request targets onto asis files under the root. Candidate paths
// are built in an internal buffer which is reused between calls, so a Resolver
// must not be shared between connections.
type Resolver struct {
	buff       []byte
	root       string
	index, ext string
	stat       statFunc
}

func NewResolver(root, index, ext string) *Resolver {
	return &Resolver{
		root:  withoutTrailingSep(root),
		index: "/" + index,
		ext:   ext,
		stat:  os.Stat,
	}
}

// Validate rejects targets which don't start with a slash or contain a `..`
// anywhere, even as a part of a file name.
func Validate(target string) error {
	if len(target) == 0 || target[0] != '/' || strings.Contains(target, "..") {
		return status.ErrInvalidLocation
	}

	return nil
}

// Resolve returns <root><target>/<index> if it exists, otherwise <root><target><ext>
// if that one exists. Existence is checked by a metadata lookup only, so any file type
// counts. The returned path is valid until the next call.
func (r *Resolver) Resolve(target string) (string, error) {
	if err := Validate(target); err != nil {
		return "", err
	}

	if path := r.candidate(target, r.index); r.exists(path) {
		return path, nil
	}

	if path := r.candidate(target, r.ext); r.exists(path) {
		return path, nil
	}

	return "", status.ErrNotFound
}

func (r *Resolver) candidate(target, suffix string) string {
	r.buff = append(r.buff[:0], r.root...)
	r.buff = append(r.buff, target...)
	r.buff = append(r.buff, suffix...)

	return uf.B2S(r.buff)
}

func (r *Resolver) exists(path string) bool {
	_, err := r.stat(path)
	return err == nil
}

// withoutTrailingSep strips trailing separators, as every target begins with one.
// The filesystem root therefore becomes an empty prefix.
func withoutTrailingSep(root string) string {
	return strings.TrimRight(root, "/")
}
