package upload

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"

	"fuzzyhttp/internal/fsutil"
)

// DefaultPrefix is prepended to every stored upload name.
const DefaultPrefix = "fuzzy_post_data_"

// Sink stores POST bodies under the served root. Destination paths are
// taken literally; they are never fuzzy-matched.
type Sink struct {
	rootAbs string
	prefix  string
}

type Result struct {
	Path string // absolute path written
	Size int64
	MD5  string
}

// KB is the size in kibibytes, for display.
func (r Result) KB() float64 {
	return float64(r.Size) / 1024
}

// BodyError reports a failure to read the request body, as opposed to a
// failure to store it.
type BodyError struct {
	Err error
}

func (e *BodyError) Error() string { return "read body: " + e.Err.Error() }

func (e *BodyError) Unwrap() error { return e.Err }

func New(rootAbs, prefix string) *Sink {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Sink{rootAbs: rootAbs, prefix: prefix}
}

// Target returns the absolute destination for the given request segments:
// every segment but the last names the directory, the last one names the
// file.
func (s *Sink) Target(segs []string) (string, error) {
	name := "default"
	var dirSegs []string
	if len(segs) > 0 {
		name = segs[len(segs)-1]
		dirSegs = segs[:len(segs)-1]
	}
	if name == ".." {
		return "", fsutil.ErrPathEscape
	}
	dir, err := fsutil.JoinSegments(s.rootAbs, dirSegs)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, s.prefix+name), nil
}

// Save copies exactly n bytes of body to the destination derived from segs.
// The body is staged in a temp file next to the destination and renamed
// into place, so a failed upload never leaves a partial file behind.
// Concurrent saves to the same destination race; the last rename wins.
func (s *Sink) Save(ctx context.Context, segs []string, body io.Reader, n int64) (Result, error) {
	if n < 0 {
		return Result{}, &BodyError{Err: errors.New("missing content length")}
	}
	dst, err := s.Target(segs)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Result{}, fmt.Errorf("mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return Result{}, fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	h := md5.New()
	written, err := copyBody(ctx, io.MultiWriter(tmp, h), body, n)
	if err != nil {
		_ = tmp.Close()
		return Result{}, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return Result{}, fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return Result{}, fmt.Errorf("rename: %w", err)
	}
	return Result{Path: dst, Size: written, MD5: hexSum(h)}, nil
}

// copyBody copies n bytes in chunks, telling read failures apart from
// write failures.
func copyBody(ctx context.Context, dst io.Writer, src io.Reader, n int64) (int64, error) {
	buf := make([]byte, 256*1024)
	var total int64
	for total < n {
		if err := ctx.Err(); err != nil {
			return total, &BodyError{Err: err}
		}
		want := int64(len(buf))
		if rem := n - total; rem < want {
			want = rem
		}
		rn, rerr := io.ReadFull(src, buf[:want])
		if rn > 0 {
			if _, werr := dst.Write(buf[:rn]); werr != nil {
				return total, fmt.Errorf("write: %w", werr)
			}
			total += int64(rn)
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
				return total, &BodyError{Err: fmt.Errorf("short body: got %d of %d bytes", total, n)}
			}
			return total, &BodyError{Err: rerr}
		}
	}
	return total, nil
}

func hexSum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
