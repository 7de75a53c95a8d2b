package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/SmitUplenchwar2687/oscseq/internal/clock"
	"github.com/SmitUplenchwar2687/oscseq/internal/session"
)

const (
	jsonExt = ".json"
	zstdExt = ".zst"
)

// FileConfig configures the file backend.
type FileConfig struct {
	Dir      string      `json:"dir" yaml:"dir"`
	Compress bool        `json:"compress" yaml:"compress"`
	Clock    clock.Clock `json:"-" yaml:"-"`
}

// FileStore writes one JSON document per session into a directory.
// With Compress set, documents are zstd-compressed and get a ".zst" suffix.
type FileStore struct {
	dir      string
	compress bool
	clock    clock.Clock
}

// NewFileStore creates the directory if needed.
func NewFileStore(cfg FileConfig) (*FileStore, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session dir: %w", err)
	}
	return &FileStore{
		dir:      dir,
		compress: cfg.Compress,
		clock:    clock.OrReal(cfg.Clock),
	}, nil
}

// Save writes s atomically and returns the file path. A second save in
// the same second gets a numeric suffix instead of overwriting.
func (s *FileStore) Save(_ context.Context, sess *session.Session) (string, error) {
	ext := jsonExt
	if s.compress {
		ext += zstdExt
	}

	tmp, err := os.CreateTemp(s.dir, ".recording-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := s.write(tmp, sess); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing session file: %w", err)
	}
	return s.publish(tmp.Name(), SnapshotName(s.clock.Now()), ext)
}

func (s *FileStore) write(w io.Writer, sess *session.Session) error {
	if !s.compress {
		return sess.WriteJSON(w)
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if err := sess.WriteJSON(enc); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// publish hard-links tmp under the first free name derived from base.
// Link fails on an existing target, so a file that appears between two
// saves is never replaced.
func (s *FileStore) publish(tmp, base, ext string) (string, error) {
	for i := 0; ; i++ {
		name := base
		if i > 0 {
			name += "-" + strconv.Itoa(i)
		}
		path := filepath.Join(s.dir, name+ext)
		err := os.Link(tmp, path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("publishing %s: %w", path, err)
		}
	}
}

// Load reads a session file. ref is a path; a bare file name is also
// looked up inside the store directory.
func (s *FileStore) Load(_ context.Context, ref string) (*session.Session, error) {
	f, err := s.open(ref)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(ref, zstdExt) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening compressed session %s: %w", ref, err)
		}
		defer dec.Close()
		r = dec
	}

	sess, err := session.ReadJSON(r)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", ref, err)
	}
	return sess, nil
}

func (s *FileStore) open(ref string) (*os.File, error) {
	f, err := os.Open(ref)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("opening %s: %w", ref, err)
	}
	if filepath.Base(ref) == ref {
		if f, err := os.Open(filepath.Join(s.dir, ref)); err == nil {
			return f, nil
		}
	}
	return nil, notFound(ref)
}

func (s *FileStore) Close() error {
	return nil
}
