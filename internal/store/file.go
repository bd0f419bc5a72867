package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rotisserie/eris"

	"github.com/sells-group/area-risk/internal/cluster"
)

// FileStore keeps the model as a JSON document on disk. Paths ending in
// ".zst" are zstd compressed.
type FileStore struct {
	path string
}

// NewFile creates a FileStore writing to path.
func NewFile(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) compressed() bool {
	return strings.HasSuffix(strings.ToLower(s.path), ".zst")
}

func (s *FileStore) Migrate(ctx context.Context) error {
	if s.path == "" {
		return &PersistenceError{Backend: DriverFile, Op: "migrate", Err: eris.New("empty model path")}
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &PersistenceError{Backend: DriverFile, Op: "migrate", Err: eris.Wrap(err, "create model dir")}
		}
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

// Save writes the model to a temp file in the same directory and renames it
// over the target, so readers never see a partial model.
func (s *FileStore) Save(ctx context.Context, m *cluster.Model) error {
	data, err := cluster.EncodeModel(m)
	if err != nil {
		return &PersistenceError{Backend: DriverFile, Op: "save", Err: err}
	}
	if s.compressed() {
		if data, err = compress(data); err != nil {
			return &PersistenceError{Backend: DriverFile, Op: "save", Err: err}
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &PersistenceError{Backend: DriverFile, Op: "save", Err: eris.Wrap(err, "create temp file")}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return &PersistenceError{Backend: DriverFile, Op: "save", Err: eris.Wrap(err, "write temp file")}
	}
	if err := tmp.Close(); err != nil {
		return &PersistenceError{Backend: DriverFile, Op: "save", Err: eris.Wrap(err, "close temp file")}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return &PersistenceError{Backend: DriverFile, Op: "save", Err: eris.Wrap(err, "rename model file")}
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context) (*cluster.Model, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &PersistenceError{Backend: DriverFile, Op: "load", Err: ErrModelNotFound}
		}
		return nil, &PersistenceError{Backend: DriverFile, Op: "load", Err: eris.Wrap(err, "read model file")}
	}
	if s.compressed() {
		if data, err = decompress(data); err != nil {
			return nil, &PersistenceError{Backend: DriverFile, Op: "load", Err: err}
		}
	}

	m, err := cluster.DecodeModel(data)
	if err != nil {
		return nil, &PersistenceError{Backend: DriverFile, Op: "load", Err: err}
	}
	return m, nil
}

func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, eris.Wrap(err, "create zstd writer")
	}
	defer enc.Close() //nolint:errcheck
	return enc.EncodeAll(data, nil), nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, eris.Wrap(err, "create zstd reader")
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, eris.Wrap(err, "zstd decode")
	}
	return out, nil
}
