package recording

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/storage"
	"github.com/kbukum/scribe/storage/local"
)

const (
	prefix     = "recordings"
	defaultExt = ".wav"
)

// Key returns the storage key of the durable copy for jobID.
func Key(jobID, src string) string {
	ext := strings.ToLower(filepath.Ext(src))
	if ext == "" {
		ext = defaultExt
	}
	return path.Join(prefix, jobID+ext)
}

// Store keeps durable copies of captured audio on the local filesystem so
// transcription never reads from a temporary capture file.
type Store struct {
	files *local.Storage
	log   *logger.Logger
}

// NewStore creates a Store rooted in files.
func NewStore(files *local.Storage, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{files: files, log: log.WithComponent("recording")}
}

// Stage copies src to <base>/recordings/<jobID><ext> and returns the copy's
// path.
func (s *Store) Stage(ctx context.Context, jobID, src string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", apperrors.FileNotFound(src)
		}
		return "", apperrors.Internal(fmt.Errorf("open recording: %w", err))
	}
	defer func() { _ = f.Close() }()

	key := Key(jobID, src)
	if err := s.files.Upload(ctx, key, f); err != nil {
		return "", apperrors.Internal(fmt.Errorf("stage recording: %w", err))
	}
	dst, err := s.files.Path(key)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	s.log.WithContext(ctx).Debug("recording staged", logger.Fields(logger.FieldPath, dst))
	return dst, nil
}

// Mirror uploads durable copies to secondary storage such as S3.
type Mirror struct {
	dst storage.Storage
	log *logger.Logger
}

// NewMirror creates a Mirror writing to dst.
func NewMirror(dst storage.Storage, log *logger.Logger) *Mirror {
	if log == nil {
		log = logger.NewNop()
	}
	return &Mirror{dst: dst, log: log.WithComponent("recording.mirror")}
}

// Copy uploads the file at localPath under the job's key.
func (m *Mirror) Copy(ctx context.Context, jobID, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("mirror: open %s: %w", localPath, err)
	}
	defer func() { _ = f.Close() }()

	key := Key(jobID, localPath)
	if err := m.dst.Upload(ctx, key, f); err != nil {
		return fmt.Errorf("mirror: upload %s: %w", key, err)
	}
	m.log.WithContext(ctx).Debug("recording mirrored", logger.Fields("key", key))
	return nil
}
