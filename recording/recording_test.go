package recording

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/storage/local"
)

func TestKey(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"/tmp/capture.WAV", "recordings/job-1.wav"},
		{"/tmp/capture.m4a", "recordings/job-1.m4a"},
		{"/tmp/capture", "recordings/job-1.wav"},
	}
	for _, tt := range tests {
		if got := Key("job-1", tt.src); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestStore_Stage(t *testing.T) {
	files, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(t.TempDir(), "capture.wav")
	if err := os.WriteFile(src, []byte("audio-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	dst, err := NewStore(files, nil).Stage(context.Background(), "job-42", src)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if filepath.Base(dst) != "job-42.wav" || filepath.Base(filepath.Dir(dst)) != "recordings" {
		t.Errorf("unexpected durable path %q", dst)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "audio-bytes" {
		t.Errorf("expected copied bytes, got %q %v", data, err)
	}

	// The durable copy survives removal of the capture file.
	_ = os.Remove(src)
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("durable copy missing: %v", err)
	}
}

func TestStore_StageMissing(t *testing.T) {
	files, _ := local.NewStorage(t.TempDir())
	_, err := NewStore(files, nil).Stage(context.Background(), "j", filepath.Join(t.TempDir(), "nope.wav"))
	if !apperrors.HasCode(err, apperrors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND, got %v", err)
	}
}

type memStorage struct {
	objects map[string][]byte
	err     error
}

func (m *memStorage) Upload(_ context.Context, key string, r io.Reader) error {
	if m.err != nil {
		return m.err
	}
	b, _ := io.ReadAll(r)
	m.objects[key] = b
	return nil
}
func (m *memStorage) Download(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("unused")
}
func (m *memStorage) Delete(context.Context, string) error         { return nil }
func (m *memStorage) Exists(context.Context, string) (bool, error) { return false, nil }
func (m *memStorage) URL(context.Context, string) (string, error)  { return "", nil }

func TestMirror_Copy(t *testing.T) {
	src := filepath.Join(t.TempDir(), "job-7.wav")
	if err := os.WriteFile(src, []byte("pcm"), 0o644); err != nil {
		t.Fatal(err)
	}
	mem := &memStorage{objects: map[string][]byte{}}
	if err := NewMirror(mem, nil).Copy(context.Background(), "job-7", src); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if !bytes.Equal(mem.objects["recordings/job-7.wav"], []byte("pcm")) {
		t.Errorf("expected mirrored object, got %v", mem.objects)
	}

	mem.err = errors.New("access denied")
	if err := NewMirror(mem, nil).Copy(context.Background(), "job-7", src); err == nil {
		t.Error("expected upload error")
	}
}
