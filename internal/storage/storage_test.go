package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 9, G: 255, B: 238, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type memoryStore struct {
	saved map[string][]byte
}

func (m *memoryStore) Save(_ context.Context, name, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[name] = data
	return "mem://" + name, nil
}

func TestUploaderAcceptsImage(t *testing.T) {
	store := &memoryStore{}
	uploader := NewUploader(store, 0, nil)

	upload, err := uploader.Accept(context.Background(), "unit.png", "image/png", bytes.NewReader(pngBytes(t, 4, 3)))
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if upload.URL != "mem://unit.png" {
		t.Fatalf("unexpected url %q", upload.URL)
	}
	if upload.Width != 4 || upload.Height != 3 {
		t.Fatalf("expected 4x3, got %dx%d", upload.Width, upload.Height)
	}
	if uploader.MaxBytes() != DefaultMaxBytes {
		t.Fatalf("expected default limit, got %d", uploader.MaxBytes())
	}
}

func TestUploaderRejectsNonImage(t *testing.T) {
	uploader := NewUploader(&memoryStore{}, 0, nil)
	_, err := uploader.Accept(context.Background(), "notes.txt", "text/plain", strings.NewReader("hello"))
	if !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
}

func TestUploaderRejectsOversized(t *testing.T) {
	uploader := NewUploader(&memoryStore{}, 16, nil)
	_, err := uploader.Accept(context.Background(), "big.png", "image/png", bytes.NewReader(make([]byte, 17)))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	_, err = uploader.Accept(context.Background(), "empty.png", "image/png", bytes.NewReader(nil))
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestDetectImageUnknownFormat(t *testing.T) {
	if _, _, _, err := DetectImage([]byte("<svg/>")); err == nil {
		t.Fatal("expected error for unknown format")
	}
	format, w, h, err := DetectImage(pngBytes(t, 2, 5))
	if err != nil || format != "png" || w != 2 || h != 5 {
		t.Fatalf("unexpected detection %q %dx%d (%v)", format, w, h, err)
	}
}

func TestUploaderRejectsMislabelledMarkup(t *testing.T) {
	store := &memoryStore{}
	uploader := NewUploader(store, 0, nil)

	page := "<html><script>alert(document.cookie)</script></html>"
	_, err := uploader.Accept(context.Background(), "x.html", "image/png", strings.NewReader(page))
	if !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
	if len(store.saved) != 0 {
		t.Fatalf("expected nothing to be stored, got %v", store.saved)
	}
}

func TestUploaderUsesDecodedExtension(t *testing.T) {
	store := &memoryStore{}
	uploader := NewUploader(store, 0, nil)

	upload, err := uploader.Accept(context.Background(), "x.html", "image/jpeg", bytes.NewReader(pngBytes(t, 3, 3)))
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if upload.URL != "mem://x.png" {
		t.Fatalf("expected extension from decoded format, got %q", upload.URL)
	}

	dir := t.TempDir()
	local := NewUploader(NewLocalStore(dir, "/static/uploads"), 0, nil)
	upload, err = local.Accept(context.Background(), "../../evil.html", "image/png", bytes.NewReader(pngBytes(t, 3, 3)))
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if !strings.HasSuffix(upload.URL, ".png") || strings.Contains(upload.URL, "..") {
		t.Fatalf("unexpected stored url %q", upload.URL)
	}
}

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(filepath.Join(dir, "uploads"), "/static/uploads/")
	store.now = func() time.Time { return time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC) }

	url, err := store.Save(context.Background(), "Photo.JPG", "image/jpeg", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	pattern := regexp.MustCompile(`^/static/uploads/20240506-[0-9a-f-]{36}\.jpg$`)
	if !pattern.MatchString(url) {
		t.Fatalf("unexpected url %q", url)
	}

	written, err := os.ReadFile(filepath.Join(store.Dir(), filepath.Base(url)))
	if err != nil {
		t.Fatalf("read written file: %v", err)
	}
	if string(written) != "data" {
		t.Fatalf("unexpected file content %q", written)
	}
}

func TestLocalStoreHonoursCancelledContext(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/static/uploads")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Save(ctx, "a.png", "image/png", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
