package covers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func encodeTestImage(t *testing.T, format imaging.Format, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestNewPipeline_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "covers")

	pipeline, err := NewPipeline(dir, 400, 600, "")
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	if pipeline.Dir() != dir {
		t.Errorf("expected dir %s, got %s", dir, pipeline.Dir())
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("covers directory was not created")
	}
}

func TestStore_FetchAndResize(t *testing.T) {
	payload := encodeTestImage(t, imaging.JPEG, 120, 180)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	pipeline, _ := NewPipeline(t.TempDir(), 40, 60, "")

	filename, err := pipeline.Store(context.Background(), server.URL+"/cover.jpg", "Dune")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if !strings.HasPrefix(filename, "dune-cover-") || !strings.HasSuffix(filename, ".jpg") {
		t.Errorf("unexpected filename: %s", filename)
	}

	f, err := os.Open(pipeline.Path(filename))
	if err != nil {
		t.Fatalf("stored cover missing: %v", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("stored cover not decodable: %v", err)
	}
	if cfg.Width != 40 || cfg.Height != 60 {
		t.Errorf("expected 40x60, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestStore_PNGKeepsPNG(t *testing.T) {
	payload := encodeTestImage(t, imaging.PNG, 50, 50)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	pipeline, _ := NewPipeline(t.TempDir(), 40, 60, "")

	filename, err := pipeline.Store(context.Background(), server.URL+"/cover.png", "Hyperion")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if !strings.HasSuffix(filename, ".png") {
		t.Errorf("expected png extension, got %s", filename)
	}
}

func TestStore_EmptyURLUsesPlaceholder(t *testing.T) {
	pipeline, _ := NewPipeline(t.TempDir(), 40, 60, "")

	filename, err := pipeline.Store(context.Background(), "", "No Cover")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if filename != placeholderName {
		t.Errorf("expected placeholder, got %s", filename)
	}
	if _, err := os.Stat(pipeline.Path(filename)); os.IsNotExist(err) {
		t.Error("placeholder file was not generated")
	}
}

func TestStore_FetchFailureUsesPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	pipeline, _ := NewPipeline(t.TempDir(), 40, 60, "")

	filename, err := pipeline.Store(context.Background(), server.URL+"/missing.jpg", "Gone")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if filename != placeholderName {
		t.Errorf("expected placeholder on fetch failure, got %s", filename)
	}
}

func TestStore_BadPayloadUsesPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not an image"))
	}))
	defer server.Close()

	pipeline, _ := NewPipeline(t.TempDir(), 40, 60, "")

	filename, err := pipeline.Store(context.Background(), server.URL+"/bogus.jpg", "Bogus")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if filename != placeholderName {
		t.Errorf("expected placeholder on decode failure, got %s", filename)
	}
}

func TestStore_SizesConsultedPerCall(t *testing.T) {
	payload := encodeTestImage(t, imaging.JPEG, 120, 180)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	pipeline, _ := NewPipeline(t.TempDir(), 40, 60, "")

	width, height := 20, 30
	pipeline.Sizes = func() (int, int) { return width, height }

	filename, err := pipeline.Store(context.Background(), server.URL+"/a.jpg", "First")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	assertCoverSize(t, pipeline.Path(filename), 20, 30)

	// Dimension changes apply to the next store without a new pipeline.
	width, height = 50, 70
	filename, err = pipeline.Store(context.Background(), server.URL+"/b.jpg", "Second")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	assertCoverSize(t, pipeline.Path(filename), 50, 70)
}

func assertCoverSize(t *testing.T, path string, width, height int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("stored cover missing: %v", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("stored cover not decodable: %v", err)
	}
	if cfg.Width != width || cfg.Height != height {
		t.Errorf("expected %dx%d, got %dx%d", width, height, cfg.Width, cfg.Height)
	}
}

func TestPlaceholder_FallbackSetting(t *testing.T) {
	pipeline, _ := NewPipeline(t.TempDir(), 40, 60, "")

	custom := "my-placeholder.png"
	if err := os.WriteFile(pipeline.Path(custom), encodeTestImage(t, imaging.PNG, 40, 60), 0644); err != nil {
		t.Fatal(err)
	}
	pipeline.Fallback = func() string { return custom }

	filename, err := pipeline.Store(context.Background(), "", "No Cover")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if filename != custom {
		t.Errorf("expected configured fallback cover, got %s", filename)
	}
}

func TestPlaceholder_MissingFallbackFileIgnored(t *testing.T) {
	pipeline, _ := NewPipeline(t.TempDir(), 40, 60, "")
	pipeline.Fallback = func() string { return "gone.png" }

	filename, err := pipeline.Placeholder()
	if err != nil {
		t.Fatalf("Placeholder failed: %v", err)
	}
	if filename != placeholderName {
		t.Errorf("expected default placeholder when fallback file is missing, got %s", filename)
	}
}

func TestPlaceholder_ConfiguredFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "custom.png")
	if err := os.WriteFile(src, encodeTestImage(t, imaging.PNG, 30, 30), 0644); err != nil {
		t.Fatal(err)
	}

	pipeline, _ := NewPipeline(t.TempDir(), 40, 60, src)

	filename, err := pipeline.Placeholder()
	if err != nil {
		t.Fatalf("Placeholder failed: %v", err)
	}

	f, err := os.Open(pipeline.Path(filename))
	if err != nil {
		t.Fatalf("placeholder missing: %v", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("placeholder not decodable: %v", err)
	}
	if cfg.Width != 40 || cfg.Height != 60 {
		t.Errorf("expected configured placeholder resized to 40x60, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestCoverFilename_Stable(t *testing.T) {
	pipeline, _ := NewPipeline(t.TempDir(), 40, 60, "")

	name1 := pipeline.coverFilename("Dune", "https://example.com/a.jpg", "jpg")
	name2 := pipeline.coverFilename("Dune", "https://example.com/a.jpg", "jpg")
	name3 := pipeline.coverFilename("Dune", "https://example.com/b.jpg", "jpg")

	if name1 != name2 {
		t.Error("expected identical filenames for identical inputs")
	}
	if name1 == name3 {
		t.Error("expected different filenames for different URLs")
	}
}
