// Package covers downloads, resizes and stores book cover images.
package covers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const placeholderName = "placeholder-book.png"

var filenameStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Pipeline fetches cover images, resizes them to a fixed size and persists
// them into a local directory. Every stored cover is referenced by its
// filename inside that directory.
type Pipeline struct {
	dir             string
	width           int
	height          int
	placeholderPath string
	httpClient      *http.Client

	// Sizes, when set, is consulted on every store so dimension changes
	// made at runtime apply without a restart.
	Sizes func() (width, height int)

	// Fallback, when set, names an already stored file to use as the
	// placeholder cover instead of the built-in one.
	Fallback func() string
}

// NewPipeline creates a cover pipeline storing images under dir. When
// placeholderPath is non-empty, that file is installed as the fallback
// cover; otherwise a neutral generated placeholder is used.
func NewPipeline(dir string, width, height int, placeholderPath string) (*Pipeline, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create covers dir: %w", err)
	}

	return &Pipeline{
		dir:             dir,
		width:           width,
		height:          height,
		placeholderPath: placeholderPath,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Dir returns the covers directory path.
func (p *Pipeline) Dir() string {
	return p.dir
}

// Path returns the absolute path for a stored cover filename.
func (p *Pipeline) Path(filename string) string {
	return filepath.Join(p.dir, filename)
}

func (p *Pipeline) size() (int, int) {
	if p.Sizes != nil {
		if w, h := p.Sizes(); w > 0 && h > 0 {
			return w, h
		}
	}
	return p.width, p.height
}

// Store downloads the image at imageURL, resizes it and saves it, returning
// the stored filename. Any failure, or an empty URL, degrades to the
// placeholder cover.
func (p *Pipeline) Store(ctx context.Context, imageURL, title string) (string, error) {
	if imageURL == "" {
		return p.Placeholder()
	}

	filename, err := p.fetchAndStore(ctx, imageURL, title)
	if err != nil {
		log.Printf("Cover download failed for %q: %v, using placeholder", title, err)
		return p.Placeholder()
	}
	return filename, nil
}

// Placeholder resolves the fallback cover and returns its filename. A
// stored file named by the Fallback setting wins; otherwise a configured
// placeholder file is copied in once, and without one a neutral gray
// cover is generated.
func (p *Pipeline) Placeholder() (string, error) {
	if p.Fallback != nil {
		if name := strings.TrimSpace(p.Fallback()); name != "" {
			if _, err := os.Stat(filepath.Join(p.dir, name)); err == nil {
				return name, nil
			}
			log.Printf("Configured fallback cover %s is missing, using default placeholder", name)
		}
	}

	target := filepath.Join(p.dir, placeholderName)
	if _, err := os.Stat(target); err == nil {
		return placeholderName, nil
	}

	width, height := p.size()

	if p.placeholderPath != "" {
		if err := p.installPlaceholder(target, width, height); err == nil {
			return placeholderName, nil
		} else {
			log.Printf("Failed to install configured placeholder %s: %v, generating default", p.placeholderPath, err)
		}
	}

	blank := imaging.New(width, height, color.NRGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff})
	if err := imaging.Save(blank, target); err != nil {
		return "", fmt.Errorf("generate placeholder: %w", err)
	}
	return placeholderName, nil
}

func (p *Pipeline) installPlaceholder(target string, width, height int) error {
	src, err := os.Open(p.placeholderPath)
	if err != nil {
		return err
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		return fmt.Errorf("decode placeholder: %w", err)
	}

	resized := imaging.Resize(img, width, height, imaging.Lanczos)
	return imaging.Save(resized, target)
}

func (p *Pipeline) fetchAndStore(ctx context.Context, imageURL, title string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Bookstock/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch cover: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode cover: %w", err)
	}

	// Resize to the exact configured dimensions. PNG and GIF sources are
	// re-encoded as PNG so transparency survives.
	width, height := p.size()
	resized := imaging.Resize(img, width, height, imaging.Lanczos)

	ext := "jpg"
	if format == "png" || format == "gif" {
		ext = "png"
	}
	filename := p.coverFilename(title, imageURL, ext)

	if err := p.saveAtomic(resized, filename, ext); err != nil {
		return "", err
	}

	return filename, nil
}

// saveAtomic writes through a temp file in the same directory so a partial
// download never ends up as a stored cover.
func (p *Pipeline) saveAtomic(img image.Image, filename, ext string) error {
	tmpFile, err := os.CreateTemp(p.dir, "cover_tmp_*."+ext)
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	if err := imaging.Save(img, tmpPath, imaging.JPEGQuality(90)); err != nil {
		return err
	}

	return os.Rename(tmpPath, filepath.Join(p.dir, filename))
}

// coverFilename builds a stable filename from the book title and URL hash.
func (p *Pipeline) coverFilename(title, imageURL, ext string) string {
	slug := filenameStrip.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "book"
	}
	if len(slug) > 80 {
		slug = slug[:80]
	}

	hash := sha256.Sum256([]byte(imageURL))
	return fmt.Sprintf("%s-cover-%x.%s", slug, hash[:6], ext)
}
