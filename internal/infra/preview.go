package infra

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrNotImage is returned when content does not sniff as an image.
var ErrNotImage = errors.New("content is not an image")

// PreviewRenderer writes square-bounded thumbnails of verified image content,
// keyed by content hash so identical content is rendered once.
type PreviewRenderer struct {
	basePath string
	size     int
}

// NewPreviewRenderer creates the preview directory. An empty dir resolves to
// the user config directory.
func NewPreviewRenderer(dir string, size int) (*PreviewRenderer, error) {
	if dir == "" {
		var err error
		dir, err = defaultPreviewPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve preview path: %w", err)
		}
	}
	if size <= 0 {
		size = 256
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create preview directory: %w", err)
	}

	return &PreviewRenderer{basePath: dir, size: size}, nil
}

// IsImage sniffs content the way net/http does.
func IsImage(content []byte) bool {
	return strings.HasPrefix(http.DetectContentType(content), "image/")
}

// Render decodes content and saves a thumbnail fitting size x size.
// Returns the local file path on success
func (r *PreviewRenderer) Render(contentHash [32]byte, content []byte) (string, error) {
	if !IsImage(content) {
		return "", ErrNotImage
	}

	filePath := r.Path(contentHash)
	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil // Cache Hit
	}

	srcImg, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Fit(srcImg, r.size, r.size, imaging.Lanczos)

	if err := imaging.Save(thumb, filePath); err != nil {
		return "", fmt.Errorf("failed to save preview: %w", err)
	}

	return filePath, nil
}

// Path returns the local path for a content hash's preview.
func (r *PreviewRenderer) Path(contentHash [32]byte) string {
	return filepath.Join(r.basePath, strings.TrimPrefix(hexutil.Encode(contentHash[:]), "0x")+".png")
}

func defaultPreviewPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "Tuli", "previews"), nil
}
