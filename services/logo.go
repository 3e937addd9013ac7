package services

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"io/fs"

	"github.com/disintegration/imaging"
)

// LogoMaxWidth is the width the logo is scaled down to before embedding
const LogoMaxWidth = 240

// LoadLogoDataURI reads the image at path, shrinks it to maxWidth keeping the
// aspect ratio, and returns it as a PNG data URI. A missing file yields "".
func LoadLogoDataURI(path string, maxWidth int) (string, error) {
	img, err := imaging.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to open logo: %w", err)
	}

	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode logo: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
