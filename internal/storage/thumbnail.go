package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strings"

	"github.com/nfnt/resize"
)

const thumbnailPrefix = "thumbnails/"

// Thumbnail decodes a JPEG, PNG or GIF image and re-encodes it as a JPEG
// that fits inside a maxDim x maxDim box. Smaller images are not upscaled.
func Thumbnail(r io.Reader, maxDim int) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("unsupported image format or corrupt image: %w", err)
	}

	bound := uint(maxDim)
	thumb := resize.Thumbnail(bound, bound, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// ThumbnailKey maps a photo key to the key of its thumbnail
func ThumbnailKey(key string) string {
	return thumbnailPrefix + strings.TrimSuffix(key, path.Ext(key)) + ".jpg"
}
