package postsite

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	jpegQuality = 80
	imagesDir   = "images"
)

// scaleImage returns data unchanged when the image is at most maxWidth wide.
// Wider JPEG and PNG images are scaled down with CatmullRom and re-encoded in
// their own format, so links in posts keep working. GIFs are never touched.
func scaleImage(data []byte, maxWidth int) ([]byte, bool, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("decode image config: %w", err)
	}
	if cfg.Width <= maxWidth || (format != "jpeg" && format != "png") {
		return data, false, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	newH := h * maxWidth / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	default:
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, false, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), true, nil
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}

// copyAssets mirrors the static dir into dst. Images under images/ go through
// scaleImage. It returns the number of files written and how many of them were
// resized. A missing static dir copies nothing.
func copyAssets(src, dst string, maxWidth int) (copied, resized int, err error) {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return 0, 0, nil
	}
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		out := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(out, 0o755)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if isImageFile(p) && strings.HasPrefix(filepath.ToSlash(rel), imagesDir+"/") {
			scaled, changed, err := scaleImage(data, maxWidth)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			if changed {
				resized++
			}
			data = scaled
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, resized, err
}
