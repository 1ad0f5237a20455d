package uploads

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	ErrTooLarge    = errors.New("image is too large")
	ErrUnsupported = errors.New("only JPEG, PNG or WebP images are allowed")
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// DefaultMaxPixels caps decoded image size; a small compressed file can expand to gigabytes.
const DefaultMaxPixels = 40_000_000

// Images stores product photos on local disk, scaled down to MaxWidth and re-encoded as JPEG.
type Images struct {
	Dir       string
	MaxBytes  int64
	MaxWidth  int
	MaxPixels int
	Quality   int
}

func NewImages(dir string, maxBytes int64, maxWidth int) *Images {
	return &Images{Dir: dir, MaxBytes: maxBytes, MaxWidth: maxWidth, MaxPixels: DefaultMaxPixels, Quality: 82}
}

// SaveMultipart validates and stores an uploaded file, returning the stored file name.
func (s *Images) SaveMultipart(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.MaxBytes {
		return "", ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return s.Save(f)
}

// Save reads an image from r, resizes it if needed and writes it under Dir.
func (s *Images) Save(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.MaxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > s.MaxBytes {
		return "", ErrTooLarge
	}
	if !allowedTypes[http.DetectContentType(data)] {
		return "", ErrUnsupported
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", ErrUnsupported
	}
	if s.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(s.MaxPixels) {
		return "", ErrTooLarge
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", ErrUnsupported
	}
	img := Resize(src, s.MaxWidth)
	if o, ok := img.(interface{ Opaque() bool }); !ok || !o.Opaque() {
		img = flatten(img)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ".jpg"
	out, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: s.Quality}); err != nil {
		out.Close()
		_ = os.Remove(out.Name())
		return "", fmt.Errorf("encode image: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return name, nil
}

// Delete removes a previously stored file. Unknown or foreign paths are ignored.
func (s *Images) Delete(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Resize scales src down to maxWidth keeping the aspect ratio. Smaller images are returned as is.
func Resize(src image.Image, maxWidth int) image.Image {
	b := src.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return src
	}
	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// flatten composites src over white; JPEG has no alpha channel.
func flatten(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}
