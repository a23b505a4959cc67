package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"cakeshop/internal/common/apperr"
)

var imageExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type UploadServiceInterface interface {
	SaveImage(file multipart.File, header *multipart.FileHeader) (string, error)
	MaxBytes() int64
	Dir() string
}

type UploadService struct {
	dir      string
	maxBytes int64
}

func NewUploadService(dir string, maxBytes int64) UploadServiceInterface {
	return &UploadService{dir: dir, maxBytes: maxBytes}
}

func (s *UploadService) MaxBytes() int64 { return s.maxBytes }
func (s *UploadService) Dir() string     { return s.dir }

// SaveImage stores an image under cake-<uuid><ext> and returns that name.
// The extension follows the sniffed content type, never the client's name.
func (s *UploadService) SaveImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > s.maxBytes {
		return "", apperr.Validation("image exceeds %d bytes", s.maxBytes)
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "read upload")
	}
	ext, ok := imageExt[http.DetectContentType(sniff[:n])]
	if !ok {
		return "", apperr.Validation("only png, jpeg, gif or webp images are allowed")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", errors.Wrap(err, "rewind upload")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create upload dir")
	}
	name := fmt.Sprintf("cake-%s%s", uuid.NewString(), ext)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create image file")
	}
	written, err := io.Copy(dst, io.LimitReader(file, s.maxBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", errors.Wrap(err, "write image file")
	}
	if written > s.maxBytes {
		os.Remove(path)
		return "", apperr.Validation("image exceeds %d bytes", s.maxBytes)
	}
	return name, nil
}
