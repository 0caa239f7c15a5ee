package services

import (
	"bytes"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// DefaultMaxUploadSize caps uploaded resumes at 10 MiB.
const DefaultMaxUploadSize int64 = 10 << 20

// ErrUploadTooLarge means the file exceeds the configured size limit.
var ErrUploadTooLarge = errors.New("file too large")

var pdfMagic = []byte("%PDF-")

// UploadReader reads an uploaded resume into memory. Nothing is written to
// disk; the bytes live only for the request.
type UploadReader interface {
	Read(file *multipart.FileHeader) ([]byte, error)
	MaxSize() int64
}

type uploadReader struct {
	maxSize int64
}

func NewUploadReader(maxSize int64) UploadReader {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &uploadReader{maxSize: maxSize}
}

func (u *uploadReader) MaxSize() int64 { return u.maxSize }

func (u *uploadReader) Read(file *multipart.FileHeader) ([]byte, error) {
	if err := checkExtension(file.Filename); err != nil {
		return nil, err
	}
	if file.Size > u.maxSize {
		return nil, errors.Wrapf(ErrUploadTooLarge, "%d bytes, max %d", file.Size, u.maxSize)
	}

	src, err := file.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, u.maxSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "read uploaded file")
	}
	if err := ValidateUpload(file.Filename, data, u.maxSize); err != nil {
		return nil, err
	}
	return data, nil
}

// ValidateUpload checks the extension, size and PDF header of a document.
func ValidateUpload(filename string, data []byte, maxSize int64) error {
	if err := checkExtension(filename); err != nil {
		return err
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return errors.Wrapf(ErrUploadTooLarge, "max %d bytes", maxSize)
	}

	// readers accept the header anywhere in the first 1024 bytes
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if !bytes.Contains(head, pdfMagic) {
		return errors.Wrap(ErrDocument, "missing PDF header")
	}
	return nil
}

func checkExtension(filename string) error {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".pdf" {
		return errors.Wrapf(ErrDocument, "invalid file extension: %q", ext)
	}
	return nil
}
