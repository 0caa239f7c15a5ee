package services

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/pkg/errors"
)

func TestValidateUpload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		data     []byte
		max      int64
		wantErr  error
	}{
		{name: "valid", filename: "jane.pdf", data: minimalPDF(1), max: 1 << 20},
		{name: "upper case extension", filename: "JANE.PDF", data: minimalPDF(1), max: 1 << 20},
		{name: "leading junk", filename: "a.pdf", data: append([]byte("\xef\xbb\xbf"), minimalPDF(1)...), max: 1 << 20},
		{name: "word document", filename: "jane.docx", data: minimalPDF(1), max: 1 << 20, wantErr: ErrDocument},
		{name: "renamed image", filename: "jane.pdf", data: []byte{0x89, 'P', 'N', 'G'}, max: 1 << 20, wantErr: ErrDocument},
		{name: "too large", filename: "jane.pdf", data: minimalPDF(1), max: 16, wantErr: ErrUploadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateUpload(tt.filename, tt.data, tt.max)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func multipartFile(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("resume", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["resume"][0]
}

func TestUploadReaderRead(t *testing.T) {
	doc := minimalPDF(2)

	data, err := NewUploadReader(0).Read(multipartFile(t, "cv.pdf", doc))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(data, doc) {
		t.Fatal("uploaded bytes changed")
	}

	if _, err := NewUploadReader(32).Read(multipartFile(t, "cv.pdf", doc)); !errors.Is(err, ErrUploadTooLarge) {
		t.Fatalf("expected ErrUploadTooLarge, got %v", err)
	}
	if _, err := NewUploadReader(0).Read(multipartFile(t, "cv.txt", doc)); !errors.Is(err, ErrDocument) {
		t.Fatalf("expected ErrDocument, got %v", err)
	}
}
