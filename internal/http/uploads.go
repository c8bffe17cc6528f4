package httpx

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/target/interview-ui/internal/domain/model"
	apperrors "github.com/target/interview-ui/internal/errors"
)

// parseUploadForm parses a multipart body. An oversized body is a validation
// error on the resume field.
func parseUploadForm(r *http.Request) error {
	if r.MultipartForm != nil {
		return nil
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.ValidationField("resume", uploadLimitMessage(tooLarge.Limit))
		}
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid upload")
	}
	return nil
}

func uploadLimitMessage(limit int64) string {
	return fmt.Sprintf("upload exceeds %d MB", limit>>20)
}

// formFile reads the single file posted as field. A missing file yields an empty Upload.
func formFile(r *http.Request, field string) (model.Upload, error) {
	if r.MultipartForm == nil {
		return model.Upload{}, nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return model.Upload{}, nil
	}
	return readUpload(headers[0])
}

// formFiles reads every file posted as field.
func formFiles(r *http.Request, field string) ([]model.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	var out []model.Upload
	for _, fh := range r.MultipartForm.File[field] {
		up, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, up)
	}
	return out, nil
}

func readUpload(fh *multipart.FileHeader) (model.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return model.Upload{}, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return model.Upload{}, fmt.Errorf("read upload %q: %w", fh.Filename, err)
	}
	return model.Upload{Filename: filepath.Base(fh.Filename), Content: content}, nil
}
