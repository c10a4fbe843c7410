package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	apperrors "reservation-system/pkg/errors"
)

const MaxImportSizeMB = 10

// Import file formats accepted by the bulk upsert endpoints.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ValidateImportFile checks size and content of an uploaded CSV or XLSX
// file and reports which of the two it is. The read offset is rewound.
func ValidateImportFile(fileHeader *multipart.FileHeader, file io.ReadSeeker) (string, error) {
	if fileHeader.Size > MaxImportSizeMB*1024*1024 {
		return "", apperrors.NewValidationError("file is %.2f MB, the limit is %d MB", float64(fileHeader.Size)/1024/1024, MaxImportSizeMB)
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	mimeType := http.DetectContentType(buffer[:n])
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))

	switch ext {
	case ".csv":
		if strings.HasPrefix(mimeType, "text/") || mimeType == "application/octet-stream" {
			return FormatCSV, nil
		}
	case ".xlsx":
		// xlsx is a zip container
		if mimeType == "application/zip" || mimeType == "application/octet-stream" {
			return FormatXLSX, nil
		}
	default:
		return "", apperrors.NewValidationError("unsupported file extension %q, expected .csv or .xlsx", ext)
	}
	return "", apperrors.NewValidationError("file content %s does not match extension %s", mimeType, ext)
}

// FormatFromPath picks the import format from a local file name.
func FormatFromPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", apperrors.NewValidationError("unsupported file extension %q, expected .csv or .xlsx", ext)
	}
}
