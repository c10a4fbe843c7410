package controllers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "reservation-system/pkg/errors"
	"reservation-system/pkg/filestorage"
	"reservation-system/pkg/validation"
)

// bindBody decodes the request body into dst and runs the echo validator.
func bindBody(ctx echo.Context, dst interface{}) error {
	if err := ctx.Bind(dst); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "invalid request body", apperrors.ErrBadRequest, nil)
	}
	return ctx.Validate(dst)
}

// importUpload is a validated import file, rewound to its first byte.
type importUpload struct {
	file   multipart.File
	name   string
	format string
}

func (u *importUpload) Close() error { return u.file.Close() }

// openImportUpload reads the "file" part of a multipart upload. When
// archive is set a copy is stored under prefix first; a failed copy is
// logged and does not stop the import.
func openImportUpload(ctx echo.Context, archive filestorage.FileStorageInterface, prefix string, logger *zap.Logger) (*importUpload, error) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "file is missing", apperrors.ErrBadRequest, nil)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "upload could not be read", err, nil)
	}

	format, err := validation.ValidateImportFile(fileHeader, src)
	if err != nil {
		src.Close()
		return nil, err
	}

	if archive != nil {
		saved, err := archive.Save(src, fileHeader.Filename, prefix)
		if err != nil {
			logger.Error("openImportUpload: archiving failed", zap.String("file", fileHeader.Filename), zap.Error(err))
		} else {
			logger.Info("openImportUpload: upload archived", zap.String("file", fileHeader.Filename), zap.String("path", saved))
		}
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			src.Close()
			return nil, err
		}
	}

	return &importUpload{file: src, name: fileHeader.Filename, format: format}, nil
}
