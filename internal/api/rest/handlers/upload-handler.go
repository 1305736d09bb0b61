package handlers

import (
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/SundayYogurt/channel_service/internal/domain"
	"github.com/SundayYogurt/channel_service/internal/dto"
	"github.com/SundayYogurt/channel_service/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const defaultMaxImageSize = 5 * 1024 * 1024

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// formImage reads an optional image field from a multipart form.
// A missing field yields (nil, nil).
func formImage(ctx *fiber.Ctx, field string, maxSize int64) (*dto.FileUpload, error) {
	file, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return nil, nil
		}
		return nil, domain.InvalidArgument("invalid multipart form")
	}
	return readImage(file, field, maxSize)
}

func readImage(file *multipart.FileHeader, field string, maxSize int64) (*dto.FileUpload, error) {
	if maxSize <= 0 {
		maxSize = defaultMaxImageSize
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExt[ext] {
		return nil, domain.InvalidArgument(field + ": only jpg/jpeg/png/webp allowed")
	}

	if file.Size > maxSize {
		return nil, domain.InvalidArgument(field + ": file too large")
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.Internal("cannot open uploaded file", err)
	}
	defer f.Close()

	b, err := utils.ReadAllLimit(f, maxSize)
	if err != nil {
		if errors.Is(err, utils.ErrFileTooLarge) {
			return nil, domain.InvalidArgument(field + ": file too large")
		}
		return nil, domain.Internal("cannot read uploaded file", err)
	}

	return &dto.FileUpload{
		Filename:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Bytes:       b,
	}, nil
}
