// Package image разбирает картинки рецептов, присланные как base64 data URI,
// и сохраняет их в файловое хранилище.
package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GoArmGo/foodgram/internal/apperrors"
	"github.com/GoArmGo/foodgram/internal/core/ports"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageBytes - предельный размер картинки после декодирования
const MaxImageBytes = 10 << 20

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Decoded - картинка после разбора data URI
type Decoded struct {
	Data        []byte
	ContentType string
	Ext         string
}

// IsDataURI сообщает, похожа ли строка на data:image/... URI
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:image")
}

// DecodeDataURI разбирает строку вида "data:image/png;base64,<payload>"
func DecodeDataURI(s string) (*Decoded, error) {
	header, payload, ok := strings.Cut(s, ",")
	if !ok || !IsDataURI(header) {
		return nil, apperrors.Validation("image must be a base64 data URI")
	}

	mediaType, ok := strings.CutSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if !ok {
		return nil, apperrors.Validation("image must be base64 encoded")
	}
	ext, ok := extensions[strings.ToLower(mediaType)]
	if !ok {
		return nil, apperrors.Validation("unsupported image type %q", mediaType)
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+3 {
		return nil, apperrors.Validation("image is larger than %d bytes", MaxImageBytes)
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, apperrors.Validation("image payload is not valid base64")
	}
	if len(data) == 0 {
		return nil, apperrors.Validation("image is empty")
	}
	if len(data) > MaxImageBytes {
		return nil, apperrors.Validation("image is larger than %d bytes", MaxImageBytes)
	}

	// тип из заголовка должен совпадать с содержимым
	contentType := strings.ToLower(mediaType)
	if detected := mimetype.Detect(data); !detected.Is(contentType) {
		return nil, apperrors.Validation("image content is %s, not %s", detected.String(), contentType)
	}

	return &Decoded{Data: data, ContentType: contentType, Ext: ext}, nil
}

// Uploader сохраняет картинки рецептов под случайными ключами
type Uploader struct {
	files  ports.FileStorage
	logger *slog.Logger
}

func NewUploader(files ports.FileStorage, logger *slog.Logger) *Uploader {
	return &Uploader{files: files, logger: logger}
}

// Store декодирует data URI, загружает картинку и возвращает ее публичный URL
func (u *Uploader) Store(ctx context.Context, dataURI string) (string, error) {
	img, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("recipes/images/%s.%s", uuid.NewString(), img.Ext)
	url, err := u.files.UploadFile(ctx, key, bytes.NewReader(img.Data), img.ContentType)
	if err != nil {
		u.logger.Error("failed to store recipe image", "key", key, "error", err)
		return "", fmt.Errorf("ошибка при сохранении картинки: %w", err)
	}
	return url, nil
}

// Release удаляет картинку по ее URL, чужие ссылки пропускаются
func (u *Uploader) Release(ctx context.Context, url string) error {
	key, ok := u.files.KeyFromURL(url)
	if !ok {
		u.logger.Warn("skipping image outside of file storage", "url", url)
		return nil
	}
	return u.files.DeleteFile(ctx, key)
}
