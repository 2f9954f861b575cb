package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNotImage 上传的文件不是图片
	ErrNotImage = errors.New("only image files can be uploaded")
	// ErrTooLarge 上传的文件超过大小限制
	ErrTooLarge = errors.New("uploaded file is too large")
	// ErrEmptyFile 上传的文件为空
	ErrEmptyFile = errors.New("uploaded file is empty")
)

// DefaultMaxBytes is used when no explicit limit is configured.
const DefaultMaxBytes int64 = 10 << 20

// Store 持久化上传文件并返回可公开访问的 URL。
type Store interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// Upload 描述一次成功的图片上传。
type Upload struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Uploader 校验图片、探测尺寸，再交给具体的 Store 保存。
type Uploader struct {
	store    Store
	maxBytes int64
	logger   *zap.Logger
}

// NewUploader 构造 Uploader，maxBytes <= 0 时使用 DefaultMaxBytes。
func NewUploader(store Store, maxBytes int64, logger *zap.Logger) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{store: store, maxBytes: maxBytes, logger: logger}
}

// MaxBytes returns the configured size limit.
func (u *Uploader) MaxBytes() int64 {
	return u.maxBytes
}

// AcceptFile 处理 multipart 表单中的图片文件。
func (u *Uploader) AcceptFile(ctx context.Context, header *multipart.FileHeader) (Upload, error) {
	if header == nil {
		return Upload{}, ErrEmptyFile
	}
	if header.Size > u.maxBytes {
		return Upload{}, ErrTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("open uploaded file: %w", err)
	}
	defer file.Close()

	return u.Accept(ctx, header.Filename, header.Header.Get("Content-Type"), file)
}

// Accept 校验内容类型与大小后保存文件。
// 文件必须能被解码为 gif/jpeg/png/webp，保存时的扩展名与类型取自解码结果。
func (u *Uploader) Accept(ctx context.Context, name, contentType string, r io.Reader) (Upload, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !strings.HasPrefix(contentType, "image/") {
		return Upload{}, ErrNotImage
	}

	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return Upload{}, fmt.Errorf("read uploaded file: %w", err)
	}
	if len(data) == 0 {
		return Upload{}, ErrEmptyFile
	}
	if int64(len(data)) > u.maxBytes {
		return Upload{}, ErrTooLarge
	}

	format, width, height, err := DetectImage(data)
	if err != nil {
		u.logger.Warn("rejected upload", zap.String("name", name), zap.String("content_type", contentType), zap.Error(err))
		return Upload{}, ErrNotImage
	}
	storedName := replaceExt(name, imageExtensions[format])

	url, err := u.store.Save(ctx, storedName, "image/"+format, bytes.NewReader(data))
	if err != nil {
		u.logger.Error("save upload failed", zap.String("name", storedName), zap.Error(err))
		return Upload{}, fmt.Errorf("save upload: %w", err)
	}

	u.logger.Info("image uploaded",
		zap.String("url", url),
		zap.String("format", format),
		zap.Int("bytes", len(data)),
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return Upload{URL: url, Width: width, Height: height}, nil
}

// 已注册解码器的格式与保存扩展名
var imageExtensions = map[string]string{
	"gif":  ".gif",
	"jpeg": ".jpg",
	"png":  ".png",
	"webp": ".webp",
}

// DetectImage 解码图片头部，返回格式与宽高；不是受支持的图片时返回错误。
func DetectImage(data []byte) (format string, width, height int, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", 0, 0, fmt.Errorf("decode image header: %w", err)
	}
	if _, ok := imageExtensions[format]; !ok {
		return "", 0, 0, fmt.Errorf("unsupported image format %q", format)
	}
	return format, cfg.Width, cfg.Height, nil
}

func replaceExt(name, ext string) string {
	base := filepath.Base(strings.TrimSpace(name))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "upload"
	}
	return base + ext
}

// uniqueName 生成 YYYYMMDD-<uuid><ext> 形式的文件名。
func uniqueName(original string, now time.Time) string {
	return uniqueStem(now) + strings.ToLower(filepath.Ext(original))
}

func uniqueStem(now time.Time) string {
	return fmt.Sprintf("%s-%s", now.Format("20060102"), uuid.New().String())
}
