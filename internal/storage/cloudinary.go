package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// DefaultCloudinaryFolder groups the site's uploads in the media library.
const DefaultCloudinaryFolder = "hahn-mechanical/gallery"

// CloudinaryStore 将图片上传到 Cloudinary，返回 https 地址。
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	logger *zap.Logger
}

// NewCloudinaryStore 通过 cloudinary:// 连接串初始化客户端。
func NewCloudinaryStore(connectionURL, folder string, logger *zap.Logger) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(connectionURL)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	if strings.TrimSpace(folder) == "" {
		folder = DefaultCloudinaryFolder
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudinaryStore{cld: cld, folder: folder, logger: logger}, nil
}

// Save 上传文件，PublicID 与本地存储使用相同的命名规则。
func (s *CloudinaryStore) Save(ctx context.Context, _, _ string, r io.Reader) (string, error) {
	publicID := uniqueStem(time.Now())
	overwrite := false
	unique := false

	res, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       publicID,
		Overwrite:      &overwrite,
		UniqueFilename: &unique,
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}

	s.logger.Info("cloudinary upload complete", zap.String("public_id", res.PublicID))
	return res.SecureURL, nil
}
