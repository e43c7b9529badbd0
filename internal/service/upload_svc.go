package service

import (
	"context"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"kibanda_backend/internal/errs"
)

// ==================== 上传规则 ====================

// UploadKind 上传类别，决定目录与大小限制
type UploadKind struct {
	Dir     string // uploads 下的子目录
	MaxSize int64  // 字节
}

var (
	// UploadProductImage 商品图片：5MB
	UploadProductImage = UploadKind{Dir: "products", MaxSize: 5 << 20}
	// UploadAvatar 用户头像：2MB
	UploadAvatar = UploadKind{Dir: "users", MaxSize: 2 << 20}
)

// 允许的图片格式，按扩展名与实际内容双重校验
var allowedImageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ==================== UploadService ====================

// UploadService 图片上传服务
type UploadService struct {
	storage StorageProvider
}

// NewUploadService 创建上传服务
func NewUploadService(storage StorageProvider) *UploadService {
	return &UploadService{storage: storage}
}

// SaveImage 校验并保存上传的图片，返回公开访问URL
// 扩展名与文件内容都必须是允许的图片格式，内容以 MIME 嗅探为准
func (s *UploadService) SaveImage(ctx context.Context, file *multipart.FileHeader, kind UploadKind) (string, error) {
	if file == nil {
		return "", errs.Validationf("image file is required")
	}
	if file.Size > kind.MaxSize {
		return "", errs.Validationf("image exceeds size limit of %dMB", kind.MaxSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedImageExts[ext]; !ok {
		return "", errs.Validationf("unsupported image format: only JPEG, PNG, WebP and GIF are allowed")
	}

	src, err := file.Open()
	if err != nil {
		return "", errs.Internal("failed to open uploaded file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, kind.MaxSize+1))
	if err != nil {
		return "", errs.Internal("failed to read uploaded file", err)
	}
	if int64(len(data)) > kind.MaxSize {
		return "", errs.Validationf("image exceeds size limit of %dMB", kind.MaxSize>>20)
	}

	mime := mimetype.Detect(data)
	if !isAllowedImageMIME(mime.String()) {
		return "", errs.Validationf("file content is not a supported image")
	}

	url, err := s.storage.Upload(ctx, data, kind.Dir, GenerateFilename(file.Filename), mime.String())
	if err != nil {
		return "", errs.Internal("failed to store image", err)
	}
	return url, nil
}

// DeleteImage 删除已上传的图片，删除失败不阻断业务
func (s *UploadService) DeleteImage(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	return s.storage.Delete(ctx, url)
}

func isAllowedImageMIME(mime string) bool {
	for _, allowed := range allowedImageExts {
		if mime == allowed {
			return true
		}
	}
	return false
}
