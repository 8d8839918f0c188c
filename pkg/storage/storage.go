// Package storage 上传文件的校验与落盘
package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	pkgerrors "github.com/keshavmohta09/RosterPulse/pkg/errors"
	"github.com/keshavmohta09/RosterPulse/pkg/validate"
)

// Storage 文件存储抽象
type Storage interface {
	// Save 写入 key 对应的文件，返回可持久化的引用
	Save(ctx context.Context, key string, data []byte) (string, error)
	// Delete 删除已写入的文件，文件不存在视为成功
	Delete(ctx context.Context, key string) error
}

// LocalStorage 本地磁盘存储，key 为相对 root 的路径
type LocalStorage struct {
	root string
}

// NewLocalStorage 创建本地存储
func NewLocalStorage(root string) *LocalStorage {
	return &LocalStorage{root: root}
}

func (s *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("非法的存储路径: %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// Save 先写临时文件再重命名，避免读到半截文件
func (s *LocalStorage) Save(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("创建目录失败: %w", err)
	}

	tmp := full + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("写入文件失败: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("重命名文件失败: %w", err)
	}
	return filepath.ToSlash(filepath.Clean(filepath.FromSlash(key))), nil
}

// Delete 删除文件
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	full, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除文件失败: %w", err)
	}
	return nil
}

// ── 图片校验 ──

const invalidImageMessage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// Extension 返回小写扩展名（不含点）
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// ValidateImage 校验上传图片：大小、扩展名、内容类型、可解码
// 失败返回 *pkgerrors.ValidationError
func ValidateImage(filename string, data []byte, maxBytes int64) error {
	if len(data) == 0 {
		return pkgerrors.NewValidation("The submitted file is empty.")
	}
	if int64(len(data)) > maxBytes {
		return pkgerrors.NewValidationf("Max file size limit is %d MB.", maxBytes/(1024*1024))
	}
	if !validate.HasImageExt(filename) {
		return pkgerrors.NewValidationf(
			"File extension %q is not allowed. Allowed extensions are: %s.",
			Extension(filename), strings.Join(validate.ImageExtensions, ", "),
		)
	}

	mt := mimetype.Detect(data)
	if !mt.Is("image/jpeg") && !mt.Is("image/png") {
		return pkgerrors.NewValidation(invalidImageMessage)
	}
	if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
		return pkgerrors.NewValidation(invalidImageMessage)
	}
	return nil
}
