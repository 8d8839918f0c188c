package handler

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/keshavmohta09/RosterPulse/internal/service"
	pkgerrors "github.com/keshavmohta09/RosterPulse/pkg/errors"
	"github.com/keshavmohta09/RosterPulse/pkg/response"
	"github.com/keshavmohta09/RosterPulse/pkg/validate"
)

const msgNotAuthenticated = "Authentication credentials were not provided."

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, msgNotAuthenticated)
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, msgNotAuthenticated)
		return "", false
	}
	return s, true
}

// pathID 读取路径中的 UUID；格式非法与不存在同样处理，由调用方返回 404
func pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// bindFailed 参数绑定/校验失败，details 为逐字段提示
func bindFailed(c *gin.Context, code int, err error) {
	response.ErrorWithDetails(c, 400, code, "Invalid request", validate.Message(err))
}

// businessError ValidationError / IntegrityError → 400；其他错误返回 false
func businessError(c *gin.Context, code int, err error) bool {
	if pkgerrors.IsValidation(err) || pkgerrors.IsIntegrity(err) {
		response.BadRequest(c, code, pkgerrors.Message(err))
		return true
	}
	return false
}

// readUpload 读取上传文件，最多读取 limit+1 字节以便后续报告超限
func readUpload(fh *multipart.FileHeader, limit int64) (*service.ImageUpload, error) {
	if fh == nil {
		return nil, errors.New("no file")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	return &service.ImageUpload{Filename: fh.Filename, Data: data}, nil
}
