package dto

// ── 认证模块请求 ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email,max=256"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新 / 登出请求体
// Cookie 中的 refresh_token 优先，Body 作为非浏览器客户端的回退
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}
