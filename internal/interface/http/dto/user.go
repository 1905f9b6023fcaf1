package dto

// RegisterRequest HTTP注册请求
// 密码策略(长度、必须含字母和数字)在领域层校验,这里只做格式绑定
type RegisterRequest struct {
	Email          string `json:"email" binding:"required,email" example:"reader@example.com"`
	Username       string `json:"username" binding:"required" example:"bookworm"`
	Password       string `json:"password" binding:"required" example:"passw0rd"`
	RepeatPassword string `json:"repeat_password" binding:"required" example:"passw0rd"`
}

// LoginRequest HTTP登录请求
// 同时支持JSON和表单提交
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email" example:"reader@example.com"`
	Password string `json:"password" form:"password" binding:"required" example:"passw0rd"`
}

// ListUsersRequest HTTP用户列表请求
type ListUsersRequest struct {
	PageQuery
}
