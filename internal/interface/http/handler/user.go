package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/response"
)

// UserHandler 用户HTTP处理器
type UserHandler struct {
	registerUseCase *appuser.RegisterUseCase
	loginUseCase    *appuser.LoginUseCase
	logoutUseCase   *appuser.LogoutUseCase
	queryUseCase    *appuser.QueryUseCase
	defaultPerPage  int
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	registerUseCase *appuser.RegisterUseCase,
	loginUseCase *appuser.LoginUseCase,
	logoutUseCase *appuser.LogoutUseCase,
	queryUseCase *appuser.QueryUseCase,
	defaultPerPage int,
) *UserHandler {
	return &UserHandler{
		registerUseCase: registerUseCase,
		loginUseCase:    loginUseCase,
		logoutUseCase:   logoutUseCase,
		queryUseCase:    queryUseCase,
		defaultPerPage:  defaultPerPage,
	}
}

// Register 用户注册
// @Summary      用户注册
// @Description  创建新账号;校验邮箱格式、用户名长度、两次密码一致与密码强度
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      201 {object} response.Response{data=appuser.UserInfo}
// @Failure      400 {object} response.Response "参数错误或密码强度不足"
// @Failure      409 {object} response.Response "邮箱已被注册"
// @Router       /user/register/ [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.registerUseCase.Execute(c.Request.Context(), appuser.RegisterRequest{
		Email:          req.Email,
		Username:       req.Username,
		Password:       req.Password,
		RepeatPassword: req.RepeatPassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Login 用户登录
// @Summary      用户登录
// @Description  验证邮箱密码,签发Bearer Token;邮箱不存在与密码错误返回同一个错误
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=appuser.LoginResponse}
// @Failure      400 {object} response.Response "邮箱或密码错误"
// @Router       /user/login/ [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appuser.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Logout 用户登出
// @Summary      用户登出
// @Description  删除会话并将当前Token加入黑名单直至其自然过期
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Router       /user/logout/ [post]
func (h *UserHandler) Logout(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.logoutUseCase.Execute(c.Request.Context(), u.ID, middleware.AccessToken(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// Current 当前用户
// @Summary      当前用户
// @Description  返回Token对应的用户信息
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appuser.UserInfo}
// @Failure      401 {object} response.Response "未登录"
// @Router       /user/current/ [get]
func (h *UserHandler) Current(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	response.Success(c, h.queryUseCase.Current(u))
}

// List 用户列表
// @Summary      用户列表
// @Description  管理员分页查询全部用户
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "行偏移量" default(0)
// @Param        per_page query int false "每页数量,0表示不限" default(20)
// @Success      200 {object} response.Response{data=[]appuser.UserInfo}
// @Failure      403 {object} response.Response "非管理员"
// @Router       /user/ [get]
func (h *UserHandler) List(c *gin.Context) {
	var req dto.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := req.ToPaginator(h.defaultPerPage)
	if err != nil {
		response.Error(c, err)
		return
	}

	users, err := h.queryUseCase.List(c.Request.Context(), p)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, users)
}

// Get 用户详情
// @Summary      用户详情
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response{data=appuser.UserInfo}
// @Failure      403 {object} response.Response "非管理员"
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /user/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	info, err := h.queryUseCase.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, info)
}
