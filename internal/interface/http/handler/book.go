package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookshop/internal/application/book"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/response"
)

// BookHandler 图书HTTP处理器
// 设计说明：
// 1. Handler只负责HTTP相关的事情：解析请求、调用应用层、返回响应
// 2. 业务逻辑在domain和application层,这里不做判断
// 3. 搜索的(值,运算符)折叠语义在dto层处理,Handler不感知
type BookHandler struct {
	queryUseCase   *appbook.QueryUseCase
	manageUseCase  *appbook.ManageUseCase
	defaultPerPage int
}

// NewBookHandler 创建图书处理器
func NewBookHandler(queryUseCase *appbook.QueryUseCase, manageUseCase *appbook.ManageUseCase, defaultPerPage int) *BookHandler {
	return &BookHandler{
		queryUseCase:   queryUseCase,
		manageUseCase:  manageUseCase,
		defaultPerPage: defaultPerPage,
	}
}

// List 图书列表
// @Summary      图书列表
// @Description  分页查询全部图书,include_ratings=true时附带评分
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "行偏移量" default(0)
// @Param        per_page query int false "每页数量,0表示不限" default(20)
// @Param        include_ratings query bool false "是否附带评分"
// @Success      200 {object} response.Response{data=[]appbook.BookInfo}
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "没有任何图书"
// @Router       /book/ [get]
func (h *BookHandler) List(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := req.ToPaginator(h.defaultPerPage)
	if err != nil {
		response.Error(c, err)
		return
	}

	books, err := h.queryUseCase.List(c.Request.Context(), req.IncludeRatings, p)
	if err != nil {
		response.Error(c, err)
		return
	}
	// 空结果按"资源不存在"处理,不是空数组
	if len(books) == 0 {
		response.Error(c, apperrors.ErrBookNotFound)
		return
	}

	response.Success(c, books)
}

// Get 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookInfo}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /book/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
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

// GetByIDs 批量查询图书
// @Summary      批量查询图书
// @Description  按ID列表查询,形如 /book/ids/?id=1&id=2;不存在的ID被静默跳过
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id query []uint true "图书ID列表"
// @Success      200 {object} response.Response{data=[]appbook.BookInfo}
// @Failure      404 {object} response.Response "一本都没找到"
// @Router       /book/ids/ [get]
func (h *BookHandler) GetByIDs(c *gin.Context) {
	var req dto.BookIDsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	books, err := h.queryUseCase.GetByIDs(c.Request.Context(), req.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(books) == 0 {
		response.Error(c, apperrors.ErrBookNotFound)
		return
	}

	response.Success(c, books)
}

// Search 图书搜索
// @Summary      图书搜索
// @Description  动态组合过滤:字符串字段子串匹配,范围字段为(值,运算符)对;命中评分条件时JOIN评分表,分页作用于JOIN后的结果
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        title query string false "标题子串"
// @Param        author query string false "作者子串"
// @Param        publisher query string false "出版社子串"
// @Param        language query string false "语言子串"
// @Param        publication_date query string false "出版日期 YYYY-MM-DD"
// @Param        date_operator query string false "比较运算符" Enums(gt, ge, lt, le, eq)
// @Param        average query number false "平均评分 0-10"
// @Param        average_operator query string false "比较运算符" Enums(gt, ge, lt, le, eq)
// @Param        votes query int false "评分人数"
// @Param        votes_operator query string false "比较运算符" Enums(gt, ge, lt, le, eq)
// @Param        reviews query int false "评论数"
// @Param        reviews_operator query string false "比较运算符" Enums(gt, ge, lt, le, eq)
// @Param        page query int false "行偏移量" default(0)
// @Param        per_page query int false "每页数量,0表示不限" default(20)
// @Success      200 {object} response.Response{data=[]appbook.BookInfo}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /book/search/ [get]
func (h *BookHandler) Search(c *gin.Context) {
	var req dto.SearchBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	f, err := req.ToFilter()
	if err != nil {
		response.Error(c, err)
		return
	}
	p, err := req.ToPaginator(h.defaultPerPage)
	if err != nil {
		response.Error(c, err)
		return
	}

	books, err := h.queryUseCase.Search(c.Request.Context(), f, p)
	if err != nil {
		response.Error(c, err)
		return
	}

	// 搜索无命中返回空数组,不是404
	if books == nil {
		books = []*appbook.BookInfo{}
	}
	response.Success(c, books)
}

// Add 添加图书
// @Summary      添加图书
// @Description  管理员添加图书,可附带评分;图书与评分是两次独立提交
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=appbook.BookInfo}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "非管理员"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /book/add/ [post]
func (h *BookHandler) Add(c *gin.Context) {
	var req dto.AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := req.ToEntity()
	if err != nil {
		response.Error(c, err)
		return
	}

	info, err := h.manageUseCase.Add(c.Request.Context(), b)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, info)
}

// Update 更新图书
// @Summary      更新图书
// @Description  管理员部分更新,只改提供的字段;评分子对象单独落库,图书无评分记录时忽略
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.UpdateBookRequest true "更新字段"
// @Success      200 {object} response.Response{data=appbook.BookInfo}
// @Failure      400 {object} response.Response "空载荷或参数错误"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /book/update/{id} [patch]
func (h *BookHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		response.Error(c, err)
		return
	}

	info, err := h.manageUseCase.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, info)
}

// Remove 删除图书
// @Summary      删除图书
// @Description  管理员删除图书,先删评分记录再删图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /book/remove/{id} [delete]
func (h *BookHandler) Remove(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.manageUseCase.Remove(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"id": id})
}

// parseIDParam 解析路径中的ID参数,失败时已写入400响应
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "ID必须是正整数")
		return 0, false
	}
	return uint(id), true
}
