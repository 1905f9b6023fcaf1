package book

import (
	"context"
	"time"

	"github.com/xiebiao/bookshop/pkg/paginator"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 便于Mock测试,不依赖具体数据库实现
type Repository interface {
	// Create 创建图书,rating随图书一并提供时级联创建
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书(含评分)
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByIDs 批量根据ID查找,缺失的ID静默跳过
	FindByIDs(ctx context.Context, ids []uint) ([]*Book, error)

	// FindByISBN 根据ISBN查找图书
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// List 分页查询图书列表
	// includeRatings为true时附带评分信息
	List(ctx context.Context, includeRatings bool, p *paginator.Paginator) ([]*Book, error)

	// Search 按过滤器搜索,命中评分条件时JOIN评分表
	// 分页作用于JOIN后的外层查询
	Search(ctx context.Context, f *Filter, p *paginator.Paginator) ([]*Book, error)

	// Update 部分更新,只覆盖patch中提供的字段
	// 评分子对象单独更新,且仅当图书已有评分记录时生效
	Update(ctx context.Context, id uint, patch *Patch) (*Book, error)

	// Delete 删除图书,先删评分记录再删图书
	Delete(ctx context.Context, id uint) error

	// SetReserved 批量设置预订标记(下单置位/清理释放)
	SetReserved(ctx context.Context, ids []uint, reserved bool) error
}

// Patch 部分更新载荷
// 指针区分"未提供"与"置为零值"
type Patch struct {
	Title           *string
	Authors         []string
	ISBN            *string
	ISBN13          *string
	Language        *string
	Pages           *int
	PublicationDate *time.Time
	Publisher       *string
	Price           *int64
	Rating          *RatingPatch
}

// RatingPatch 评分部分更新载荷
type RatingPatch struct {
	Average *float64
	Votes   *int
	Reviews *int
}

// Empty 载荷是否未提供任何字段
func (p *Patch) Empty() bool {
	if p == nil {
		return true
	}
	return p.Title == nil && p.Authors == nil && p.ISBN == nil && p.ISBN13 == nil &&
		p.Language == nil && p.Pages == nil && p.PublicationDate == nil &&
		p.Publisher == nil && p.Price == nil && p.Rating == nil
}
