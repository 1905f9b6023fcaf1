// Package paginator 提供列表查询的结果窗口控制
package paginator

import (
	"gorm.io/gorm"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Paginator 分页参数
// 设计说明:
// 1. Page是行偏移量(OFFSET),不是页号
// 2. PerPage是LIMIT,0为哨兵值,表示"自偏移量起取全部"
// 3. 不变式:两者均非负,由New保证
type Paginator struct {
	Page    int // 跳过的记录数
	PerPage int // 每页记录数,0=不限
}

// New 创建分页参数
// 负数属于非法输入,返回参数错误
func New(page, perPage int) (*Paginator, error) {
	if page < 0 || perPage < 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "分页参数不能为负数")
	}
	return &Paginator{Page: page, PerPage: perPage}, nil
}

// Apply 将分页窗口应用到查询
// 契约:
// 1. nil分页器 → 查询原样返回
// 2. PerPage==0 → 只设OFFSET不设LIMIT
// 3. 必须应用在最终(含JOIN的外层)查询上,调用方负责先JOIN后分页
func (p *Paginator) Apply(db *gorm.DB) *gorm.DB {
	if p == nil {
		return db
	}
	if p.PerPage == 0 {
		return db.Offset(p.Page)
	}
	return db.Offset(p.Page).Limit(p.PerPage)
}
