package book

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/book"
)

// ManageUseCase 图书管理用例(新增/更新/删除,管理员专用)
type ManageUseCase struct {
	bookService book.Service
}

// NewManageUseCase 创建图书管理用例
func NewManageUseCase(bookService book.Service) *ManageUseCase {
	return &ManageUseCase{bookService: bookService}
}

// Add 新增图书
// 重复ISBN返回领域冲突错误
func (uc *ManageUseCase) Add(ctx context.Context, b *book.Book) (*BookInfo, error) {
	created, err := uc.bookService.AddBook(ctx, b)
	if err != nil {
		return nil, err
	}
	return toBookInfo(created), nil
}

// Update 部分更新图书
// 空载荷是参数错误
func (uc *ManageUseCase) Update(ctx context.Context, id uint, patch *book.Patch) (*BookInfo, error) {
	updated, err := uc.bookService.UpdateBook(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return toBookInfo(updated), nil
}

// Remove 删除图书
func (uc *ManageUseCase) Remove(ctx context.Context, id uint) error {
	return uc.bookService.RemoveBook(ctx, id)
}
