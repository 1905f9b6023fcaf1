package book

import (
	"context"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/pkg/paginator"
)

// QueryUseCase 图书查询用例(列表/详情/批量/搜索)
type QueryUseCase struct {
	bookService book.Service
}

// NewQueryUseCase 创建图书查询用例
func NewQueryUseCase(bookService book.Service) *QueryUseCase {
	return &QueryUseCase{bookService: bookService}
}

// List 分页查询图书列表
func (uc *QueryUseCase) List(ctx context.Context, includeRatings bool, p *paginator.Paginator) ([]*BookInfo, error) {
	books, err := uc.bookService.ListBooks(ctx, includeRatings, p)
	if err != nil {
		return nil, err
	}
	return toBookInfos(books), nil
}

// GetByID 根据ID查询图书
func (uc *QueryUseCase) GetByID(ctx context.Context, id uint) (*BookInfo, error) {
	b, err := uc.bookService.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBookInfo(b), nil
}

// GetByIDs 批量查询图书
func (uc *QueryUseCase) GetByIDs(ctx context.Context, ids []uint) ([]*BookInfo, error) {
	books, err := uc.bookService.GetBooksByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return toBookInfos(books), nil
}

// Search 按过滤器搜索图书
func (uc *QueryUseCase) Search(ctx context.Context, f *book.Filter, p *paginator.Paginator) ([]*BookInfo, error) {
	books, err := uc.bookService.SearchBooks(ctx, f, p)
	if err != nil {
		return nil, err
	}
	return toBookInfos(books), nil
}

// =========================================
// 应用层DTO
// =========================================

// BookInfo 图书信息
type BookInfo struct {
	ID              uint        `json:"id"`
	Title           string      `json:"title"`
	Authors         []string    `json:"authors"`
	ISBN            string      `json:"isbn"`
	ISBN13          string      `json:"isbn13"`
	Language        string      `json:"language"`
	Pages           int         `json:"pages"`
	PublicationDate string      `json:"publication_date"`
	Publisher       string      `json:"publisher"`
	Price           int64       `json:"price"`
	Reserved        bool        `json:"reserved"`
	Rating          *RatingInfo `json:"rating,omitempty"`
}

// RatingInfo 评分信息
type RatingInfo struct {
	Average float64 `json:"average"`
	Votes   int     `json:"votes"`
	Reviews int     `json:"reviews"`
}

func toBookInfo(b *book.Book) *BookInfo {
	info := &BookInfo{
		ID:              b.ID,
		Title:           b.Title,
		Authors:         b.Authors,
		ISBN:            b.ISBN,
		ISBN13:          b.ISBN13,
		Language:        b.Language,
		Pages:           b.Pages,
		PublicationDate: b.PublicationDate.Format(time.DateOnly),
		Publisher:       b.Publisher,
		Price:           b.Price,
		Reserved:        b.Reserved,
	}
	if b.Rating != nil {
		info.Rating = &RatingInfo{
			Average: b.Rating.Average,
			Votes:   b.Rating.Votes,
			Reviews: b.Rating.Reviews,
		}
	}
	return info
}

func toBookInfos(books []*book.Book) []*BookInfo {
	infos := make([]*BookInfo, len(books))
	for i, b := range books {
		infos[i] = toBookInfo(b)
	}
	return infos
}
