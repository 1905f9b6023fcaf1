package dto

import (
	"time"

	"github.com/xiebiao/bookshop/internal/domain/book"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/filter"
	"github.com/xiebiao/bookshop/pkg/paginator"
)

// PageQuery 分页查询参数
// page是行偏移量(OFFSET),per_page为0表示不限(自偏移量起取全部)
type PageQuery struct {
	Page    int  `form:"page" binding:"omitempty,min=0" example:"0"`
	PerPage *int `form:"per_page" binding:"omitempty,min=0" example:"20"`
}

// ToPaginator 转换为分页器
// per_page未提供时使用配置的默认值
func (q *PageQuery) ToPaginator(defaultPerPage int) (*paginator.Paginator, error) {
	perPage := defaultPerPage
	if q.PerPage != nil {
		perPage = *q.PerPage
	}
	return paginator.New(q.Page, perPage)
}

// RatingPayload 评分载荷(创建/更新图书时附带)
type RatingPayload struct {
	Average float64 `json:"average" binding:"min=0,max=10" example:"4.5"`
	Votes   int     `json:"votes" binding:"min=0" example:"1024"`
	Reviews int     `json:"reviews" binding:"min=0" example:"300"`
}

// AddBookRequest HTTP添加图书请求
// rating可选,提供时随图书一并创建评分记录
type AddBookRequest struct {
	Title           string         `json:"title" binding:"required,max=200" example:"The Go Programming Language"`
	Authors         []string       `json:"authors" binding:"required,min=1,dive,max=100" example:"Alan Donovan,Brian Kernighan"`
	ISBN            string         `json:"isbn" binding:"required" example:"0134190440"`
	ISBN13          string         `json:"isbn13" binding:"omitempty" example:"9780134190440"`
	Language        string         `json:"language" binding:"omitempty,max=20" example:"eng"`
	Pages           int            `json:"pages" binding:"min=0" example:"380"`
	PublicationDate string         `json:"publication_date" binding:"required" example:"2015-11-16"`
	Publisher       string         `json:"publisher" binding:"omitempty,max=100" example:"Addison-Wesley"`
	Price           int64          `json:"price" binding:"required,min=1" example:"5900"` // 价格(分)
	Rating          *RatingPayload `json:"rating" binding:"omitempty"`
}

// ToEntity 转换为图书实体
func (r *AddBookRequest) ToEntity() (*book.Book, error) {
	pubDate, err := time.Parse(time.DateOnly, r.PublicationDate)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidParams, "出版日期格式错误,应为YYYY-MM-DD: %s", r.PublicationDate)
	}
	b := book.NewBook(r.Title, r.Authors, r.ISBN, r.ISBN13, r.Language, r.Pages, pubDate, r.Publisher, r.Price)
	if r.Rating != nil {
		b.Rating = &book.Rating{
			Average: r.Rating.Average,
			Votes:   r.Rating.Votes,
			Reviews: r.Rating.Reviews,
		}
	}
	return b, nil
}

// UpdateBookRequest HTTP部分更新请求
// 全部字段可选,只更新提供的字段;一个字段都不提供是参数错误
type UpdateBookRequest struct {
	Title           *string  `json:"title" binding:"omitempty,max=200"`
	Authors         []string `json:"authors" binding:"omitempty,min=1,dive,max=100"`
	ISBN            *string  `json:"isbn" binding:"omitempty"`
	ISBN13          *string  `json:"isbn13" binding:"omitempty"`
	Language        *string  `json:"language" binding:"omitempty,max=20"`
	Pages           *int     `json:"pages" binding:"omitempty,min=0"`
	PublicationDate *string  `json:"publication_date" binding:"omitempty"`
	Publisher       *string  `json:"publisher" binding:"omitempty,max=100"`
	Price           *int64   `json:"price" binding:"omitempty,min=1"`

	Rating *RatingUpdatePayload `json:"rating" binding:"omitempty"`
}

// RatingUpdatePayload 评分部分更新载荷
type RatingUpdatePayload struct {
	Average *float64 `json:"average" binding:"omitempty,min=0,max=10"`
	Votes   *int     `json:"votes" binding:"omitempty,min=0"`
	Reviews *int     `json:"reviews" binding:"omitempty,min=0"`
}

// ToPatch 转换为领域层更新载荷
func (r *UpdateBookRequest) ToPatch() (*book.Patch, error) {
	patch := &book.Patch{
		Title:     r.Title,
		Authors:   r.Authors,
		ISBN:      r.ISBN,
		ISBN13:    r.ISBN13,
		Language:  r.Language,
		Pages:     r.Pages,
		Publisher: r.Publisher,
		Price:     r.Price,
	}
	if r.PublicationDate != nil {
		pubDate, err := time.Parse(time.DateOnly, *r.PublicationDate)
		if err != nil {
			return nil, apperrors.Newf(apperrors.ErrCodeInvalidParams, "出版日期格式错误,应为YYYY-MM-DD: %s", *r.PublicationDate)
		}
		patch.PublicationDate = &pubDate
	}
	if r.Rating != nil {
		patch.Rating = &book.RatingPatch{
			Average: r.Rating.Average,
			Votes:   r.Rating.Votes,
			Reviews: r.Rating.Reviews,
		}
	}
	return patch, nil
}

// ListBooksRequest HTTP图书列表请求
type ListBooksRequest struct {
	PageQuery
	IncludeRatings bool `form:"include_ratings" example:"false"`
}

// BookIDsRequest HTTP批量查询请求
// 形如 /book/ids/?id=1&id=2&id=3
type BookIDsRequest struct {
	IDs []uint `form:"id" binding:"required,min=1"`
}

// SearchBooksRequest HTTP图书搜索请求
// 设计说明:
// 1. 字符串字段是子串匹配,范围字段是(value, operator)成对出现
// 2. 值与运算符任一缺失时该字段折叠为"无过滤",不报错
// 3. 数值字段用指针区分"未提供"与合法的0
type SearchBooksRequest struct {
	PageQuery

	Title     string `form:"title" binding:"omitempty,max=200"`
	Author    string `form:"author" binding:"omitempty,max=100"`
	Publisher string `form:"publisher" binding:"omitempty,max=100"`
	Language  string `form:"language" binding:"omitempty,max=20"`

	PublicationDate string `form:"publication_date" binding:"omitempty"` // YYYY-MM-DD
	DateOperator    string `form:"date_operator" binding:"omitempty,oneof=gt ge lt le eq"`

	Average         *float64 `form:"average" binding:"omitempty,min=0,max=10"`
	AverageOperator string   `form:"average_operator" binding:"omitempty,oneof=gt ge lt le eq"`
	Votes           *int     `form:"votes" binding:"omitempty,min=0"`
	VotesOperator   string   `form:"votes_operator" binding:"omitempty,oneof=gt ge lt le eq"`
	Reviews         *int     `form:"reviews" binding:"omitempty,min=0"`
	ReviewsOperator string   `form:"reviews_operator" binding:"omitempty,oneof=gt ge lt le eq"`
}

// ToFilter 转换为领域搜索过滤器
func (r *SearchBooksRequest) ToFilter() (*book.Filter, error) {
	f := &book.Filter{
		Title:     r.Title,
		Author:    r.Author,
		Publisher: r.Publisher,
		Language:  r.Language,
	}

	if r.PublicationDate != "" {
		pubDate, err := time.Parse(time.DateOnly, r.PublicationDate)
		if err != nil {
			return nil, apperrors.Newf(apperrors.ErrCodeInvalidParams, "出版日期格式错误,应为YYYY-MM-DD: %s", r.PublicationDate)
		}
		op, err := filter.ParseOperator(r.DateOperator)
		if err != nil {
			return nil, err
		}
		f.PublicationDate = filter.NewRange(pubDate, op)
	}

	ratings, err := r.ratingsFilter()
	if err != nil {
		return nil, err
	}
	f.Ratings = ratings
	return f, nil
}

func (r *SearchBooksRequest) ratingsFilter() (*book.RatingsFilter, error) {
	rf := &book.RatingsFilter{}
	hit := false

	if r.Average != nil {
		op, err := filter.ParseOperator(r.AverageOperator)
		if err != nil {
			return nil, err
		}
		if rf.Average = filter.NewRange(*r.Average, op); rf.Average != nil {
			hit = true
		}
	}
	if r.Votes != nil {
		op, err := filter.ParseOperator(r.VotesOperator)
		if err != nil {
			return nil, err
		}
		if rf.Votes = filter.NewRange(*r.Votes, op); rf.Votes != nil {
			hit = true
		}
	}
	if r.Reviews != nil {
		op, err := filter.ParseOperator(r.ReviewsOperator)
		if err != nil {
			return nil, err
		}
		if rf.Reviews = filter.NewRange(*r.Reviews, op); rf.Reviews != nil {
			hit = true
		}
	}

	if !hit {
		return nil, nil
	}
	return rf, nil
}
