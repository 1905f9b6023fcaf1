package book

import (
	"time"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Book是图书聚合的根实体,Rating作为1:1子实体挂在聚合内
// 2. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 3. ISBN作为业务唯一标识
// 4. Reserved表示图书已被订单预订,下单时置位、取消/清理时释放
type Book struct {
	ID              uint
	Title           string
	Authors         []string // 作者列表(持久层以逗号拼接存储)
	ISBN            string
	ISBN13          string
	Language        string
	Pages           int
	PublicationDate time.Time
	Publisher       string
	Price           int64 // 价格(单位:分,1元=100分)
	Reserved        bool
	Rating          *Rating // 可选,创建时未提供评分则为nil
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Rating 图书评分(1:1子实体)
type Rating struct {
	BookID  uint
	Average float64 // 平均分
	Votes   int     // 评分人数
	Reviews int     // 评论数
}

// NewBook 创建新图书(工厂方法)
// isbn需调用方先通过Service校验格式
func NewBook(title string, authors []string, isbn, isbn13, language string, pages int, publicationDate time.Time, publisher string, price int64) *Book {
	now := time.Now()
	return &Book{
		Title:           title,
		Authors:         authors,
		ISBN:            isbn,
		ISBN13:          isbn13,
		Language:        language,
		Pages:           pages,
		PublicationDate: publicationDate,
		Publisher:       publisher,
		Price:           price,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Reserve 预订图书(领域行为)
// 业务规则:已被预订的图书不能再次预订
func (b *Book) Reserve() error {
	if b.Reserved {
		return ErrBookReserved
	}
	b.Reserved = true
	b.UpdatedAt = time.Now()
	return nil
}

// Release 释放预订(订单取消、清理时)
// 释放未预订的图书是no-op,保证清理任务可重入
func (b *Book) Release() {
	if !b.Reserved {
		return
	}
	b.Reserved = false
	b.UpdatedAt = time.Now()
}
