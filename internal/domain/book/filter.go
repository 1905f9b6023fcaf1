package book

import (
	"github.com/xiebiao/bookshop/pkg/filter"
)

// Filter 图书搜索过滤器
// 设计说明:
// 1. 字段全部可选,缺省字段不产生任何查询条件(退化为"无约束"而非"排除全部")
// 2. 字符串字段做子串匹配(LIKE %v%),不是等值匹配
// 3. Ratings为嵌套子过滤器,命中时查询需要JOIN评分表
// 4. 字段到条件的映射是显式的策略表,不做反射
type Filter struct {
	Title           string
	Author          string
	Publisher       string
	Language        string
	PublicationDate *filter.Range
	Ratings         *RatingsFilter
}

// RatingsFilter 评分子过滤器
// average/votes/reviews各自独立转换为区间条件
type RatingsFilter struct {
	Average *filter.Range
	Votes   *filter.Range
	Reviews *filter.Range
}

// Conditions 生成图书表上的查询条件列表(AND组合)
// 作者列以逗号拼接存储,子串匹配直接作用于拼接后的列值
// 列名带表前缀,搜索查询JOIN评分表时避免歧义
func (f *Filter) Conditions() []filter.Condition {
	if f == nil {
		return nil
	}

	var conds []filter.Condition
	if f.Title != "" {
		conds = append(conds, filter.Like("books.title", f.Title))
	}
	if f.Author != "" {
		conds = append(conds, filter.Like("books.authors", f.Author))
	}
	if f.Publisher != "" {
		conds = append(conds, filter.Like("books.publisher", f.Publisher))
	}
	if f.Language != "" {
		conds = append(conds, filter.Like("books.language", f.Language))
	}
	if c := f.PublicationDate.Condition("books.publication_date"); c.Expr != "" {
		conds = append(conds, c)
	}
	conds = append(conds, f.Ratings.Conditions()...)
	return conds
}

// NeedsRatings 是否命中评分子过滤器(决定查询是否JOIN评分表)
func (f *Filter) NeedsRatings() bool {
	return f != nil && f.Ratings != nil && len(f.Ratings.Conditions()) > 0
}

// Conditions 生成评分表上的查询条件列表
func (f *RatingsFilter) Conditions() []filter.Condition {
	if f == nil {
		return nil
	}

	var conds []filter.Condition
	if c := f.Average.Condition("ratings.average"); c.Expr != "" {
		conds = append(conds, c)
	}
	if c := f.Votes.Condition("ratings.votes"); c.Expr != "" {
		conds = append(conds, c)
	}
	if c := f.Reviews.Condition("ratings.reviews"); c.Expr != "" {
		conds = append(conds, c)
	}
	return conds
}
