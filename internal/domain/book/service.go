package book

import (
	"context"
	"errors"
	"regexp"

	"github.com/xiebiao/bookshop/pkg/paginator"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务封装业务规则校验(ISBN格式、价格范围、重复检查)
// 2. 不依赖具体的Repository实现(依赖倒置)
type Service interface {
	// AddBook 新增图书
	// 业务规则:
	// - ISBN格式必须合法(10位或13位数字,允许分隔符)
	// - 价格必须>0
	// - ISBN不能重复(先查再插)
	AddBook(ctx context.Context, b *Book) (*Book, error)

	// GetBookByID 根据ID获取图书详情
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// GetBooksByIDs 批量获取
	GetBooksByIDs(ctx context.Context, ids []uint) ([]*Book, error)

	// ListBooks 分页查询图书列表
	ListBooks(ctx context.Context, includeRatings bool, p *paginator.Paginator) ([]*Book, error)

	// SearchBooks 按过滤器搜索
	SearchBooks(ctx context.Context, f *Filter, p *paginator.Paginator) ([]*Book, error)

	// UpdateBook 部分更新
	// 业务规则:空载荷是参数错误
	UpdateBook(ctx context.Context, id uint, patch *Patch) (*Book, error)

	// RemoveBook 删除图书
	RemoveBook(ctx context.Context, id uint) error
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// AddBook 新增图书
func (s *service) AddBook(ctx context.Context, b *Book) (*Book, error) {
	// 1. ISBN格式校验
	if !isValidISBN(b.ISBN) {
		return nil, ErrInvalidISBN
	}

	// 2. 价格校验
	if b.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	// 3. ISBN重复检查(先查再插;并发窗口由唯一索引兜底,见Repository实现)
	existing, err := s.repo.FindByISBN(ctx, b.ISBN)
	if err == nil && existing != nil {
		return nil, ErrISBNDuplicate
	}
	if err != nil && !errors.Is(err, ErrBookNotFound) {
		return nil, err
	}

	// 4. 持久化(评分随载荷一并创建)
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// GetBookByID 根据ID获取图书
func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// GetBooksByIDs 批量获取
func (s *service) GetBooksByIDs(ctx context.Context, ids []uint) ([]*Book, error) {
	if len(ids) == 0 {
		return []*Book{}, nil
	}
	return s.repo.FindByIDs(ctx, ids)
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, includeRatings bool, p *paginator.Paginator) ([]*Book, error) {
	return s.repo.List(ctx, includeRatings, p)
}

// SearchBooks 按过滤器搜索
func (s *service) SearchBooks(ctx context.Context, f *Filter, p *paginator.Paginator) ([]*Book, error) {
	return s.repo.Search(ctx, f, p)
}

// UpdateBook 部分更新
func (s *service) UpdateBook(ctx context.Context, id uint, patch *Patch) (*Book, error) {
	// 1. 空载荷校验
	if patch.Empty() {
		return nil, ErrEmptyUpdate
	}

	// 2. 更新后的ISBN仍需合法
	if patch.ISBN != nil && !isValidISBN(*patch.ISBN) {
		return nil, ErrInvalidISBN
	}
	if patch.Price != nil && *patch.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	// 3. 持久化
	return s.repo.Update(ctx, id, patch)
}

// RemoveBook 删除图书
func (s *service) RemoveBook(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// =========================================
// 辅助函数:业务规则校验
// =========================================

var isbnCleanRe = regexp.MustCompile(`[^0-9Xx]`)

// isValidISBN 校验ISBN格式
// 支持ISBN-10(末位可为X)与ISBN-13,允许连字符/空格分隔
// 简化实现:只检查位数(生产环境应校验校验位)
func isValidISBN(isbn string) bool {
	clean := isbnCleanRe.ReplaceAllString(isbn, "")
	length := len(clean)
	return length == 10 || length == 13
}
