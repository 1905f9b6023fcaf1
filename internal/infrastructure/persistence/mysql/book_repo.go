package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/book"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/filter"
	"github.com/xiebiao/bookshop/pkg/paginator"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如ISBN重复),转换为业务错误
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
// 注意:图书与评分是两次独立提交,不在同一事务中
// 图书插入成功后评分插入失败,图书会保留而评分缺失(已知取舍,见错误信息)
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	// 1. 插入图书(第一次提交)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		// 先查再插存在并发窗口,唯一索引冲突在此兜底
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt

	// 2. 评分随载荷提供时插入(第二次提交)
	if b.Rating != nil {
		rm := &RatingModel{
			BookID:  model.ID,
			Average: b.Rating.Average,
			Votes:   b.Rating.Votes,
			Reviews: b.Rating.Reviews,
		}
		if err := getDB(ctx, r.db).Create(rm).Error; err != nil {
			return apperrors.Wrap(err, "图书已创建但评分写入失败")
		}
		b.Rating.BookID = model.ID
	}

	return nil
}

// FindByID 根据ID查找图书(含评分)
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	b := toBookEntity(&model)
	if err := r.attachRatings(ctx, []*book.Book{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// FindByIDs 批量根据ID查找,缺失的ID静默跳过
func (r *bookRepository) FindByIDs(ctx context.Context, ids []uint) ([]*book.Book, error) {
	var models []BookModel
	if err := getDB(ctx, r.db).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "批量查询图书失败")
	}

	books := toBookEntities(models)
	if err := r.attachRatings(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

// FindByISBN 根据ISBN查找图书
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).Where("isbn = ?", isbn).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// List 分页查询图书列表
func (r *bookRepository) List(ctx context.Context, includeRatings bool, p *paginator.Paginator) ([]*book.Book, error) {
	var models []BookModel
	query := p.Apply(getDB(ctx, r.db).Model(&BookModel{}).Order("books.id"))
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := toBookEntities(models)
	if includeRatings {
		if err := r.attachRatings(ctx, books); err != nil {
			return nil, err
		}
	}
	return books, nil
}

// Search 按过滤器搜索
// 设计说明:
// 1. 命中评分条件时JOIN评分表,否则只查图书表
// 2. 分页作用于JOIN后的外层查询(先JOIN后分页,交换顺序会改变结果行数)
func (r *bookRepository) Search(ctx context.Context, f *book.Filter, p *paginator.Paginator) ([]*book.Book, error) {
	query := getDB(ctx, r.db).Model(&BookModel{})

	if f.NeedsRatings() {
		query = query.Joins("JOIN ratings ON ratings.book_id = books.id")
	}

	query = filter.Apply(query, f.Conditions())
	query = p.Apply(query.Order("books.id"))

	var models []BookModel
	if err := query.Select("books.*").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "搜索图书失败")
	}

	books := toBookEntities(models)
	if err := r.attachRatings(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

// Update 部分更新
// 只覆盖patch中提供的字段;评分子对象单独更新,且仅当已有评分记录时生效
func (r *bookRepository) Update(ctx context.Context, id uint, patch *book.Patch) (*book.Book, error) {
	db := getDB(ctx, r.db)

	// 1. 确认图书存在
	var model BookModel
	if err := db.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	// 2. 组装图书字段更新(评分不在主更新载荷中)
	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Authors != nil {
		updates["authors"] = StringArray(patch.Authors)
	}
	if patch.ISBN != nil {
		updates["isbn"] = *patch.ISBN
	}
	if patch.ISBN13 != nil {
		updates["isbn13"] = *patch.ISBN13
	}
	if patch.Language != nil {
		updates["language"] = *patch.Language
	}
	if patch.Pages != nil {
		updates["pages"] = *patch.Pages
	}
	if patch.PublicationDate != nil {
		updates["publication_date"] = *patch.PublicationDate
	}
	if patch.Publisher != nil {
		updates["publisher"] = *patch.Publisher
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}

	if len(updates) > 0 {
		if err := db.Model(&BookModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if isDuplicateError(err) {
				return nil, book.ErrISBNDuplicate
			}
			return nil, apperrors.Wrap(err, "更新图书失败")
		}
	}

	// 3. 评分子对象单独更新,仅当已有评分记录时生效
	if patch.Rating != nil {
		var rm RatingModel
		err := db.Where("book_id = ?", id).First(&rm).Error
		switch {
		case err == nil:
			ratingUpdates := map[string]interface{}{}
			if patch.Rating.Average != nil {
				ratingUpdates["average"] = *patch.Rating.Average
			}
			if patch.Rating.Votes != nil {
				ratingUpdates["votes"] = *patch.Rating.Votes
			}
			if patch.Rating.Reviews != nil {
				ratingUpdates["reviews"] = *patch.Rating.Reviews
			}
			if len(ratingUpdates) > 0 {
				if err := db.Model(&RatingModel{}).Where("book_id = ?", id).Updates(ratingUpdates).Error; err != nil {
					return nil, apperrors.Wrap(err, "更新评分失败")
				}
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// 无评分记录时评分更新被跳过
		default:
			return nil, apperrors.Wrap(err, "查询评分失败")
		}
	}

	return r.FindByID(ctx, id)
}

// Delete 删除图书
// 先删评分记录再删图书,各自独立提交
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	db := getDB(ctx, r.db)

	if err := db.Where("book_id = ?", id).Delete(&RatingModel{}).Error; err != nil {
		return apperrors.Wrap(err, "删除评分失败")
	}

	result := db.Delete(&BookModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// SetReserved 批量设置预订标记
func (r *bookRepository) SetReserved(ctx context.Context, ids []uint, reserved bool) error {
	if len(ids) == 0 {
		return nil
	}
	err := getDB(ctx, r.db).Model(&BookModel{}).
		Where("id IN ?", ids).
		Update("reserved", reserved).Error
	if err != nil {
		return apperrors.Wrap(err, "更新预订标记失败")
	}
	return nil
}

// =========================================
// 辅助函数:模型转换与评分装配
// =========================================

// toBookModel 领域实体 → GORM模型
func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:              b.ID,
		Title:           b.Title,
		Authors:         StringArray(b.Authors),
		ISBN:            b.ISBN,
		ISBN13:          b.ISBN13,
		Language:        b.Language,
		Pages:           b.Pages,
		PublicationDate: b.PublicationDate,
		Publisher:       b.Publisher,
		Price:           b.Price,
		Reserved:        b.Reserved,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:              model.ID,
		Title:           model.Title,
		Authors:         []string(model.Authors),
		ISBN:            model.ISBN,
		ISBN13:          model.ISBN13,
		Language:        model.Language,
		Pages:           model.Pages,
		PublicationDate: model.PublicationDate,
		Publisher:       model.Publisher,
		Price:           model.Price,
		Reserved:        model.Reserved,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

func toBookEntities(models []BookModel) []*book.Book {
	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books
}

// attachRatings 批量装配评分(一次IN查询,避免N+1)
func (r *bookRepository) attachRatings(ctx context.Context, books []*book.Book) error {
	if len(books) == 0 {
		return nil
	}

	ids := make([]uint, len(books))
	index := make(map[uint]*book.Book, len(books))
	for i, b := range books {
		ids[i] = b.ID
		index[b.ID] = b
	}

	var ratings []RatingModel
	if err := getDB(ctx, r.db).Where("book_id IN ?", ids).Find(&ratings).Error; err != nil {
		return apperrors.Wrap(err, "查询评分失败")
	}

	for _, rm := range ratings {
		if b, ok := index[rm.BookID]; ok {
			b.Rating = &book.Rating{
				BookID:  rm.BookID,
				Average: rm.Average,
				Votes:   rm.Votes,
				Reviews: rm.Reviews,
			}
		}
	}
	return nil
}
