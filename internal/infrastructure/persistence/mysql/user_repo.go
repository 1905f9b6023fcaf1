package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/user"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/paginator"
)

// userRepository 用户仓储实现(MySQL)
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := &UserModel{
		Email:          u.Email,
		Username:       u.Username,
		HashedPassword: u.HashedPassword,
		Privilege:      string(u.Privilege),
		Status:         string(u.Status),
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		// Service层先查再插,唯一索引冲突在此兜底
		if isDuplicateError(err) {
			return user.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "创建用户失败")
	}

	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找用户
func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

// FindByEmail 根据邮箱查找用户
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel
	err := getDB(ctx, r.db).Where("email = ?", email).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

// List 分页查询用户列表
func (r *userRepository) List(ctx context.Context, p *paginator.Paginator) ([]*user.User, error) {
	var models []UserModel
	query := p.Apply(getDB(ctx, r.db).Model(&UserModel{}).Order("id"))
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询用户列表失败")
	}

	users := make([]*user.User, len(models))
	for i := range models {
		users[i] = toUserEntity(&models[i])
	}
	return users, nil
}

// toUserEntity GORM模型 → 领域实体
func toUserEntity(model *UserModel) *user.User {
	return &user.User{
		ID:             model.ID,
		Email:          model.Email,
		Username:       model.Username,
		HashedPassword: model.HashedPassword,
		Privilege:      user.Privilege(model.Privilege),
		Status:         user.AccountStatus(model.Status),
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}
