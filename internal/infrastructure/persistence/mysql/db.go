package mysql

import (
	"database/sql/driver"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true, // 唯一索引冲突翻译为gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	slog.Info("数据库连接成功", "host", cfg.Database.Host, "dbname", cfg.Database.DBName)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// Migrate 自动迁移表结构
// 注意：AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
// 生产环境应使用版本化的迁移脚本
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&RatingModel{},
		&OrderModel{},
		&OrderBookModel{},
	)
}

// StringArray 字符串数组列(逗号拼接存储)
// 设计说明:
// 1. 作者列表在数据库中存为单列逗号拼接的字符串
// 2. 搜索时LIKE直接作用于拼接后的列值,等价于对数组任意元素的子串匹配
// 3. 实现driver.Valuer/sql.Scanner,GORM读写时自动转换
type StringArray []string

// Value 实现driver.Valuer
func (a StringArray) Value() (driver.Value, error) {
	return strings.Join(a, ","), nil
}

// Scan 实现sql.Scanner
func (a *StringArray) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*a = nil
		return nil
	default:
		return fmt.Errorf("无法将%T扫描为StringArray", value)
	}
	if s == "" {
		*a = nil
		return nil
	}
	*a = strings.Split(s, ",")
	return nil
}

// BookModel GORM图书模型
// 设计说明:
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/book/entity.go是领域实体，不依赖GORM
// 3. 价格使用int64存储"分"为单位
// 4. ISBN有唯一索引:先查再插的并发窗口由索引兜底
type BookModel struct {
	ID              uint        `gorm:"primaryKey"`
	Title           string      `gorm:"index;size:200;not null;comment:书名"`
	Authors         StringArray `gorm:"type:varchar(500);comment:作者列表(逗号拼接)"`
	ISBN            string      `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	ISBN13          string      `gorm:"column:isbn13;size:20;comment:ISBN-13号"`
	Language        string      `gorm:"size:50;comment:语言"`
	Pages           int         `gorm:"comment:页数"`
	PublicationDate time.Time   `gorm:"comment:出版日期"`
	Publisher       string      `gorm:"size:100;comment:出版社"`
	Price           int64       `gorm:"not null;comment:价格(分)"`
	Reserved        bool        `gorm:"default:false;comment:是否已被订单预订"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// RatingModel GORM评分模型(与图书1:1)
type RatingModel struct {
	BookID  uint    `gorm:"primaryKey;comment:图书ID"`
	Average float64 `gorm:"comment:平均分"`
	Votes   int     `gorm:"comment:评分人数"`
	Reviews int     `gorm:"comment:评论数"`
}

// TableName 指定表名
func (RatingModel) TableName() string {
	return "ratings"
}

// UserModel GORM用户模型
type UserModel struct {
	ID             uint   `gorm:"primaryKey"`
	Email          string `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Username       string `gorm:"size:50;not null;comment:用户名"`
	HashedPassword string `gorm:"size:255;not null;comment:密码(bcrypt加密)"`
	Privilege      string `gorm:"size:20;not null;default:client;comment:角色(client/admin)"`
	Status         string `gorm:"size:20;not null;default:active;comment:账号状态(active/inactive)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// OrderModel GORM订单模型
// 订单与图书通过order_books关联表多对多
type OrderModel struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null;comment:买家用户ID"`
	Total     int64  `gorm:"not null;default:0;comment:订单总额(分)"`
	Status    string `gorm:"index;size:20;not null;default:pending;comment:订单状态"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderBookModel 订单-图书关联
type OrderBookModel struct {
	ID      uint `gorm:"primaryKey"`
	OrderID uint `gorm:"index;not null;comment:订单ID"`
	BookID  uint `gorm:"index;not null;comment:图书ID"`
}

// TableName 指定表名
func (OrderBookModel) TableName() string {
	return "order_books"
}
