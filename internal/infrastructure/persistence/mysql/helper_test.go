package mysql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookshop/internal/domain/book"
)

// newTestDB 内存SQLite数据库,每个用例独立
// 限制连接数为1:SQLite的":memory:"库按连接隔离,多连接会各自拿到空库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	return db
}

// newTestBook 测试用图书
func newTestBook(isbn, title string, authors []string) *book.Book {
	return book.NewBook(title, authors, isbn, "978"+isbn, "English", 300,
		time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC), "O'Reilly", 4599)
}
