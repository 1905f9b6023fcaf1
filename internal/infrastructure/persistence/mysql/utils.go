package mysql

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateError 判断是否为唯一索引冲突错误
// MySQL错误码1062: Duplicate entry 'xxx' for key 'yyy'
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 兼容检查:MySQL与SQLite的错误信息
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
