package mysql

import (
	"context"

	"gorm.io/gorm"
)

// txKey context中事务DB的键(私有类型避免冲突)
type txKey struct{}

// TxManager 事务管理器
// 设计说明:
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB(避免全局变量)
// 3. fn返回error时自动ROLLBACK,返回nil时自动COMMIT
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// fn函数内通过同一context调用的Repository操作都在此事务中执行
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// getDB 从context获取事务DB,没有事务时返回默认DB
func getDB(ctx context.Context, def *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return def.WithContext(ctx)
}
