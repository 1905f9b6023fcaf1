// Package filter 提供可组合的范围过滤与查询谓词构建
//
// 设计说明:
// 1. Range是"比较运算符+标量值"的值对象,按请求创建,请求结束即丢弃
// 2. 运算符是封闭枚举(gt/ge/lt/le/eq),SQL映射用固定switch,不做反射分发
// 3. 可选性用显式缺失表达(nil即"无过滤"),合法的零值不会被误判为缺失
package filter

import (
	"fmt"

	"gorm.io/gorm"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Operator 比较运算符(封闭枚举)
type Operator string

const (
	OpGt Operator = "gt" // 大于
	OpGe Operator = "ge" // 大于等于
	OpLt Operator = "lt" // 小于
	OpLe Operator = "le" // 小于等于
	OpEq Operator = "eq" // 等于
)

// Valid 判断运算符是否在封闭集合内
func (o Operator) Valid() bool {
	switch o {
	case OpGt, OpGe, OpLt, OpLe, OpEq:
		return true
	}
	return false
}

// SQL 运算符 → SQL比较符号
// 注意:枚举封闭于上述五个值,未知运算符属于实现错误而非运行时分支,直接panic
func (o Operator) SQL() string {
	switch o {
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpEq:
		return "="
	}
	panic(fmt.Sprintf("filter: unknown operator %q", string(o)))
}

// ParseOperator 解析查询参数中的运算符
// 空字符串表示"未提供",返回空运算符且无错误(由NewRange折叠为无过滤)
func ParseOperator(s string) (Operator, error) {
	if s == "" {
		return "", nil
	}
	op := Operator(s)
	if !op.Valid() {
		return "", apperrors.Newf(apperrors.ErrCodeInvalidParams, "不支持的比较运算符: %s", s)
	}
	return op, nil
}

// Range 范围过滤值对象
// 不变式:Value与Op要么同时存在,要么整个Range缺失(nil)
// 构造后不可变,不要修改字段
type Range struct {
	Value any
	Op    Operator
}

// NewRange 创建范围过滤
// 契约:值或运算符任一缺失 → 返回nil("无过滤",不是错误)
// 缺失用nil表达:合法的数值0由调用方以非nil传入,不会被丢弃
func NewRange(value any, op Operator) *Range {
	if value == nil || !op.Valid() {
		return nil
	}
	return &Range{Value: value, Op: op}
}

// Condition 针对指定列生成比较谓词
// nil Range返回零值Condition(Expr为空),表示该字段无约束
func (r *Range) Condition(column string) Condition {
	if r == nil {
		return Condition{}
	}
	return Condition{
		Expr: fmt.Sprintf("%s %s ?", column, r.Op.SQL()),
		Arg:  r.Value,
	}
}

// Condition 单列布尔谓词,多个谓词之间按逻辑AND组合
type Condition struct {
	Expr string // 形如 "publication_date >= ?"
	Arg  any
}

// Like 子串匹配谓词(区分大小写,%value%通配)
// 注意:是子串匹配不是相等匹配
func Like(column, value string) Condition {
	return Condition{
		Expr: column + " LIKE ?",
		Arg:  "%" + value + "%",
	}
}

// Apply 将谓词列表按AND应用到查询
// 空列表不加任何约束(优雅降级为"无过滤",而不是"排除所有")
func Apply(db *gorm.DB, conds []Condition) *gorm.DB {
	for _, c := range conds {
		db = db.Where(c.Expr, c.Arg)
	}
	return db
}
