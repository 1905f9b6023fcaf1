package filter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNewRange_BothPresent 值与运算符同时存在才构造出过滤
func TestNewRange_BothPresent(t *testing.T) {
	r := NewRange(4.5, OpGe)
	require.NotNil(t, r)
	require.Equal(t, 4.5, r.Value)
	require.Equal(t, OpGe, r.Op)
}

// TestNewRange_AbsenceCollapses 任一缺失 → 无过滤(nil),不是错误
func TestNewRange_AbsenceCollapses(t *testing.T) {
	require.Nil(t, NewRange(nil, OpGt), "缺值应折叠为无过滤")
	require.Nil(t, NewRange(10, Operator("")), "缺运算符应折叠为无过滤")
	require.Nil(t, NewRange(nil, Operator("")))
	require.Nil(t, NewRange(5, Operator("between")), "非法运算符同样折叠")
}

// TestNewRange_ZeroValueKept 合法的零值不等于缺失
// 显式缺失用nil表达,数值0必须正常参与过滤
func TestNewRange_ZeroValueKept(t *testing.T) {
	r := NewRange(0, OpEq)
	require.NotNil(t, r)
	require.Equal(t, 0, r.Value)
}

// TestOperator_SQL 五个运算符到SQL符号的完整映射
func TestOperator_SQL(t *testing.T) {
	cases := map[Operator]string{
		OpGt: ">",
		OpGe: ">=",
		OpLt: "<",
		OpLe: "<=",
		OpEq: "=",
	}
	for op, want := range cases {
		require.Equal(t, want, op.SQL())
	}
}

// TestOperator_SQLPanicsOnUnknown 未知运算符属于实现错误
func TestOperator_SQLPanicsOnUnknown(t *testing.T) {
	require.Panics(t, func() {
		_ = Operator("like").SQL()
	})
}

func TestParseOperator(t *testing.T) {
	op, err := ParseOperator("le")
	require.NoError(t, err)
	require.Equal(t, OpLe, op)

	op, err = ParseOperator("")
	require.NoError(t, err)
	require.Equal(t, Operator(""), op)

	_, err = ParseOperator("!=")
	require.Error(t, err)
}

func TestRange_Condition(t *testing.T) {
	r := NewRange(120, OpLt)
	c := r.Condition("pages")
	require.Equal(t, "pages < ?", c.Expr)
	require.Equal(t, 120, c.Arg)

	var none *Range
	require.Empty(t, none.Condition("pages").Expr, "nil Range应产生空条件")
}

func TestLike(t *testing.T) {
	c := Like("title", "实战")
	require.Equal(t, "title LIKE ?", c.Expr)
	require.Equal(t, "%实战%", c.Arg)
}
