package paginator

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNew(t *testing.T) {
	p, err := New(0, 20)
	require.NoError(t, err)
	require.Equal(t, 0, p.Page)
	require.Equal(t, 20, p.PerPage)

	// PerPage=0是合法哨兵值,表示不限
	p, err = New(5, 0)
	require.NoError(t, err)
	require.Equal(t, 0, p.PerPage)
}

func TestNew_RejectsNegative(t *testing.T) {
	_, err := New(-1, 20)
	require.Error(t, err)

	_, err = New(0, -1)
	require.Error(t, err)
}

// TestApply_NilPassthrough 未提供分页器时查询原样返回
func TestApply_NilPassthrough(t *testing.T) {
	db := &gorm.DB{}
	var p *Paginator
	require.Same(t, db, p.Apply(db))
}
