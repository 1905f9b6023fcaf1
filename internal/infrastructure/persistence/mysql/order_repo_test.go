package mysql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/order"
)

func TestOrderRepository_CreateAndFind(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	ctx := context.Background()

	o := order.NewOrder(1, []uint{10, 20, 30})
	o.Total = 8997
	require.NoError(t, repo.Create(ctx, o))
	require.NotZero(t, o.ID)

	got, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.UserID)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.Equal(t, []uint{10, 20, 30}, got.BookIDs)
	assert.Equal(t, int64(8997), got.Total)
}

func TestOrderRepository_FindByID_NotFound(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))

	_, err := repo.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestOrderRepository_FindActiveByUserID(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	ctx := context.Background()

	pending := order.NewOrder(7, []uint{1})
	require.NoError(t, repo.Create(ctx, pending))

	inDelivery := order.NewOrder(7, []uint{2})
	require.NoError(t, repo.Create(ctx, inDelivery))
	require.NoError(t, inDelivery.TransitionTo(order.StatusInDelivery))
	require.NoError(t, repo.Update(ctx, inDelivery))

	cancelled := order.NewOrder(7, []uint{3})
	require.NoError(t, repo.Create(ctx, cancelled))
	require.NoError(t, cancelled.Cancel())
	require.NoError(t, repo.Update(ctx, cancelled))

	otherUser := order.NewOrder(8, []uint{4})
	require.NoError(t, repo.Create(ctx, otherUser))

	// 已取消、已送达、他人的订单不在活跃列表中
	active, err := repo.FindActiveByUserID(ctx, 7)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, order.StatusPending, active[0].Status)
	assert.Equal(t, order.StatusInDelivery, active[1].Status)
}

func TestOrderRepository_Update_Status(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	ctx := context.Background()

	o := order.NewOrder(1, []uint{5})
	require.NoError(t, repo.Create(ctx, o))

	require.NoError(t, o.TransitionTo(order.StatusCancelled))
	require.NoError(t, repo.Update(ctx, o))

	got, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)
}

func TestOrderRepository_Update_NotFound(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))

	ghost := &order.Order{ID: 999, Status: order.StatusCancelled}
	err := repo.Update(context.Background(), ghost)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestOrderRepository_Delete_Reentrant(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	o := order.NewOrder(1, []uint{6, 7})
	require.NoError(t, repo.Create(ctx, o))

	require.NoError(t, repo.Delete(ctx, o.ID))

	_, err := repo.FindByID(ctx, o.ID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)

	var count int64
	require.NoError(t, db.Model(&OrderBookModel{}).Where("order_id = ?", o.ID).Count(&count).Error)
	assert.Zero(t, count)

	// 清理任务可能重复执行,删除不存在的订单是no-op
	assert.NoError(t, repo.Delete(ctx, o.ID))
}
