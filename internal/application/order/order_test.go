package order

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	bookdomain "github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// testEnv 订单用例测试环境(内存SQLite上的真实仓储)
type testEnv struct {
	orderRepo order.Repository
	bookRepo  bookdomain.Repository
	create    *CreateOrderUseCase
	cancel    *CancelOrderUseCase
	update    *UpdateOrderStatusUseCase
	active    *ActiveOrdersUseCase
	cleanup   *CleanupTask
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, mysql.Migrate(db))

	orderRepo := mysql.NewOrderRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	txManager := mysql.NewTxManager(db)
	publisher := mq.NopPublisher{}
	cleanup := NewCleanupTask(orderRepo, bookRepo, txManager, publisher)

	return &testEnv{
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		create:    NewCreateOrderUseCase(orderRepo, bookRepo, txManager, publisher),
		cancel:    NewCancelOrderUseCase(orderRepo, cleanup, publisher),
		update:    NewUpdateOrderStatusUseCase(orderRepo, cleanup, publisher),
		active:    NewActiveOrdersUseCase(orderRepo),
		cleanup:   cleanup,
	}
}

func (e *testEnv) addBook(t *testing.T, isbn string) *bookdomain.Book {
	t.Helper()
	b := bookdomain.NewBook("Book", []string{"Author"}, isbn, "978"+isbn, "English", 200,
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), "Pub", 2999)
	require.NoError(t, e.bookRepo.Create(context.Background(), b))
	return b
}

func TestCreateOrder_ReservesBooks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b1 := env.addBook(t, "1000000001")
	b2 := env.addBook(t, "1000000002")

	info, err := env.create.Execute(ctx, 1, []uint{b1.ID, b2.ID})
	require.NoError(t, err)
	assert.Equal(t, string(order.StatusPending), info.Status)
	assert.Equal(t, []uint{b1.ID, b2.ID}, info.BookIDs)
	assert.Equal(t, b1.Price+b2.Price, info.Total, "总额是图书价格合计")

	got, err := env.bookRepo.FindByID(ctx, b1.ID)
	require.NoError(t, err)
	assert.True(t, got.Reserved)
}

func TestCreateOrder_RejectsReservedBook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b1 := env.addBook(t, "2000000001")
	b2 := env.addBook(t, "2000000002")
	b3 := env.addBook(t, "2000000003")
	_, err := env.create.Execute(ctx, 1, []uint{b1.ID, b2.ID})
	require.NoError(t, err)

	// 已预订的图书不能再次下单:错误列出全部冲突ID,映射到404
	_, err = env.create.Execute(ctx, 2, []uint{b1.ID, b2.ID, b3.ID})
	assert.ErrorIs(t, err, bookdomain.ErrBookReserved)
	assert.Contains(t, err.Error(), fmt.Sprintf("%v", []uint{b1.ID, b2.ID}))
	assert.Equal(t, 404, apperrors.HTTPStatus(apperrors.GetAppError(err).Code))

	// 第二个用户没有产生活跃订单,未预订的图书也保持可得
	orders, err := env.active.Execute(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, orders)

	got, err := env.bookRepo.FindByID(ctx, b3.ID)
	require.NoError(t, err)
	assert.False(t, got.Reserved)
}

func TestCreateOrder_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.create.Execute(ctx, 1, nil)
	assert.ErrorIs(t, err, order.ErrEmptyBookList)

	_, err = env.create.Execute(ctx, 1, []uint{999})
	assert.ErrorIs(t, err, bookdomain.ErrBookNotFound)
}

func TestCancelOrder_PendingOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := env.addBook(t, "3000000001")
	info, err := env.create.Execute(ctx, 1, []uint{b.ID})
	require.NoError(t, err)

	require.NoError(t, env.cancel.Execute(ctx, 1, info.ID))

	// 清理任务异步执行:最终释放预订并删除订单记录
	require.Eventually(t, func() bool {
		_, err := env.orderRepo.FindByID(ctx, info.ID)
		return errors.Is(err, order.ErrOrderNotFound)
	}, 2*time.Second, 10*time.Millisecond)

	got, err := env.bookRepo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, got.Reserved)
}

func TestCancelOrder_NonPendingRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := env.addBook(t, "4000000001")
	info, err := env.create.Execute(ctx, 1, []uint{b.ID})
	require.NoError(t, err)

	// 管理员先推进到已送达
	_, err = env.update.Execute(ctx, info.ID, order.StatusInDelivery)
	require.NoError(t, err)
	_, err = env.update.Execute(ctx, info.ID, order.StatusDelivered)
	require.NoError(t, err)

	// 非Pending取消被拒绝,状态不变
	err = env.cancel.Execute(ctx, 1, info.ID)
	assert.ErrorIs(t, err, order.ErrNotPending)

	got, err := env.orderRepo.FindByID(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, got.Status)
}

func TestCancelOrder_OwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := env.addBook(t, "5000000001")
	info, err := env.create.Execute(ctx, 1, []uint{b.ID})
	require.NoError(t, err)

	err = env.cancel.Execute(ctx, 7, info.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpdateOrderStatus_CleanupSkippedWhenNotCancelled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := env.addBook(t, "6000000001")
	info, err := env.create.Execute(ctx, 1, []uint{b.ID})
	require.NoError(t, err)

	// 转入配送:清理任务被触发但确认状态后no-op
	updated, err := env.update.Execute(ctx, info.ID, order.StatusInDelivery)
	require.NoError(t, err)
	assert.Equal(t, string(order.StatusInDelivery), updated.Status)

	// 同步执行一次清理,验证其幂等判断
	env.cleanup.Run(info.ID)

	got, err := env.orderRepo.FindByID(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusInDelivery, got.Status)

	book, err := env.bookRepo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, book.Reserved)
}

func TestUpdateOrderStatus_AdminCancelTriggersCleanup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := env.addBook(t, "7000000001")
	info, err := env.create.Execute(ctx, 1, []uint{b.ID})
	require.NoError(t, err)

	// 管理员直接取消,同样走清理
	_, err = env.update.Execute(ctx, info.ID, order.StatusCancelled)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := env.orderRepo.FindByID(ctx, info.ID)
		return errors.Is(err, order.ErrOrderNotFound)
	}, 2*time.Second, 10*time.Millisecond)

	got, err := env.bookRepo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, got.Reserved)
}

func TestCleanupTask_ReentrantOnMissingOrder(t *testing.T) {
	env := newTestEnv(t)

	// 不存在的订单是no-op,不panic不报错
	env.cleanup.Run(999)
}
