package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appbook "github.com/xiebiao/bookshop/internal/application/book"
	apporder "github.com/xiebiao/bookshop/internal/application/order"
	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/circuitbreaker"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/logger"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
	"github.com/xiebiao/bookshop/pkg/response"
)

// main 主程序入口
// 手动依赖注入：Repository ← Service ← UseCase ← Handler
// （Wire版本见wire.go，生成代码后可替换这里的手动组装）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	if err := logger.Setup(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}); err != nil {
		slog.Warn("日志输出文件打开失败,已回退到stderr", "err", err)
	}

	slog.Info("配置加载成功",
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"db", fmt.Sprintf("%s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName),
		"redis", cfg.Redis.Addr(),
		"mq_enabled", cfg.MQ.Enabled)

	// 3. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 4. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 5. 初始化消息发布器(未启用时退化为空实现,业务路径不感知)
	var publisher mq.EventPublisher = mq.NopPublisher{}
	if cfg.MQ.Enabled {
		p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
		if err != nil {
			log.Fatalf("初始化消息队列失败: %v", err)
		}
		publisher = p
	}
	defer publisher.Close()

	// 6. Redis黑名单查询的熔断器(打开时认证降级放行,不放大故障)
	breaker := circuitbreaker.New("redis-blacklist", circuitbreaker.Config{})
	breaker.OnStateChange = func(name string, from, to circuitbreaker.State) {
		slog.Warn("熔断器状态变更", "name", name, "from", from.String(), "to", to.String())
		metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
	}

	// 7. 依赖注入（手动组装）

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire)

	// 领域层
	userService := user.NewService(userRepo, cfg.Security)
	bookService := book.NewService(bookRepo)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(jwtManager, sessionStore)
	userQueryUseCase := appuser.NewQueryUseCase(userService)
	bookQueryUseCase := appbook.NewQueryUseCase(bookService)
	bookManageUseCase := appbook.NewManageUseCase(bookService)
	cleanupTask := apporder.NewCleanupTask(orderRepo, bookRepo, txManager, publisher)
	createOrderUseCase := apporder.NewCreateOrderUseCase(orderRepo, bookRepo, txManager, publisher)
	cancelOrderUseCase := apporder.NewCancelOrderUseCase(orderRepo, cleanupTask, publisher)
	updateOrderUseCase := apporder.NewUpdateOrderStatusUseCase(orderRepo, cleanupTask, publisher)
	activeOrdersUseCase := apporder.NewActiveOrdersUseCase(orderRepo)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase, userQueryUseCase, cfg.Pagination.DefaultPerPage)
	bookHandler := handler.NewBookHandler(bookQueryUseCase, bookManageUseCase, cfg.Pagination.DefaultPerPage)
	orderHandler := handler.NewOrderHandler(createOrderUseCase, cancelOrderUseCase, updateOrderUseCase, activeOrdersUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userService, sessionStore, breaker)

	// 8. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), metrics.GinMiddleware())

	registerRoutes(r, userHandler, bookHandler, orderHandler, authMiddleware)

	// 9. 启动服务(优雅停机:等待在途请求结束再退出)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("服务启动", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("收到停机信号,开始优雅停机")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("优雅停机超时", "err", err)
	}
	slog.Info("服务已退出")
}

// registerRoutes 注册路由
// 权限分三档:公开(注册/登录)、任意已登录角色(查询/下单)、管理员(写图书/管用户/改订单)
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	orderHandler *handler.OrderHandler,
	auth *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})

	// Prometheus指标
	r.GET("/metrics", metrics.Handler())

	// Swagger文档(http://localhost:8080/swagger/index.html)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 图书模块
	books := r.Group("/book")
	{
		// 查询:任意已登录角色
		authed := books.Group("", auth.Require())
		{
			authed.GET("/", bookHandler.List)
			authed.GET("/ids/", bookHandler.GetByIDs)
			authed.GET("/search/", bookHandler.Search)
			authed.GET("/:id", bookHandler.Get)
		}

		// 写操作:管理员
		admin := books.Group("", auth.Require(user.PrivilegeAdmin))
		{
			admin.POST("/add/", bookHandler.Add)
			admin.PATCH("/update/:id", bookHandler.Update)
			admin.DELETE("/remove/:id", bookHandler.Remove)
		}
	}

	// 用户模块
	users := r.Group("/user")
	{
		// 公开接口
		users.POST("/register/", userHandler.Register)
		users.POST("/login/", userHandler.Login)

		// 任意已登录角色
		authed := users.Group("", auth.Require())
		{
			authed.POST("/logout/", userHandler.Logout)
			authed.GET("/current/", userHandler.Current)
		}

		// 管理员
		admin := users.Group("", auth.Require(user.PrivilegeAdmin))
		{
			admin.GET("/", userHandler.List)
			admin.GET("/:id", userHandler.Get)
		}
	}

	// 订单模块(全部需要登录)
	orders := r.Group("/order", auth.Require())
	{
		orders.POST("/new/", orderHandler.New)
		orders.GET("/active", orderHandler.Active)
		orders.POST("/cancel/:id", orderHandler.Cancel)
	}

	// 订单管理(管理员)
	r.PATCH("/order/update/:id", auth.Require(user.PrivilegeAdmin), orderHandler.Update)
}
