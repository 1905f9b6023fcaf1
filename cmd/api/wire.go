//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 运行 `wire gen ./cmd/api` 生成wire_gen.go后,main.go可改为调用InitializeApp()
package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

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
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
	providePublisher,
	provideBreaker,
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewOrderRepository,
	mysql.NewTxManager,
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	provideUserService,
	book.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewQueryUseCase,
	appbook.NewQueryUseCase,
	appbook.NewManageUseCase,
	apporder.NewCleanupTask,
	apporder.NewCreateOrderUseCase,
	apporder.NewCancelOrderUseCase,
	apporder.NewUpdateOrderStatusUseCase,
	apporder.NewActiveOrdersUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
// Handler构造函数带默认分页大小参数,从配置提取,需要自定义Provider
var handlerSet = wire.NewSet(
	provideUserHandler,
	provideBookHandler,
	handler.NewOrderHandler,
)

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire)
}

func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

func provideUserService(repo user.Repository, cfg *config.Config) user.Service {
	return user.NewService(repo, cfg.Security)
}

func providePublisher(cfg *config.Config) (mq.EventPublisher, error) {
	if !cfg.MQ.Enabled {
		return mq.NopPublisher{}, nil
	}
	return mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
}

func provideBreaker(cfg *config.Config) *circuitbreaker.Breaker {
	b := circuitbreaker.New("redis-blacklist", circuitbreaker.Config{})
	b.OnStateChange = func(name string, from, to circuitbreaker.State) {
		metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
	}
	return b
}

func provideUserHandler(
	registerUseCase *appuser.RegisterUseCase,
	loginUseCase *appuser.LoginUseCase,
	logoutUseCase *appuser.LogoutUseCase,
	queryUseCase *appuser.QueryUseCase,
	cfg *config.Config,
) *handler.UserHandler {
	return handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase, queryUseCase, cfg.Pagination.DefaultPerPage)
}

func provideBookHandler(queryUseCase *appbook.QueryUseCase, manageUseCase *appbook.ManageUseCase, cfg *config.Config) *handler.BookHandler {
	return handler.NewBookHandler(queryUseCase, manageUseCase, cfg.Pagination.DefaultPerPage)
}

// provideGinEngine 创建引擎并注册路由(与main.go的registerRoutes保持一致)
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	orderHandler *handler.OrderHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), metrics.GinMiddleware())
	registerRoutes(r, userHandler, bookHandler, orderHandler, authMiddleware)
	return r
}

// InitializeApp 组装整个应用,返回配置好的Gin引擎
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)
	return nil, nil
}
