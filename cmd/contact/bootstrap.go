package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/suedwestenergie/contact/internal/contact/application"
	"github.com/suedwestenergie/contact/internal/contact/domain"
	"github.com/suedwestenergie/contact/internal/contact/infrastructure/mailer"
	"github.com/suedwestenergie/contact/internal/contact/infrastructure/ninox"
	"github.com/suedwestenergie/contact/internal/contact/infrastructure/persistence"
	httphandler "github.com/suedwestenergie/contact/internal/contact/interfaces/http"
	notifyapp "github.com/suedwestenergie/contact/internal/notification/application"
	notifydomain "github.com/suedwestenergie/contact/internal/notification/domain"
	"github.com/suedwestenergie/contact/internal/notification/infrastructure/cooldown"
	"github.com/suedwestenergie/contact/internal/notification/infrastructure/sender"
	"github.com/suedwestenergie/contact/pkg/cache"
	"github.com/suedwestenergie/contact/pkg/config"
	"github.com/suedwestenergie/contact/pkg/db"
	"github.com/suedwestenergie/contact/pkg/logger"
	"github.com/suedwestenergie/contact/pkg/metrics"
	"github.com/suedwestenergie/contact/pkg/middleware"
	"github.com/suedwestenergie/contact/pkg/ratelimit"
)

// AppContext 应用资源上下文
type AppContext struct {
	Config     *config.Config
	AppService *application.ContactService
	Metrics    *metrics.Metrics
	Limiter    ratelimit.RateLimiter
	Dispatcher *notifyapp.Dispatcher
	Ninox      *ninox.Client
	Journal    domain.DeliveryJournal
}

// initService 装配基础设施与业务组件，返回清理函数
func initService(c *config.Config) (*AppContext, func(), error) {
	ctx := context.Background()
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// 1. 基础设施（均为可选）
	var journal domain.DeliveryJournal
	if c.Database.Enabled() {
		database, err := openDB(c)
		if err != nil {
			return nil, nil, err
		}
		cleanups = append(cleanups, func() { _ = database.Close() })
		if err := persistence.AutoMigrate(database.DB); err != nil {
			cleanup()
			return nil, nil, err
		}
		journal = persistence.NewDeliveryRepository(database.DB)
		logger.Info(ctx, "delivery journal enabled", "driver", c.Database.Driver)
	}

	var redisCache *cache.RedisCache
	if c.Redis.Enabled() {
		rc, err := cache.New(c.Redis)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("redis init failed: %w", err)
		}
		redisCache = rc
		cleanups = append(cleanups, func() { _ = rc.Close() })
	}

	// 2. 治理能力
	var m *metrics.Metrics
	if c.Metrics.Enabled {
		m = metrics.New(c.ServiceName)
	}

	var limiter ratelimit.RateLimiter = ratelimit.NewMemoryRateLimiter()
	var store notifydomain.CooldownStore = cooldown.NewMemoryStore()
	if redisCache != nil {
		limiter = ratelimit.NewRedisRateLimiter(redisCache.GetClient())
		store = cooldown.NewRedisStore(redisCache)
	}

	// 3. 业务组件装配
	ninoxClient := ninox.NewClient(c.Ninox)
	smtpMailer := mailer.New(c.SMTP, c.Contact)

	opts := []application.ForwarderOption{application.WithMetrics(m)}
	if journal != nil {
		opts = append(opts, application.WithJournal(journal))
	}

	var dispatcher *notifyapp.Dispatcher
	if c.Alert.Enabled {
		dispatcher = notifyapp.NewDispatcher(store,
			time.Duration(c.Alert.CooldownMinutes)*time.Minute,
			m,
			sender.NewEmailSender(smtpMailer, c.Alert.Emails),
			sender.NewSMSSender(c.Twilio, c.Alert.Phones),
		)
		opts = append(opts, application.WithAlerter(dispatcher))
		// 后台告警在连接关闭前发送完毕
		cleanups = append(cleanups, dispatcher.Wait)
	}

	forwarder := application.NewForwarder(ninoxClient, smtpMailer, opts...)
	appService := application.NewContactService(
		application.NewContactManager(forwarder, m, c.Contact.ThankYouPath),
		application.NewContactQuery(journal, ninoxClient, smtpMailer),
	)

	if !ninoxClient.Configured() {
		logger.Warn(ctx, "ninox is not configured, records will be skipped")
	}
	if !smtpMailer.Configured() {
		logger.Warn(ctx, "smtp is not configured, emails will be skipped")
	}

	return &AppContext{
		Config:     c,
		AppService: appService,
		Metrics:    m,
		Limiter:    limiter,
		Dispatcher: dispatcher,
		Ninox:      ninoxClient,
		Journal:    journal,
	}, cleanup, nil
}

func openDB(c *config.Config) (*db.DB, error) {
	database, err := db.Open(c.Database)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	return database, nil
}

// newEngine 创建 Gin 引擎并注册路由
func newEngine(appCtx *AppContext) (*gin.Engine, error) {
	c := appCtx.Config
	if c.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	e := gin.New()
	// 只采信可信代理转发的 X-Forwarded-For
	if err := e.SetTrustedProxies(c.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid http.trusted_proxies: %w", err)
	}
	e.Use(
		otelgin.Middleware(c.ServiceName),
		middleware.GinRecoveryMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinCORSMiddleware(c.HTTP.AllowedOrigins),
	)
	if appCtx.Metrics != nil {
		e.Use(middleware.MetricsMiddleware(appCtx.Metrics))
	}

	admin := gin.HandlersChain{middleware.AdminAuthMiddleware(c.HTTP.AdminToken)}
	if c.HTTP.AdminToken == "" {
		logger.Warn(context.Background(), "http.admin_token is empty, admin routes are disabled")
	}

	// 1. 系统路由组（不限流），指标需要管理令牌
	httphandler.NewHealthHandler(appCtx.AppService, c.ServiceName, c.Version).RegisterRoutes(e)
	if appCtx.Metrics != nil {
		e.GET(c.Metrics.Path, append(admin, gin.WrapH(appCtx.Metrics.Handler()))...)
	}

	// 2. 业务路由，提交接口按客户端 IP 限流
	httphandler.NewContactHandler(appCtx.AppService).RegisterRoutes(e,
		gin.HandlersChain{middleware.RateLimitMiddleware(appCtx.Limiter, c.RateLimit)},
		admin,
	)

	return e, nil
}

func hostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
