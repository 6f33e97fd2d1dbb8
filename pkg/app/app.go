// Package app 管理 HTTP 与 gRPC 服务的启动和优雅关闭
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/suedwestenergie/contact/pkg/logger"
)

// DefaultShutdownTimeout 默认关闭超时
const DefaultShutdownTimeout = 15 * time.Second

// App 服务实例
type App struct {
	name            string
	httpAddr        string
	grpcAddr        string
	handler         http.Handler
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	cleanups        []func()

	httpServer *http.Server
	httpLis    net.Listener
	grpcServer *grpc.Server
	grpcLis    net.Listener
	health     *health.Server

	errCh chan error
	wg    sync.WaitGroup
}

// Builder 以链式调用组装 App
type Builder struct {
	app *App
}

// NewBuilder 创建构建器
func NewBuilder(name string) *Builder {
	return &Builder{app: &App{
		name:            name,
		shutdownTimeout: DefaultShutdownTimeout,
	}}
}

// WithHTTP 设置 HTTP 监听地址与处理器
func (b *Builder) WithHTTP(addr string, h http.Handler, readTimeout, writeTimeout time.Duration) *Builder {
	b.app.httpAddr = addr
	b.app.handler = h
	b.app.readTimeout = readTimeout
	b.app.writeTimeout = writeTimeout
	return b
}

// WithGRPC 启用 gRPC 健康检查与反射服务，addr 为空表示不启用
func (b *Builder) WithGRPC(addr string) *Builder {
	b.app.grpcAddr = addr
	return b
}

// WithShutdownTimeout 设置关闭超时
func (b *Builder) WithShutdownTimeout(d time.Duration) *Builder {
	if d > 0 {
		b.app.shutdownTimeout = d
	}
	return b
}

// WithCleanup 注册关闭时执行的清理函数，按注册的逆序执行
func (b *Builder) WithCleanup(fn func()) *Builder {
	if fn != nil {
		b.app.cleanups = append(b.app.cleanups, fn)
	}
	return b
}

// Build 返回 App
func (b *Builder) Build() *App {
	return b.app
}

// Start 打开监听并在后台提供服务
func (a *App) Start() error {
	if a.handler == nil {
		return errors.New("app: http handler is required")
	}
	a.errCh = make(chan error, 2)

	lis, err := net.Listen("tcp", a.httpAddr)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", a.httpAddr, err)
	}
	a.httpLis = lis
	a.httpServer = &http.Server{
		Handler:      a.handler,
		ReadTimeout:  a.readTimeout,
		WriteTimeout: a.writeTimeout,
	}

	if a.grpcAddr != "" {
		glis, err := net.Listen("tcp", a.grpcAddr)
		if err != nil {
			_ = lis.Close()
			return fmt.Errorf("listen grpc %s: %w", a.grpcAddr, err)
		}
		a.grpcLis = glis
		a.grpcServer = grpc.NewServer()
		a.health = health.NewServer()
		healthpb.RegisterHealthServer(a.grpcServer, a.health)
		reflection.Register(a.grpcServer)
		a.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		a.health.SetServingStatus(a.name, healthpb.HealthCheckResponse_SERVING)

		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.grpcServer.Serve(glis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				a.errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
		logger.Info(context.Background(), "gRPC server listening", "service", a.name, "addr", glis.Addr().String())
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	logger.Info(context.Background(), "HTTP server listening", "service", a.name, "addr", lis.Addr().String())
	return nil
}

// HTTPAddr 实际的 HTTP 监听地址
func (a *App) HTTPAddr() string {
	if a.httpLis == nil {
		return ""
	}
	return a.httpLis.Addr().String()
}

// GRPCAddr 实际的 gRPC 监听地址
func (a *App) GRPCAddr() string {
	if a.grpcLis == nil {
		return ""
	}
	return a.grpcLis.Addr().String()
}

// Shutdown 优雅关闭所有服务并执行清理函数
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	if a.health != nil {
		a.health.Shutdown()
	}
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if a.grpcServer != nil {
		stopped := make(chan struct{})
		go func() {
			a.grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			a.grpcServer.Stop()
			<-stopped
		}
	}
	a.wg.Wait()

	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}

	logger.Info(ctx, "service stopped", "service", a.name)
	return errors.Join(errs...)
}

// Run 启动服务并阻塞，直到 ctx 结束、收到 SIGINT/SIGTERM 或服务出错
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Start(); err != nil {
		for i := len(a.cleanups) - 1; i >= 0; i-- {
			a.cleanups[i]()
		}
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info(context.Background(), "shutdown signal received", "service", a.name)
	case runErr = <-a.errCh:
		logger.Error(context.Background(), "server failed", "service", a.name, "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()
	return errors.Join(runErr, a.Shutdown(shutdownCtx))
}
