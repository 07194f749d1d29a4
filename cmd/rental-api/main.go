package main

import (
	"flag"
	"fmt"

	"github.com/WheelsHub/WheelsHub/internal/common/config"
	"github.com/WheelsHub/WheelsHub/internal/common/db"
	"github.com/WheelsHub/WheelsHub/internal/common/logger"
	"github.com/WheelsHub/WheelsHub/internal/common/server"
	"github.com/WheelsHub/WheelsHub/internal/common/tracing"
	"github.com/WheelsHub/WheelsHub/internal/contact"
	"github.com/WheelsHub/WheelsHub/internal/event"
	"github.com/WheelsHub/WheelsHub/internal/order"
	"github.com/WheelsHub/WheelsHub/internal/payment"
	"github.com/WheelsHub/WheelsHub/internal/user"
	"github.com/WheelsHub/WheelsHub/internal/vehicle"
	"github.com/gin-gonic/gin"
)

var (
	configPath = flag.String("config", "configs/rental-api.json", "配置文件路径")
)

func main() {
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 初始化数据库
	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to init mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&vehicle.Vehicle{},
		&order.Order{},
		&user.User{},
		&contact.Contact{},
		&payment.Transaction{},
	); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	// 事件发布（brokers 为空时为 no-op）
	events := event.NewPublisher(cfg.Kafka.Brokers)
	if events != nil {
		defer events.Close()
	}

	// 组装各业务模块
	vehicleRepo := vehicle.NewRepo(gormDB)
	vehicleSvc := vehicle.NewService(vehicleRepo)
	vehicleHandler := vehicle.NewHandler(vehicleSvc)

	orderSvc := order.NewService(order.NewRepo(gormDB), vehicleRepo, events, log)
	orderHandler := order.NewHandler(orderSvc)

	userSvc := user.NewService(user.NewRepo(gormDB), cfg.Auth)
	userHandler := user.NewHandler(userSvc)

	contactHandler := contact.NewHandler(contact.NewService(contact.NewRepo(gormDB)))

	paymentSvc := payment.NewService(payment.NewRepo(gormDB), payment.NewGateway(cfg.Payment), log)
	paymentHandler := payment.NewHandler(paymentSvc)

	// 启动统一的 HTTP 服务模板
	if err := server.RunHTTPServer(cfg, log, func(e *gin.Engine) error {
		api := e.Group("/api")

		// 公开接口
		api.GET("/vehicles", vehicleHandler.List)
		api.GET("/vehicles/:id", vehicleHandler.Get)
		api.POST("/auth/register", userHandler.Register)
		api.POST("/auth/login", userHandler.Login)
		api.POST("/contact", contactHandler.Create)
		api.POST("/payment/initialize", paymentHandler.Initialize)
		api.GET("/payment/verify/:txRef", paymentHandler.Verify)
		// 游客也可下单；带 token 时订单关联当前用户
		api.POST("/orders", server.OptionalJWTAuth(cfg.Auth), orderHandler.Create)

		// 登录用户接口
		authed := api.Group("")
		authed.Use(server.JWTAuth(cfg.Auth, log))
		authed.GET("/orders", orderHandler.List)
		authed.GET("/orders/:id", orderHandler.Get)
		authed.GET("/user/profile", userHandler.Profile)

		// 管理端接口
		admin := api.Group("")
		admin.Use(server.JWTAuth(cfg.Auth, log), server.RequireRoles(cfg.Auth, user.RoleAdmin))
		admin.GET("/vehicles/all", vehicleHandler.ListAll)
		admin.POST("/vehicles", vehicleHandler.Create)
		admin.PUT("/vehicles/:id", vehicleHandler.Update)
		admin.PATCH("/vehicles/:id/stock", vehicleHandler.PatchStock)
		admin.DELETE("/vehicles/:id", vehicleHandler.Delete)
		admin.PATCH("/orders/:id/status", orderHandler.PatchStatus)
		admin.GET("/contact", contactHandler.List)
		admin.PATCH("/contact/:id/status", contactHandler.PatchStatus)
		admin.GET("/user", userHandler.List)
		admin.PATCH("/user/:id/role", userHandler.PatchRole)
		return nil
	}); err != nil {
		log.Fatalf("rental-api exited with error: %v", err)
	}
}
