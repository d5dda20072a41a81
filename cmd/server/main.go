package main

import (
	"github.com/gin-gonic/gin"

	"github.com/blues/crowdsale/internal/config"
	"github.com/blues/crowdsale/internal/database"
	"github.com/blues/crowdsale/internal/event"
	"github.com/blues/crowdsale/internal/logger"
	"github.com/blues/crowdsale/internal/logic"
	"github.com/blues/crowdsale/internal/router"
	"github.com/blues/crowdsale/internal/scheduler"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if cfg.Log.Output == "file" {
		fileLogger, err := logger.NewWithFileRotation(logger.ParseLogLevel(cfg.Log.Level), cfg.Log.File)
		if err != nil {
			logger.Fatal("Failed to initialize file logger: %v", err)
		}
		logger.SetDefaultLogger(fileLogger)
	}

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化事件管道
	dispatcher, err := event.NewDispatcher(cfg.Engine.EventPoolSize,
		event.LogProcessor{},
		event.NewRecorder(db),
	)
	if err != nil {
		logger.Fatal("Failed to initialize event dispatcher: %v", err)
	}
	defer dispatcher.Close()

	// 初始化销售引擎注册表
	saleLogic := logic.NewSaleLogic(db, dispatcher)
	if err := saleLogic.LoadSales(); err != nil {
		logger.Fatal("Failed to load sales: %v", err)
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, saleLogic)

	// 启动定时任务
	manager := scheduler.Start(saleLogic, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
