package scheduler

import (
	"github.com/go-co-op/gocron/v2"

	"github.com/blues/crowdsale/internal/config"
	"github.com/blues/crowdsale/internal/logger"
	"github.com/blues/crowdsale/internal/logic"
)

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	saleLogic *logic.SaleLogic
	config    *config.Config
}

// NewManager 创建新的任务管理器
func NewManager(saleLogic *logic.SaleLogic, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		saleLogic: saleLogic,
		config:    cfg,
	}
}

// Start 启动任务管理器
func Start(saleLogic *logic.SaleLogic, cfg *config.Config) *Manager {
	manager := NewManager(saleLogic, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	// 注册销售状态同步任务
	m.registerJob(NewSaleStatusJob(m.saleLogic, m.config))
	// 注册退款负债巡检任务
	m.registerJob(NewRefundLiabilityJob(m.saleLogic, m.config))
}

// Job 后台任务接口
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// registerJob 注册单个任务
func (m *Manager) registerJob(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
