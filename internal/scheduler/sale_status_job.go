package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/blues/crowdsale/internal/config"
	"github.com/blues/crowdsale/internal/logger"
	"github.com/blues/crowdsale/internal/logic"
)

// SaleStatusJob 销售状态同步任务
// 引擎状态按调用时间惰性推导，这个任务周期性地把推导结果写回数据库，
// 让列表查询不必逐个询问引擎。
type SaleStatusJob struct {
	saleLogic *logic.SaleLogic
	config    *config.Config
}

// NewSaleStatusJob 创建销售状态同步任务
func NewSaleStatusJob(saleLogic *logic.SaleLogic, cfg *config.Config) *SaleStatusJob {
	return &SaleStatusJob{
		saleLogic: saleLogic,
		config:    cfg,
	}
}

// GetName 获取任务名称
func (j *SaleStatusJob) GetName() string {
	return "sale_status_updater"
}

// GetSchedule 获取调度配置
func (j *SaleStatusJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Scheduler.Interval) * time.Second)
}

// Execute 执行任务
func (j *SaleStatusJob) Execute() {
	logger.Debug("Starting sale status sync task")

	updated := j.saleLogic.SyncStatuses(time.Now())
	if updated > 0 {
		logger.Info("Sale status sync completed. Updated %d sales", updated)
	}
}
