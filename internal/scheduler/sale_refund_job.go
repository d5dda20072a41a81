package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/blues/crowdsale/internal/config"
	"github.com/blues/crowdsale/internal/logger"
	"github.com/blues/crowdsale/internal/logic"
	"github.com/blues/crowdsale/internal/model"
)

// RefundLiabilityJob 退款负债巡检任务
// 对未达标的销售，对账资金库余额与未退款负债，供运营监控退款进度。
type RefundLiabilityJob struct {
	saleLogic *logic.SaleLogic
	config    *config.Config
}

// NewRefundLiabilityJob 创建退款负债巡检任务
func NewRefundLiabilityJob(saleLogic *logic.SaleLogic, cfg *config.Config) *RefundLiabilityJob {
	return &RefundLiabilityJob{
		saleLogic: saleLogic,
		config:    cfg,
	}
}

// GetName 获取任务名称
func (j *RefundLiabilityJob) GetName() string {
	return "refund_liability_checker"
}

// GetSchedule 获取调度配置
func (j *RefundLiabilityJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Scheduler.Interval) * time.Second)
}

// Execute 执行任务
func (j *RefundLiabilityJob) Execute() {
	sales, err := j.saleLogic.FailedSales()
	if err != nil {
		logger.Error("Failed to fetch failed sales: %v", err)
		return
	}

	for i := range sales {
		j.check(&sales[i])
	}
}

// check 对账单个销售的退款负债
func (j *RefundLiabilityJob) check(sale *model.Sale) {
	rt, err := j.saleLogic.Runtime(sale.ID)
	if err != nil {
		logger.Error("No runtime for failed sale %d: %v", sale.ID, err)
		return
	}

	balance := rt.Vault.Balance()
	if balance.Sign() == 0 {
		return // 全部退款完毕
	}
	logger.Info("Sale %d: outstanding refund liability %s (investors=%d)",
		sale.ID, balance, rt.Engine.InvestorCount())
}
