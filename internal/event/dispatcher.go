package event

import (
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/blues/crowdsale/internal/logger"
)

// Processor 事件处理器接口
type Processor interface {
	Name() string
	Process(e Event) error
}

// Dispatcher 异步事件分发器
// 引擎在持锁期间只做事件投递，处理器在 ants 协程池中异步消费，
// 保证事件处理不阻塞结算路径。
type Dispatcher struct {
	pool       *ants.Pool
	processors []Processor
	wg         sync.WaitGroup
}

// NewDispatcher 创建事件分发器
func NewDispatcher(poolSize int, processors ...Processor) (*Dispatcher, error) {
	if poolSize <= 0 {
		poolSize = 16
	}
	pool, err := ants.NewPool(poolSize, ants.WithNonblocking(false))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return &Dispatcher{pool: pool, processors: processors}, nil
}

// Register 注册事件处理器
func (d *Dispatcher) Register(p Processor) {
	d.processors = append(d.processors, p)
}

// Emit 投递事件到协程池
func (d *Dispatcher) Emit(e Event) {
	for _, p := range d.processors {
		p := p
		d.wg.Add(1)
		err := d.pool.Submit(func() {
			defer d.wg.Done()
			if err := p.Process(e); err != nil {
				logger.Error("Event processor %s failed on %s: %v", p.Name(), e.Type, err)
			}
		})
		if err != nil {
			d.wg.Done()
			logger.Error("Failed to submit event %s to pool: %v", e.Type, err)
		}
	}
}

// Close 等待在途事件处理完毕并释放协程池
func (d *Dispatcher) Close() {
	d.wg.Wait()
	d.pool.Release()
}

// LogProcessor 日志事件处理器
type LogProcessor struct{}

// Name 处理器名称
func (LogProcessor) Name() string { return "event_logger" }

// Process 把事件写入服务日志
func (LogProcessor) Process(e Event) error {
	switch e.Type {
	case TypeContributionAccepted:
		logger.Info("Sale %d: contribution accepted, investor=%s value=%s tokens=%s raised=%s",
			e.SaleID, e.Investor.Hex(), e.Value, e.Tokens, e.RaisedTotal)
	case TypeContributionRejected:
		logger.Warn("Sale %d: contribution rejected, investor=%s value=%s reason=%s",
			e.SaleID, e.Investor.Hex(), e.Value, e.Reason)
	case TypeSaleFinalized:
		logger.Info("Sale %d: finalized, total raised=%s", e.SaleID, e.RaisedTotal)
	case TypeRefunded:
		logger.Info("Sale %d: refunded, investor=%s value=%s", e.SaleID, e.Investor.Hex(), e.Value)
	}
	return nil
}
