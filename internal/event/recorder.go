package event

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"

	"github.com/blues/crowdsale/internal/model"
)

// Recorder 事件落库处理器
// 把引擎事件持久化到 events 表，供审计回放。
type Recorder struct {
	db *gorm.DB
}

// NewRecorder 创建事件落库处理器
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Name 处理器名称
func (r *Recorder) Name() string { return "event_recorder" }

// Process 持久化事件
func (r *Recorder) Process(e Event) error {
	if err := r.db.Create(eventRow(e)).Error; err != nil {
		return fmt.Errorf("failed to persist event: %w", err)
	}
	return nil
}

// eventRow 组装事件落库行
// 金额缺省统一写成 "0"，numeric 列不接受空串
func eventRow(e Event) *model.Event {
	row := &model.Event{
		SaleID:    e.SaleID,
		EventType: string(e.Type),
		Value:     "0",
		Tokens:    "0",
		Raised:    "0",
		Reason:    e.Reason,
		At:        e.Timestamp,
	}
	if (e.Investor != common.Address{}) {
		row.Address = e.Investor.Hex()
	}
	if e.Value != nil {
		row.Value = e.Value.String()
	}
	if e.Tokens != nil {
		row.Tokens = e.Tokens.String()
	}
	if e.RaisedTotal != nil {
		row.Raised = e.RaisedTotal.String()
	}
	return row
}
