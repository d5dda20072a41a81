package model

import (
	"time"

	"gorm.io/gorm"
)

// Event 销售审计事件
// 引擎发布的事件经事件管道异步落库，供监控与审计回放。
type Event struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	SaleID    uint      `json:"sale_id" gorm:"not null;index"`
	EventType string    `json:"event_type" gorm:"not null"`
	Address   string    `json:"address"`
	Value     string    `json:"value" gorm:"type:numeric(78,0);default:0"`
	Tokens    string    `json:"tokens" gorm:"type:numeric(78,0);default:0"`
	Raised    string    `json:"raised" gorm:"type:numeric(78,0);default:0"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at" gorm:"not null"`

	// 关联
	Sale Sale `json:"sale,omitempty" gorm:"foreignKey:SaleID"`
}
