package model

import (
	"time"

	"gorm.io/gorm"
)

// RefundRecord 退款记录
// 每个地址在一次销售中至多一条成功退款记录。
type RefundRecord struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	SaleID  uint      `json:"sale_id" gorm:"not null;uniqueIndex:idx_refund_sale_address"`
	Address string    `json:"address" gorm:"not null;uniqueIndex:idx_refund_sale_address"`
	Amount  string    `json:"amount" gorm:"type:numeric(78,0);not null"`
	At      time.Time `json:"at" gorm:"not null"`

	// 关联
	Sale Sale `json:"sale,omitempty" gorm:"foreignKey:SaleID"`
}
