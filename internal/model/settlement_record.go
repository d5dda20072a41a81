package model

import (
	"time"

	"gorm.io/gorm"
)

// SettlementRecord 代币结算记录
// 每笔被接纳的贡献对应一条结算记录，记录发放模式与发放数量。
type SettlementRecord struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	SaleID       uint             `json:"sale_id" gorm:"not null;index"`
	ContributeID uint             `json:"contribute_id" gorm:"not null"`
	Address      string           `json:"address" gorm:"not null"`
	Tokens       string           `json:"tokens" gorm:"type:numeric(78,0);not null"`
	Mode         DistributionMode `json:"mode" gorm:"not null"`
	At           time.Time        `json:"at" gorm:"not null"`

	// 关联
	Sale       Sale             `json:"sale,omitempty" gorm:"foreignKey:SaleID"`
	Contribute ContributeRecord `json:"contribute,omitempty" gorm:"foreignKey:ContributeID"`
}
