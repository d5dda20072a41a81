package model

import (
	"time"

	"gorm.io/gorm"
)

// ContributeRecord 贡献记录
// 接纳与拒绝的尝试都会落库，Accepted 区分结果。
type ContributeRecord struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	SaleID   uint   `json:"sale_id" gorm:"not null;index"`
	Seq      uint64 `json:"seq" gorm:"not null"` // 引擎内单调序号
	Address  string `json:"address" gorm:"not null;index"`
	Value    string `json:"value" gorm:"type:numeric(78,0);not null"`
	Tokens   string `json:"tokens" gorm:"type:numeric(78,0);default:0"`
	Accepted bool   `json:"accepted" gorm:"not null"`
	Reason   string `json:"reason"` // 拒绝原因，接纳时为空
	At       time.Time `json:"at" gorm:"not null"`

	// 关联
	Sale Sale `json:"sale,omitempty" gorm:"foreignKey:SaleID"`
}
