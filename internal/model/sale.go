package model

import (
	"time"

	"gorm.io/gorm"
)

// Sale 众筹销售模型
// 金额字段统一为最小货币单位的十进制字符串，避免浮点误差。
type Sale struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// 基本信息
	Title       string `json:"title" gorm:"not null" binding:"required"`
	Description string `json:"description" gorm:"type:text"`

	// 募资约束
	Goal            string `json:"goal" gorm:"type:numeric(78,0);not null"`      // 最低募资目标
	Cap             string `json:"cap" gorm:"type:numeric(78,0);default:0"`      // 募资上限，0 表示不设上限
	RaisedTotal     string `json:"raised_total" gorm:"type:numeric(78,0);default:0"`
	TokensSold      string `json:"tokens_sold" gorm:"type:numeric(78,0);default:0"`
	MinContribution string `json:"min_contribution" gorm:"type:numeric(78,0);default:0"`
	MaxContribution string `json:"max_contribution" gorm:"type:numeric(78,0);default:0"`

	// 定价
	PricingRate string `json:"pricing_rate" gorm:"type:numeric(78,0);not null"` // 固定汇率，18位定点

	// 发放模式
	DistributionMode DistributionMode `json:"distribution_mode" gorm:"not null"`
	PoolSize         string           `json:"pool_size" gorm:"type:numeric(78,0);default:0"` // 转账模式的代币池大小

	// 时间信息
	StartTime time.Time `json:"start_time" gorm:"not null"`
	EndTime   time.Time `json:"end_time" gorm:"not null"`

	// 状态
	Status SaleStatus `json:"status" gorm:"default:'pending'"`

	// 账户信息
	AdminAddress       string `json:"admin_address" gorm:"not null"`
	BeneficiaryAddress string `json:"beneficiary_address" gorm:"not null"`

	// 关联
	Contributions []ContributeRecord `json:"contributions,omitempty" gorm:"foreignKey:SaleID"`
	Events        []Event            `json:"events,omitempty" gorm:"foreignKey:SaleID"`
}

// SaleStatus 销售状态
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"   // 待开始
	SaleStatusActive    SaleStatus = "active"    // 进行中
	SaleStatusClosed    SaleStatus = "closed"    // 已关闭（到期或触及上限）
	SaleStatusSuccess   SaleStatus = "success"   // 达标并定局
	SaleStatusFailed    SaleStatus = "failed"    // 未达标，可退款
	SaleStatusCancelled SaleStatus = "cancelled" // 已取消
)

// DistributionMode 代币发放模式
type DistributionMode string

const (
	DistributionModeTransfer DistributionMode = "transfer" // 从预划拨代币池转账
	DistributionModeMint     DistributionMode = "mint"     // 贡献时按需铸造
)
