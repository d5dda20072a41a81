package logic

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/blues/crowdsale/internal/model"
)

// RefundRecordLogic 退款记录业务逻辑
type RefundRecordLogic struct {
	db *gorm.DB
}

// NewRefundRecordLogic 创建退款记录业务逻辑
func NewRefundRecordLogic(db *gorm.DB) *RefundRecordLogic {
	return &RefundRecordLogic{db: db}
}

// GetSaleRefunds 分页获取销售的退款记录
func (r *RefundRecordLogic) GetSaleRefunds(saleID uint, page, pageSize int) ([]model.RefundRecord, int64, error) {
	var refunds []model.RefundRecord
	var total int64

	// 获取总数
	if err := r.db.Model(&model.RefundRecord{}).Where("sale_id = ?", saleID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取退款记录总数失败: %w", err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := r.db.Where("sale_id = ?", saleID).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&refunds).Error; err != nil {
		return nil, 0, fmt.Errorf("获取退款记录失败: %w", err)
	}

	return refunds, total, nil
}

// GetRefundStats 获取退款统计信息
func (r *RefundRecordLogic) GetRefundStats(saleID uint) (map[string]interface{}, error) {
	var stats struct {
		TotalRefunds int64  `json:"total_refunds"`
		TotalAmount  string `json:"total_amount"`
	}

	// 总退款记录数
	if err := r.db.Model(&model.RefundRecord{}).Where("sale_id = ?", saleID).Count(&stats.TotalRefunds).Error; err != nil {
		return nil, fmt.Errorf("获取总退款记录数失败: %w", err)
	}

	// 总退款金额
	if err := r.db.Model(&model.RefundRecord{}).Where("sale_id = ?", saleID).
		Select("COALESCE(SUM(amount), 0)::text").Scan(&stats.TotalAmount).Error; err != nil {
		return nil, fmt.Errorf("获取总退款金额失败: %w", err)
	}

	return map[string]interface{}{
		"total_refunds": stats.TotalRefunds,
		"total_amount":  stats.TotalAmount,
	}, nil
}
