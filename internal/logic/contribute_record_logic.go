package logic

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/blues/crowdsale/internal/model"
)

// ContributeRecordLogic 贡献记录业务逻辑
type ContributeRecordLogic struct {
	db *gorm.DB
}

// NewContributeRecordLogic 创建贡献记录业务逻辑
func NewContributeRecordLogic(db *gorm.DB) *ContributeRecordLogic {
	return &ContributeRecordLogic{db: db}
}

// GetSaleContributeRecords 分页获取销售的贡献记录
func (c *ContributeRecordLogic) GetSaleContributeRecords(saleID uint, page, pageSize int) ([]model.ContributeRecord, int64, error) {
	var contributions []model.ContributeRecord
	var total int64

	// 获取总数
	if err := c.db.Model(&model.ContributeRecord{}).Where("sale_id = ?", saleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 获取数据
	offset := (page - 1) * pageSize
	if err := c.db.Where("sale_id = ?", saleID).
		Offset(offset).
		Limit(pageSize).
		Order("seq DESC").
		Find(&contributions).Error; err != nil {
		return nil, 0, err
	}

	return contributions, total, nil
}

// GetContributeStats 获取贡献统计信息
func (c *ContributeRecordLogic) GetContributeStats(saleID uint) (map[string]interface{}, error) {
	var stats struct {
		TotalAttempts      int64  `json:"total_attempts"`
		AcceptedCount      int64  `json:"accepted_count"`
		RejectedCount      int64  `json:"rejected_count"`
		TotalValue         string `json:"total_value"`
		TotalTokens        string `json:"total_tokens"`
		UniqueContributors int64  `json:"unique_contributors"`
	}

	// 总尝试数
	if err := c.db.Model(&model.ContributeRecord{}).Where("sale_id = ?", saleID).Count(&stats.TotalAttempts).Error; err != nil {
		return nil, fmt.Errorf("获取贡献尝试总数失败: %w", err)
	}

	// 接纳数
	if err := c.db.Model(&model.ContributeRecord{}).Where("sale_id = ? AND accepted = ?", saleID, true).Count(&stats.AcceptedCount).Error; err != nil {
		return nil, fmt.Errorf("获取接纳贡献数失败: %w", err)
	}
	stats.RejectedCount = stats.TotalAttempts - stats.AcceptedCount

	// 接纳总金额
	if err := c.db.Model(&model.ContributeRecord{}).Where("sale_id = ? AND accepted = ?", saleID, true).
		Select("COALESCE(SUM(value), 0)::text").Scan(&stats.TotalValue).Error; err != nil {
		return nil, fmt.Errorf("获取接纳总金额失败: %w", err)
	}

	// 发放代币总量
	if err := c.db.Model(&model.ContributeRecord{}).Where("sale_id = ? AND accepted = ?", saleID, true).
		Select("COALESCE(SUM(tokens), 0)::text").Scan(&stats.TotalTokens).Error; err != nil {
		return nil, fmt.Errorf("获取发放代币总量失败: %w", err)
	}

	// 唯一投资人数量（只统计被接纳的）
	if err := c.db.Model(&model.ContributeRecord{}).Where("sale_id = ? AND accepted = ?", saleID, true).
		Select("COUNT(DISTINCT address)").Scan(&stats.UniqueContributors).Error; err != nil {
		return nil, fmt.Errorf("获取唯一投资人数量失败: %w", err)
	}

	return map[string]interface{}{
		"total_attempts":      stats.TotalAttempts,
		"accepted_count":      stats.AcceptedCount,
		"rejected_count":      stats.RejectedCount,
		"total_value":         stats.TotalValue,
		"total_tokens":        stats.TotalTokens,
		"unique_contributors": stats.UniqueContributors,
	}, nil
}
