package handler

import (
	"time"

	"github.com/blues/crowdsale/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// CreateSaleRequest 创建销售请求
type CreateSaleRequest struct {
	Title              string    `json:"title" binding:"required"`
	Description        string    `json:"description"`
	Goal               string    `json:"goal" binding:"required"`
	Cap                string    `json:"cap"`
	PricingRate        string    `json:"pricing_rate" binding:"required"`
	DistributionMode   string    `json:"distribution_mode" binding:"required,oneof=transfer mint"`
	PoolSize           string    `json:"pool_size"`
	MinContribution    string    `json:"min_contribution"`
	MaxContribution    string    `json:"max_contribution"`
	StartTime          time.Time `json:"start_time" binding:"required"`
	EndTime            time.Time `json:"end_time" binding:"required"`
	AdminAddress       string    `json:"admin_address" binding:"required"`
	BeneficiaryAddress string    `json:"beneficiary_address" binding:"required"`
}

// InvestRequest 贡献请求
type InvestRequest struct {
	Address string `json:"address" binding:"required"`
	Value   string `json:"value" binding:"required"`
}

// FinalizeRequest 定局请求
type FinalizeRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// RefundRequest 退款请求
type RefundRequest struct {
	Address string `json:"address" binding:"required"`
}

// SaleResponse 销售响应模型
type SaleResponse struct {
	ID                 uint      `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Goal               string    `json:"goal"`
	Cap                string    `json:"cap"`
	RaisedTotal        string    `json:"raisedTotal"`
	TokensSold         string    `json:"tokensSold"`
	PricingRate        string    `json:"pricingRate"`
	DistributionMode   string    `json:"distributionMode"`
	PoolSize           string    `json:"poolSize"`
	Status             string    `json:"status"`
	State              string    `json:"state"` // 引擎按当前时间推导的状态
	GoalReached        bool      `json:"goalReached"`
	StartTime          time.Time `json:"startTime"`
	EndTime            time.Time `json:"endTime"`
	AdminAddress       string    `json:"adminAddress"`
	BeneficiaryAddress string    `json:"beneficiaryAddress"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ContributeRecordResponse 贡献记录响应模型
type ContributeRecordResponse struct {
	ID       uint      `json:"id"`
	SaleID   uint      `json:"saleId"`
	Seq      uint64    `json:"seq"`
	Address  string    `json:"address"`
	Value    string    `json:"value"`
	Tokens   string    `json:"tokens"`
	Accepted bool      `json:"accepted"`
	Reason   string    `json:"reason,omitempty"`
	At       time.Time `json:"at"`
}

// RefundRecordResponse 退款记录响应模型
type RefundRecordResponse struct {
	ID      uint      `json:"id"`
	SaleID  uint      `json:"saleId"`
	Address string    `json:"address"`
	Amount  string    `json:"amount"`
	At      time.Time `json:"at"`
}

// GetSaleContributeRecordsResponse 贡献记录列表响应
type GetSaleContributeRecordsResponse struct {
	Records    []ContributeRecordResponse `json:"records"`
	Pagination Pagination                 `json:"pagination"`
}

// GetSaleRefundsResponse 退款记录列表响应
type GetSaleRefundsResponse struct {
	Records    []RefundRecordResponse `json:"records"`
	Pagination Pagination             `json:"pagination"`
}

// ToSaleResponse 转换销售模型
func ToSaleResponse(sale *model.Sale, state string, goalReached bool) SaleResponse {
	return SaleResponse{
		ID:                 sale.ID,
		Title:              sale.Title,
		Description:        sale.Description,
		Goal:               sale.Goal,
		Cap:                sale.Cap,
		RaisedTotal:        sale.RaisedTotal,
		TokensSold:         sale.TokensSold,
		PricingRate:        sale.PricingRate,
		DistributionMode:   string(sale.DistributionMode),
		PoolSize:           sale.PoolSize,
		Status:             string(sale.Status),
		State:              state,
		GoalReached:        goalReached,
		StartTime:          sale.StartTime,
		EndTime:            sale.EndTime,
		AdminAddress:       sale.AdminAddress,
		BeneficiaryAddress: sale.BeneficiaryAddress,
		CreatedAt:          sale.CreatedAt,
		UpdatedAt:          sale.UpdatedAt,
	}
}

// ToContributeRecordResponse 转换贡献记录
func ToContributeRecordResponse(rec *model.ContributeRecord) ContributeRecordResponse {
	return ContributeRecordResponse{
		ID:       rec.ID,
		SaleID:   rec.SaleID,
		Seq:      rec.Seq,
		Address:  rec.Address,
		Value:    rec.Value,
		Tokens:   rec.Tokens,
		Accepted: rec.Accepted,
		Reason:   rec.Reason,
		At:       rec.At,
	}
}

// ToContributeRecordResponseList 转换贡献记录列表
func ToContributeRecordResponseList(records []model.ContributeRecord) []ContributeRecordResponse {
	out := make([]ContributeRecordResponse, 0, len(records))
	for i := range records {
		out = append(out, ToContributeRecordResponse(&records[i]))
	}
	return out
}

// ToRefundRecordResponse 转换退款记录
func ToRefundRecordResponse(rec *model.RefundRecord) RefundRecordResponse {
	return RefundRecordResponse{
		ID:      rec.ID,
		SaleID:  rec.SaleID,
		Address: rec.Address,
		Amount:  rec.Amount,
		At:      rec.At,
	}
}

// ToRefundRecordResponseList 转换退款记录列表
func ToRefundRecordResponseList(records []model.RefundRecord) []RefundRecordResponse {
	out := make([]RefundRecordResponse, 0, len(records))
	for i := range records {
		out = append(out, ToRefundRecordResponse(&records[i]))
	}
	return out
}
