package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blues/crowdsale/internal/logic"
	"github.com/blues/crowdsale/internal/model"
)

// SaleHandler 销售处理器
type SaleHandler struct {
	saleLogic       *logic.SaleLogic
	contributeLogic *logic.ContributeRecordLogic
	refundLogic     *logic.RefundRecordLogic
}

// NewSaleHandler 创建销售处理器
func NewSaleHandler(saleLogic *logic.SaleLogic, contributeLogic *logic.ContributeRecordLogic, refundLogic *logic.RefundRecordLogic) *SaleHandler {
	return &SaleHandler{
		saleLogic:       saleLogic,
		contributeLogic: contributeLogic,
		refundLogic:     refundLogic,
	}
}

// CreateSale 创建销售
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	sale := &model.Sale{
		Title:              req.Title,
		Description:        req.Description,
		Goal:               req.Goal,
		Cap:                req.Cap,
		PricingRate:        req.PricingRate,
		DistributionMode:   model.DistributionMode(req.DistributionMode),
		PoolSize:           req.PoolSize,
		MinContribution:    req.MinContribution,
		MaxContribution:    req.MaxContribution,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		AdminAddress:       req.AdminAddress,
		BeneficiaryAddress: req.BeneficiaryAddress,
	}

	if err := h.saleLogic.CreateSale(sale); err != nil {
		ErrorResponse(c, statusForError(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "创建销售成功", h.saleResponse(sale))
}

// GetSales 获取销售列表
func (h *SaleHandler) GetSales(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	sales, total, err := h.saleLogic.GetSales(page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	responses := make([]SaleResponse, 0, len(sales))
	for i := range sales {
		responses = append(responses, h.saleResponse(&sales[i]))
	}

	pagination := Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}

	SuccessResponse(c, http.StatusOK, "获取销售列表成功", gin.H{
		"sales":      responses,
		"pagination": pagination,
	})
}

// GetSale 获取销售详情
func (h *SaleHandler) GetSale(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}

	sale, err := h.saleLogic.GetSale(saleID)
	if err != nil {
		ErrorResponse(c, statusForError(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取销售详情成功", h.saleResponse(sale))
}

// FinalizeSale 定局销售
func (h *SaleHandler) FinalizeSale(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}

	var req FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	if err := h.saleLogic.Finalize(saleID, req.Caller, time.Now()); err != nil {
		ErrorResponse(c, statusForError(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "销售定局成功", nil)
}

// GetSaleStats 获取销售统计信息
func (h *SaleHandler) GetSaleStats(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}

	if _, err := h.saleLogic.GetSale(saleID); err != nil {
		ErrorResponse(c, statusForError(err), err.Error())
		return
	}

	contributeStats, err := h.contributeLogic.GetContributeStats(saleID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	refundStats, err := h.refundLogic.GetRefundStats(saleID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	stats := gin.H{
		"contributions": contributeStats,
		"refunds":       refundStats,
	}
	if rt, err := h.saleLogic.Runtime(saleID); err == nil {
		stats["state"] = string(rt.Engine.State(time.Now()))
		stats["goal_reached"] = rt.Engine.GoalReached()
		stats["investor_count"] = rt.Engine.InvestorCount()
		stats["raised_total"] = rt.Engine.RaisedTotal().String()
		stats["tokens_sold"] = rt.Engine.TokensSold().String()
		stats["vault_balance"] = rt.Vault.Balance().String()
		stats["token_supply"] = rt.Token.TotalSupply().String()
	}

	SuccessResponse(c, http.StatusOK, "获取销售统计信息成功", stats)
}

// saleResponse 组装销售响应，附带引擎推导的实时状态
func (h *SaleHandler) saleResponse(sale *model.Sale) SaleResponse {
	state := ""
	goalReached := false
	if rt, err := h.saleLogic.Runtime(sale.ID); err == nil {
		state = string(rt.Engine.State(time.Now()))
		goalReached = rt.Engine.GoalReached()
	}
	return ToSaleResponse(sale, state, goalReached)
}

// parseSaleID 解析路径中的销售ID
func parseSaleID(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的销售ID")
		return 0, false
	}
	return uint(id), true
}
