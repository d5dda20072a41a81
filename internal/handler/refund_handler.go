package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blues/crowdsale/internal/logic"
)

// RefundHandler 退款处理器
type RefundHandler struct {
	saleLogic   *logic.SaleLogic
	refundLogic *logic.RefundRecordLogic
}

// NewRefundHandler 创建退款处理器
func NewRefundHandler(saleLogic *logic.SaleLogic, refundLogic *logic.RefundRecordLogic) *RefundHandler {
	return &RefundHandler{
		saleLogic:   saleLogic,
		refundLogic: refundLogic,
	}
}

// Refund 投资人申请退款
func (h *RefundHandler) Refund(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	record, err := h.saleLogic.Refund(saleID, req.Address, time.Now())
	if err != nil {
		ErrorResponse(c, statusForError(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "退款成功", ToRefundRecordResponse(record))
}

// GetSaleRefunds 获取销售退款记录
func (h *RefundHandler) GetSaleRefunds(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	records, total, err := h.refundLogic.GetSaleRefunds(saleID, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	pagination := Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}

	SuccessResponse(c, http.StatusOK, "获取销售退款记录成功", GetSaleRefundsResponse{
		Records:    ToRefundRecordResponseList(records),
		Pagination: pagination,
	})
}
