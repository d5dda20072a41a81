package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blues/crowdsale/internal/logic"
)

// ContributeHandler 贡献处理器
type ContributeHandler struct {
	saleLogic       *logic.SaleLogic
	contributeLogic *logic.ContributeRecordLogic
}

// NewContributeHandler 创建贡献处理器
func NewContributeHandler(saleLogic *logic.SaleLogic, contributeLogic *logic.ContributeRecordLogic) *ContributeHandler {
	return &ContributeHandler{
		saleLogic:       saleLogic,
		contributeLogic: contributeLogic,
	}
}

// Invest 提交一笔贡献
func (h *ContributeHandler) Invest(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}

	var req InvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	record, err := h.saleLogic.Invest(saleID, req.Address, req.Value, time.Now())
	if err != nil {
		// 被拒绝的贡献也有留痕记录，一并返回便于调用方排查
		status := statusForError(err)
		if record != nil {
			c.JSON(status, Response{
				Success: false,
				Message: err.Error(),
				Data:    ToContributeRecordResponse(record),
			})
			return
		}
		ErrorResponse(c, status, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "贡献成功", ToContributeRecordResponse(record))
}

// GetSaleContributeRecords 获取销售贡献记录
func (h *ContributeHandler) GetSaleContributeRecords(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	// 调用logic层获取销售贡献记录
	records, total, err := h.contributeLogic.GetSaleContributeRecords(saleID, page, pageSize)
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

	SuccessResponse(c, http.StatusOK, "获取销售贡献记录成功", GetSaleContributeRecordsResponse{
		Records:    ToContributeRecordResponseList(records),
		Pagination: pagination,
	})
}
