package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blues/crowdsale/internal/engine"
	"github.com/blues/crowdsale/internal/logic"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// statusForError 引擎与业务错误到HTTP状态码的映射
// 贡献被拒绝属于业务结果而非服务故障，统一返回 4xx。
func statusForError(err error) int {
	switch {
	case errors.Is(err, logic.ErrSaleNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, logic.ErrInvalidAmount),
		errors.Is(err, logic.ErrInvalidAddress),
		errors.Is(err, logic.ErrInvalidSale),
		errors.Is(err, engine.ErrInvalidConfiguration),
		errors.Is(err, engine.ErrZeroValue):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrSaleNotOpen),
		errors.Is(err, engine.ErrZeroTokens),
		errors.Is(err, engine.ErrInvalidContribution),
		errors.Is(err, engine.ErrCapExceeded),
		errors.Is(err, engine.ErrPoolExhausted),
		errors.Is(err, engine.ErrMintingNotAuthorized),
		errors.Is(err, engine.ErrAlreadyFinalized),
		errors.Is(err, engine.ErrGoalNotReached),
		errors.Is(err, engine.ErrRefundNotAvailable),
		errors.Is(err, engine.ErrAlreadyRefunded):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
