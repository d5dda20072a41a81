package router

import (
	"gorm.io/gorm"

	"github.com/gin-gonic/gin"

	"github.com/blues/crowdsale/internal/handler"
	"github.com/blues/crowdsale/internal/logic"
)

func Setup(db *gorm.DB, saleLogic *logic.SaleLogic) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "crowdsale-service",
		})
	})

	contributeLogic := logic.NewContributeRecordLogic(db)
	refundLogic := logic.NewRefundRecordLogic(db)

	saleHandler := handler.NewSaleHandler(saleLogic, contributeLogic, refundLogic)
	contributeHandler := handler.NewContributeHandler(saleLogic, contributeLogic)
	refundHandler := handler.NewRefundHandler(saleLogic, refundLogic)

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 销售相关路由
		sales := v1.Group("/sales")
		{
			sales.POST("", saleHandler.CreateSale)
			sales.GET("", saleHandler.GetSales)
			sales.GET("/:id", saleHandler.GetSale)
			sales.POST("/:id/finalize", saleHandler.FinalizeSale)
			sales.GET("/:id/stats", saleHandler.GetSaleStats)
			sales.POST("/:id/invest", contributeHandler.Invest)
			sales.GET("/:id/contributions", contributeHandler.GetSaleContributeRecords)
			sales.POST("/:id/refund", refundHandler.Refund)
			sales.GET("/:id/refunds", refundHandler.GetSaleRefunds)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
