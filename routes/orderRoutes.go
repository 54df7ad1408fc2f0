package routes

import (
	"github.com/Kariqs/camiu-api/controllers"
	"github.com/Kariqs/camiu-api/initializers"
	"github.com/Kariqs/camiu-api/middlewares"
	"github.com/gin-gonic/gin"
)

func OrderRoutes(api *gin.RouterGroup, app *initializers.App) {
	orders := api.Group("/orders", middlewares.RequireAuth())
	{
		orders.POST("", controllers.PlaceOrder(app))
		orders.GET("", controllers.GetUserOrders(app))
		orders.GET("/:id", controllers.GetOrder(app))
	}

	api.POST("/payments/webhook", controllers.HandlePaymentWebhook(app))
}

func AdminRoutes(api *gin.RouterGroup, app *initializers.App) {
	admin := api.Group("/admin", middlewares.RequireAdmin())
	{
		admin.GET("/orders", controllers.GetOrders(app))
		admin.GET("/orders/export", controllers.ExportOrders(app))
		admin.GET("/orders/live", controllers.OrderFeed(app))
		admin.PATCH("/orders/:id/status", controllers.UpdateOrderStatus(app))
		admin.GET("/products/export", controllers.ExportProducts(app))
	}
}
