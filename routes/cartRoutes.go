package routes

import (
	"github.com/Kariqs/camiu-api/controllers"
	"github.com/Kariqs/camiu-api/initializers"
	"github.com/Kariqs/camiu-api/middlewares"
	"github.com/gin-gonic/gin"
)

func CartRoutes(api *gin.RouterGroup, app *initializers.App) {
	cart := api.Group("/cart", middlewares.RequireAuth())
	{
		cart.GET("", controllers.GetCart(app))
		cart.POST("", controllers.AddToCart(app))
		cart.DELETE("", controllers.ClearCart(app))
		cart.PUT("/:id", controllers.UpdateCartItem(app))
		cart.DELETE("/:id", controllers.DeleteCartItem(app))
	}
}
