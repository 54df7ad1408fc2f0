package routes

import (
	"github.com/Kariqs/camiu-api/controllers"
	"github.com/Kariqs/camiu-api/initializers"
	"github.com/Kariqs/camiu-api/middlewares"
	"github.com/gin-gonic/gin"
)

func CategoryRoutes(api *gin.RouterGroup, app *initializers.App) {
	api.GET("/categories", controllers.GetCategories(app))
	api.GET("/categories/:id", controllers.GetCategory(app))

	admin := api.Group("/categories", middlewares.RequireAdmin())
	{
		admin.POST("", controllers.CreateCategory(app))
		admin.PUT("/:id", controllers.UpdateCategory(app))
		admin.DELETE("/:id", controllers.DeleteCategory(app))
	}
}

func ProductRoutes(api *gin.RouterGroup, app *initializers.App) {
	api.GET("/products", controllers.GetProducts(app))
	api.GET("/products/:id", controllers.GetProduct(app))
	api.GET("/products/:id/reviews", controllers.GetProductReviews(app))
	api.POST("/reviews", middlewares.RequireAuth(), controllers.CreateReview(app))

	admin := api.Group("/products", middlewares.RequireAdmin())
	{
		admin.POST("", controllers.CreateProduct(app))
		admin.PUT("/:id", controllers.UpdateProduct(app))
		admin.DELETE("/:id", controllers.DeleteProduct(app))
		admin.POST("/:id/images", controllers.UploadProductImages(app))
	}
}
