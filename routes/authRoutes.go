package routes

import (
	"github.com/Kariqs/camiu-api/controllers"
	"github.com/Kariqs/camiu-api/initializers"
	"github.com/Kariqs/camiu-api/middlewares"
	"github.com/gin-gonic/gin"
)

func AuthRoutes(api *gin.RouterGroup, app *initializers.App) {
	api.POST("/register", controllers.Register(app))
	api.POST("/login", controllers.Login(app))
	api.POST("/logout", middlewares.RequireAuth(), controllers.Logout(app))
	api.GET("/user", middlewares.RequireAuth(), controllers.GetUser)
}
