package routes

import (
	"github.com/Kariqs/camiu-api/initializers"
	"github.com/Kariqs/camiu-api/middlewares"
	"github.com/Kariqs/camiu-api/models"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupRoutes registers every endpoint on server.
func SetupRoutes(server *gin.Engine, app *initializers.App) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		models.RegisterValidations(v)
	}

	DefaultRoutes(server)

	api := server.Group("/api", middlewares.LoadUser(app))
	AuthRoutes(api, app)
	CategoryRoutes(api, app)
	ProductRoutes(api, app)
	CartRoutes(api, app)
	OrderRoutes(api, app)
	AdminRoutes(api, app)
}
