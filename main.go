package main

import (
	"context"
	"log"
	"time"

	"github.com/Kariqs/camiu-api/initializers"
	"github.com/Kariqs/camiu-api/routes"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := initializers.LoadConfig()
	if err != nil {
		log.Fatal("Error loading configuration: ", err)
	}

	app, cleanup, err := initializers.Setup(context.Background(), cfg)
	if err != nil {
		log.Fatal("Error initializing application: ", err)
	}
	defer cleanup()

	server := gin.Default()
	server.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	routes.SetupRoutes(server, app)

	log.Printf("Server listening on port %s", cfg.Port)
	if err := server.Run(":" + cfg.Port); err != nil {
		log.Println("Server stopped: ", err)
	}
}
