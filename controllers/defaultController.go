package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to the Camiu API. Enjoy seamless interaction with this API.

The following are the endpoints for this API:

AUTH
- POST "/api/register" - Create user account
- POST "/api/login" - Log in with username or email
- POST "/api/logout" - End the current session
- GET "/api/user" - Get the logged in user

CATALOG
- GET "/api/categories" - Get all categories
- GET "/api/categories/:id" - Get category by ID
- GET "/api/products" - Get products (category, featured, new, bestseller, search)
- GET "/api/products/:id" - Get product by ID
- GET "/api/products/:id/reviews" - Get product reviews
- POST "/api/reviews" - Review a product

CART
- GET "/api/cart" - Get cart
- POST "/api/cart" - Add product to cart
- PUT "/api/cart/:id" - Update cart item
- DELETE "/api/cart/:id" - Remove cart item
- DELETE "/api/cart" - Clear cart

ORDER
- POST "/api/orders" - Place an order from the cart
- GET "/api/orders" - Get my orders
- GET "/api/orders/:id" - Get order by ID

ADMIN
- POST/PUT/DELETE "/api/categories" and "/api/products" - Manage catalog
- POST "/api/products/:id/images" - Upload product images
- GET "/api/admin/orders" - Get all orders
- PATCH "/api/admin/orders/:id/status" - Update order status
- GET "/api/admin/orders/export" - Download orders spreadsheet
- GET "/api/admin/products/export" - Download products spreadsheet
- GET "/api/admin/orders/live" - Live order feed (websocket)`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
