package controllers

import (
	"errors"
	"net/http"

	"github.com/Kariqs/camiu-api/initializers"
	"github.com/Kariqs/camiu-api/middlewares"
	"github.com/Kariqs/camiu-api/models"
	"github.com/Kariqs/camiu-api/storage"
	"github.com/gin-gonic/gin"
)

const msgCartItemNotFound = "Cart item not found"

func GetCart(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, _ := middlewares.CurrentUser(ctx)

		items, err := app.Store.ListCartItems(ctx.Request.Context(), user.ID)
		if err != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Error fetching cart items", err)
			return
		}

		lines := make([]models.CartLine, 0, len(items))
		for _, item := range items {
			line := models.CartLine{CartItem: item}
			product, err := app.Store.GetProduct(ctx.Request.Context(), item.ProductID)
			switch {
			case err == nil:
				line.Product = product
			case !errors.Is(err, storage.ErrNotFound):
				respondWithError(ctx, http.StatusInternalServerError, "Error fetching cart items", err)
				return
			}
			lines = append(lines, line)
		}

		sendJSONResponse(ctx, http.StatusOK, lines)
	}
}

// AddToCart adds a product, or increments the quantity of the line that
// already holds it.
func AddToCart(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, _ := middlewares.CurrentUser(ctx)

		var data models.NewCartItem
		if !bindJSON(ctx, &data, "Invalid cart item data") {
			return
		}
		if data.Quantity == 0 {
			data.Quantity = models.DefaultCartQuantity
		}

		item, err := app.Store.AddToCart(ctx.Request.Context(), models.CartItem{
			UserID:    user.ID,
			ProductID: data.ProductID,
			Quantity:  data.Quantity,
			Variant:   data.Variant,
		})
		if err != nil {
			respondWithStoreError(ctx, err, msgProductNotFound)
			return
		}
		sendJSONResponse(ctx, http.StatusCreated, item)
	}
}

// ownCartItem loads the cart item named by :id and checks it belongs to the
// current user.
func ownCartItem(app *initializers.App, ctx *gin.Context) (*models.CartItem, bool) {
	user, _ := middlewares.CurrentUser(ctx)

	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return nil, false
	}

	item, err := app.Store.GetCartItem(ctx.Request.Context(), id)
	if err != nil {
		respondWithStoreError(ctx, err, msgCartItemNotFound)
		return nil, false
	}
	if item.UserID != user.ID {
		sendErrorResponse(ctx, http.StatusForbidden, msgForbidden)
		return nil, false
	}
	return item, true
}

func UpdateCartItem(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		item, ok := ownCartItem(app, ctx)
		if !ok {
			return
		}

		var patch models.CartItemPatch
		if !bindJSON(ctx, &patch, "Invalid cart item data") {
			return
		}

		if patch.Quantity != nil {
			item.Quantity = *patch.Quantity
		}
		if patch.Variant != nil {
			item.Variant = patch.Variant
		}

		if err := app.Store.UpdateCartItem(ctx.Request.Context(), item); err != nil {
			respondWithStoreError(ctx, err, msgCartItemNotFound)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, item)
	}
}

func DeleteCartItem(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		item, ok := ownCartItem(app, ctx)
		if !ok {
			return
		}

		if err := app.Store.DeleteCartItem(ctx.Request.Context(), item.ID); err != nil {
			respondWithStoreError(ctx, err, msgCartItemNotFound)
			return
		}
		ctx.Status(http.StatusNoContent)
	}
}

func ClearCart(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, _ := middlewares.CurrentUser(ctx)

		if err := app.Store.ClearCart(ctx.Request.Context(), user.ID); err != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Error clearing cart", err)
			return
		}
		ctx.Status(http.StatusNoContent)
	}
}
