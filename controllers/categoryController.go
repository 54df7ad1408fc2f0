package controllers

import (
	"net/http"

	"github.com/Kariqs/camiu-api/initializers"
	"github.com/Kariqs/camiu-api/models"
	"github.com/gin-gonic/gin"
)

const msgCategoryNotFound = "Category not found"

func GetCategories(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		categories, err := app.Store.ListCategories(ctx.Request.Context())
		if err != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Error fetching categories", err)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, categories)
	}
}

func GetCategory(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := parseIDParam(ctx, "id")
		if !ok {
			return
		}

		category, err := app.Store.GetCategory(ctx.Request.Context(), id)
		if err != nil {
			respondWithStoreError(ctx, err, msgCategoryNotFound)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, category)
	}
}

func CreateCategory(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var data models.NewCategory
		if !bindJSON(ctx, &data, "Invalid category data") {
			return
		}

		category := data.Category()
		if err := app.Store.CreateCategory(ctx.Request.Context(), &category); err != nil {
			respondWithStoreError(ctx, err, msgCategoryNotFound)
			return
		}
		sendJSONResponse(ctx, http.StatusCreated, category)
	}
}

func UpdateCategory(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := parseIDParam(ctx, "id")
		if !ok {
			return
		}

		var patch models.CategoryPatch
		if !bindJSON(ctx, &patch, "Invalid category data") {
			return
		}

		category, err := app.Store.GetCategory(ctx.Request.Context(), id)
		if err != nil {
			respondWithStoreError(ctx, err, msgCategoryNotFound)
			return
		}

		patch.Apply(category)
		if err := app.Store.UpdateCategory(ctx.Request.Context(), category); err != nil {
			respondWithStoreError(ctx, err, msgCategoryNotFound)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, category)
	}
}

func DeleteCategory(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := parseIDParam(ctx, "id")
		if !ok {
			return
		}

		if err := app.Store.DeleteCategory(ctx.Request.Context(), id); err != nil {
			respondWithStoreError(ctx, err, msgCategoryNotFound)
			return
		}
		ctx.Status(http.StatusNoContent)
	}
}
