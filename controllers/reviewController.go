package controllers

import (
	"net/http"

	"github.com/Kariqs/camiu-api/initializers"
	"github.com/Kariqs/camiu-api/middlewares"
	"github.com/Kariqs/camiu-api/models"
	"github.com/gin-gonic/gin"
)

func GetProductReviews(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := parseIDParam(ctx, "id")
		if !ok {
			return
		}

		reviews, err := app.Store.ListReviews(ctx.Request.Context(), id)
		if err != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Error fetching reviews", err)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, reviews)
	}
}

func CreateReview(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, _ := middlewares.CurrentUser(ctx)

		var data models.NewReview
		if !bindJSON(ctx, &data, "Invalid review data") {
			return
		}

		review := models.Review{
			ProductID: data.ProductID,
			UserID:    user.ID,
			Rating:    data.Rating,
			Title:     data.Title,
			Comment:   data.Comment,
		}
		if err := app.Store.CreateReview(ctx.Request.Context(), &review); err != nil {
			respondWithStoreError(ctx, err, msgProductNotFound)
			return
		}
		sendJSONResponse(ctx, http.StatusCreated, review)
	}
}
