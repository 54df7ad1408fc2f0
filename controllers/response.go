package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Kariqs/camiu-api/events"
	"github.com/Kariqs/camiu-api/initializers"
	"github.com/Kariqs/camiu-api/storage"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const sideEffectTimeout = 15 * time.Second

type fieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

func sendJSONResponse(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"message": message})
}

// respondWithError logs err and answers with message only; error details
// never reach the client.
func respondWithError(ctx *gin.Context, statusCode int, message string, err error) {
	if err != nil {
		log.Printf("%s %s: %s: %v", ctx.Request.Method, ctx.FullPath(), message, err)
	}
	sendErrorResponse(ctx, statusCode, message)
}

// bindJSON binds the body into obj and answers 400 itself on failure.
func bindJSON(ctx *gin.Context, obj any, message string) bool {
	err := ctx.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
		}
		sendJSONResponse(ctx, http.StatusBadRequest, gin.H{"message": message, "errors": details})
		return false
	}

	log.Println("Bind error:", err)
	sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
	return false
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// respondWithStoreError maps storage sentinel errors onto HTTP statuses.
func respondWithStoreError(ctx *gin.Context, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		sendErrorResponse(ctx, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, storage.ErrCartEmpty):
		sendErrorResponse(ctx, http.StatusBadRequest, msgCartEmpty)
	case errors.Is(err, storage.ErrInvalidInput):
		sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrDuplicate):
		sendErrorResponse(ctx, http.StatusConflict, msgAlreadyExists)
	case errors.Is(err, storage.ErrInsufficientStock),
		errors.Is(err, storage.ErrProductUnavailable),
		errors.Is(err, storage.ErrInvalidTransition),
		errors.Is(err, storage.ErrConflict):
		sendErrorResponse(ctx, http.StatusConflict, err.Error())
	default:
		respondWithError(ctx, http.StatusInternalServerError, msgInternalServerError, err)
	}
}

// publishAsync delivers an event without holding up the response.
func publishAsync(app *initializers.App, event events.Event) {
	if app.Events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := app.Events.Publish(ctx, event); err != nil {
			log.Printf("Failed to publish %s for order %d: %v", event.Type, event.OrderID, err)
		}
	}()
}
