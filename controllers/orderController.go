package controllers

import (
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Kariqs/camiu-api/events"
	"github.com/Kariqs/camiu-api/initializers"
	"github.com/Kariqs/camiu-api/middlewares"
	"github.com/Kariqs/camiu-api/models"
	"github.com/Kariqs/camiu-api/payments"
	"github.com/Kariqs/camiu-api/storage"
	"github.com/Kariqs/camiu-api/utils"
	"github.com/gin-gonic/gin"
)

const (
	msgOrderNotFound     = "Order not found"
	idempotencyKeyHeader = "Idempotency-Key"
	maxIdempotencyKeyLen = 128
	maxWebhookBody       = 64 << 10
)

type placedOrderResponse struct {
	*models.Order
	Payment  *payments.Intent `json:"payment,omitempty"`
	Replayed bool             `json:"replayed,omitempty"`
}

type orderItemDetail struct {
	models.OrderItem
	Product *models.Product `json:"product"`
}

type orderDetail struct {
	*models.Order
	Items []orderItemDetail `json:"items"`
}

// PlaceOrder turns the current user's cart into an order.
func PlaceOrder(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, _ := middlewares.CurrentUser(ctx)

		var data models.PlaceOrderData
		if !bindJSON(ctx, &data, "Invalid order data") {
			return
		}

		key := strings.TrimSpace(ctx.GetHeader(idempotencyKeyHeader))
		if len(key) > maxIdempotencyKeyLen {
			sendErrorResponse(ctx, http.StatusBadRequest, "Idempotency-Key is too long")
			return
		}

		order, replayed, err := app.Store.PlaceOrder(ctx.Request.Context(), storage.Checkout{
			UserID:          user.ID,
			ShippingAddress: data.ShippingAddress,
			PaymentMethod:   data.PaymentMethod,
			IdempotencyKey:  key,
		})
		if err != nil {
			respondWithStoreError(ctx, err, msgProductNotFound)
			return
		}

		if replayed {
			sendJSONResponse(ctx, http.StatusOK, placedOrderResponse{Order: order, Replayed: true})
			return
		}

		log.Printf("Order %s placed by user %d, total %s", order.Reference, user.ID, order.Total.StringFixed(2))
		response := placedOrderResponse{Order: order}

		if order.PaymentMethod == models.PaymentMethodCreditCard && app.Payments != nil {
			intent, err := app.Payments.CreatePayment(ctx.Request.Context(), order)
			if err != nil {
				log.Printf("Payment setup failed for order %d: %v", order.ID, err)
			} else {
				response.Payment = intent
				if err := app.Store.UpdatePaymentStatus(ctx.Request.Context(), order.ID, models.PaymentStatusPending, intent.Reference); err != nil {
					log.Printf("Order %d created, but payment reference not saved: %s", order.ID, intent.Reference)
				} else {
					order.PaymentReference = intent.Reference
				}
			}
		}

		publishAsync(app, events.NewOrderEvent(events.OrderCreated, order))
		sendConfirmationAsync(app, user, order)

		sendJSONResponse(ctx, http.StatusCreated, response)
	}
}

func sendConfirmationAsync(app *initializers.App, user *models.User, order *models.Order) {
	if app.Mailer == nil {
		return
	}
	go func() {
		data := utils.OrderEmailData{Name: user.Username, Order: order}
		if err := app.Mailer.SendOrderConfirmation(user.Email, data); err != nil {
			log.Println("Error sending order confirmation email:", err)
		} else {
			log.Println("Order confirmation sent to:", user.Email)
		}
	}()
}

func GetUserOrders(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, _ := middlewares.CurrentUser(ctx)

		orders, _, err := app.Store.ListOrders(ctx.Request.Context(), storage.OrderFilter{UserID: user.ID})
		if err != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Error fetching orders", err)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, orders)
	}
}

// GetOrder returns one order with its items and their products. Only the
// owner or an admin may read it.
func GetOrder(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, _ := middlewares.CurrentUser(ctx)

		id, ok := parseIDParam(ctx, "id")
		if !ok {
			return
		}

		order, err := app.Store.GetOrder(ctx.Request.Context(), id)
		if err != nil {
			respondWithStoreError(ctx, err, msgOrderNotFound)
			return
		}
		if order.UserID != user.ID && !user.IsAdmin {
			sendErrorResponse(ctx, http.StatusForbidden, msgForbidden)
			return
		}

		detail := orderDetail{Order: order, Items: make([]orderItemDetail, 0, len(order.Items))}
		for _, item := range order.Items {
			line := orderItemDetail{OrderItem: item}
			product, err := app.Store.GetProduct(ctx.Request.Context(), item.ProductID)
			switch {
			case err == nil:
				line.Product = product
			case !errors.Is(err, storage.ErrNotFound):
				respondWithError(ctx, http.StatusInternalServerError, "Error fetching order", err)
				return
			}
			detail.Items = append(detail.Items, line)
		}

		sendJSONResponse(ctx, http.StatusOK, detail)
	}
}

// GetOrders lists every order for the back-office, paginated.
func GetOrders(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))
		if page < 1 {
			page = 1
		}
		if limit < 1 || limit > 100 {
			limit = 15
		}

		sortOrder := ctx.DefaultQuery("sort", "desc")
		if sortOrder != "asc" && sortOrder != "desc" {
			sortOrder = "desc"
		}

		filter := storage.OrderFilter{Page: page, Limit: limit, Ascending: sortOrder == "asc"}
		if status := ctx.Query("status"); status != "" {
			parsed, err := models.ParseOrderStatus(status)
			if err != nil {
				sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
				return
			}
			filter.Status = parsed
		}

		orders, count, err := app.Store.ListOrders(ctx.Request.Context(), filter)
		if err != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch orders", err)
			return
		}

		previousPage := page - 1
		nextPage := page + 1
		totalPages := math.Ceil(float64(count) / float64(limit))

		sendJSONResponse(ctx, http.StatusOK, gin.H{
			"orders": orders,
			"metadata": gin.H{
				"total":        count,
				"currentPage":  page,
				"limit":        limit,
				"totalPages":   int(totalPages),
				"hasPrevPage":  previousPage > 0,
				"hasNextPage":  int(totalPages) > page,
				"previousPage": previousPage,
				"nextPage":     nextPage,
			},
		})
	}
}

func UpdateOrderStatus(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := parseIDParam(ctx, "id")
		if !ok {
			return
		}

		var data models.OrderStatusData
		if !bindJSON(ctx, &data, "Status is required") {
			return
		}

		status, err := models.ParseOrderStatus(data.Status)
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
			return
		}

		order, err := app.Store.UpdateOrderStatus(ctx.Request.Context(), id, status)
		if err != nil {
			respondWithStoreError(ctx, err, msgOrderNotFound)
			return
		}

		publishAsync(app, events.NewOrderEvent(events.OrderStatusChanged, order))
		sendJSONResponse(ctx, http.StatusOK, order)
	}
}

func ExportOrders(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		filter := storage.OrderFilter{Ascending: true}
		if status := ctx.Query("status"); status != "" {
			parsed, err := models.ParseOrderStatus(status)
			if err != nil {
				sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
				return
			}
			filter.Status = parsed
		}

		orders, _, err := app.Store.ListOrders(ctx.Request.Context(), filter)
		if err != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch orders", err)
			return
		}

		ctx.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		ctx.Header("Content-Type", utils.XLSXContentType)
		ctx.Header("Content-Transfer-Encoding", "binary")
		ctx.Header("Expires", "0")

		if err := utils.WriteOrdersWorkbook(ctx.Writer, orders); err != nil {
			log.Println("Failed to write orders workbook:", err)
		}
	}
}

// OrderFeed streams order events to an admin over a websocket.
func OrderFeed(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if app.Feed == nil {
			sendErrorResponse(ctx, http.StatusServiceUnavailable, "Live feed is not available")
			return
		}
		if err := app.Feed.ServeWS(ctx.Writer, ctx.Request); err != nil {
			log.Println("Websocket upgrade failed:", err)
		}
	}
}

// HandlePaymentWebhook applies payment outcomes reported by the payment provider.
func HandlePaymentWebhook(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if app.Payments == nil {
			sendErrorResponse(ctx, http.StatusServiceUnavailable, "Payments are not configured")
			return
		}

		payload, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxWebhookBody))
		if err != nil {
			respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		result, err := app.Payments.ParseWebhook(payload, ctx.GetHeader("Stripe-Signature"))
		if err != nil {
			if errors.Is(err, payments.ErrInvalidSignature) {
				sendErrorResponse(ctx, http.StatusBadRequest, "Invalid signature")
				return
			}
			respondWithError(ctx, http.StatusBadRequest, "Invalid webhook payload", err)
			return
		}

		if !result.Handled {
			sendJSONResponse(ctx, http.StatusOK, gin.H{"received": true})
			return
		}

		reqCtx := ctx.Request.Context()
		if err := app.Store.UpdatePaymentStatus(reqCtx, result.OrderID, result.Status, result.Reference); err != nil {
			respondWithStoreError(ctx, err, msgOrderNotFound)
			return
		}
		log.Printf("Order %d payment %s (%s)", result.OrderID, result.Status, result.Reference)

		if order, err := app.Store.GetOrder(reqCtx, result.OrderID); err == nil {
			publishAsync(app, events.NewOrderEvent(events.OrderPaymentUpdated, order))
		}

		sendJSONResponse(ctx, http.StatusOK, gin.H{"received": true})
	}
}
