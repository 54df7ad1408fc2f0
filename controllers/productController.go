package controllers

import (
	"fmt"
	"log"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/Kariqs/camiu-api/initializers"
	"github.com/Kariqs/camiu-api/models"
	"github.com/Kariqs/camiu-api/storage"
	"github.com/Kariqs/camiu-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgProductNotFound = "Product not found"
	maxImageUploads    = 10
)

func parseProductFilter(ctx *gin.Context) (storage.ProductFilter, error) {
	var filter storage.ProductFilter

	if category := ctx.Query("category"); category != "" {
		id, err := strconv.ParseUint(category, 10, 32)
		if err != nil {
			return filter, fmt.Errorf("invalid category %q", category)
		}
		filter.CategoryID = uint(id)
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"featured", &filter.Featured},
		{"new", &filter.New},
		{"bestseller", &filter.Bestseller},
	}
	for _, f := range flags {
		value := ctx.Query(f.name)
		if value == "" {
			continue
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return filter, fmt.Errorf("invalid %s %q", f.name, value)
		}
		*f.dst = b
	}

	filter.Search = ctx.Query("search")
	return filter, nil
}

func GetProducts(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		filter, err := parseProductFilter(ctx)
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
			return
		}

		products, err := app.Store.ListProducts(ctx.Request.Context(), filter)
		if err != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Error fetching products", err)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, products)
	}
}

func GetProduct(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := parseIDParam(ctx, "id")
		if !ok {
			return
		}

		product, err := app.Store.GetProduct(ctx.Request.Context(), id)
		if err != nil {
			respondWithStoreError(ctx, err, msgProductNotFound)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, product)
	}
}

func CreateProduct(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var data models.NewProduct
		if !bindJSON(ctx, &data, "Invalid product data") {
			return
		}

		product := data.Product()
		if err := app.Store.CreateProduct(ctx.Request.Context(), &product); err != nil {
			respondWithStoreError(ctx, err, msgProductNotFound)
			return
		}
		sendJSONResponse(ctx, http.StatusCreated, product)
	}
}

func UpdateProduct(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := parseIDParam(ctx, "id")
		if !ok {
			return
		}

		var patch models.ProductPatch
		if !bindJSON(ctx, &patch, "Invalid product data") {
			return
		}

		product, err := app.Store.UpdateProduct(ctx.Request.Context(), id, patch)
		if err != nil {
			respondWithStoreError(ctx, err, msgProductNotFound)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, product)
	}
}

func DeleteProduct(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := parseIDParam(ctx, "id")
		if !ok {
			return
		}

		if err := app.Store.DeleteProduct(ctx.Request.Context(), id); err != nil {
			respondWithStoreError(ctx, err, msgProductNotFound)
			return
		}
		ctx.Status(http.StatusNoContent)
	}
}

// UploadProductImages stores the multipart "images" files and appends their
// URLs to the product's image list.
func UploadProductImages(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if app.Uploader == nil {
			sendErrorResponse(ctx, http.StatusServiceUnavailable, "Image uploads are not configured")
			return
		}

		id, ok := parseIDParam(ctx, "id")
		if !ok {
			return
		}

		form, err := ctx.MultipartForm()
		if err != nil {
			respondWithError(ctx, http.StatusBadRequest, "Invalid form data", err)
			return
		}

		files := form.File["images"]
		if len(files) == 0 {
			sendErrorResponse(ctx, http.StatusBadRequest, "No files uploaded")
			return
		}
		if len(files) > maxImageUploads {
			sendErrorResponse(ctx, http.StatusBadRequest, fmt.Sprintf("At most %d images per upload", maxImageUploads))
			return
		}

		product, err := app.Store.GetProduct(ctx.Request.Context(), id)
		if err != nil {
			respondWithStoreError(ctx, err, msgProductNotFound)
			return
		}

		var uploadedUrls []string
		var failedUploads []string

		for _, file := range files {
			f, openErr := file.Open()
			if openErr != nil {
				log.Printf("Error opening file %s: %v", file.Filename, openErr)
				failedUploads = append(failedUploads, file.Filename)
				continue
			}

			key := fmt.Sprintf("products/%d/%s-%s%s", id, time.Now().Format("20060102150405"), uuid.NewString(), path.Ext(file.Filename))
			url, uploadErr := app.Uploader.Upload(ctx.Request.Context(), key, file.Header.Get("Content-Type"), f)
			f.Close()

			if uploadErr != nil {
				log.Printf("Error uploading file %s: %v", file.Filename, uploadErr)
				failedUploads = append(failedUploads, file.Filename)
				continue
			}
			uploadedUrls = append(uploadedUrls, url)
		}

		if len(uploadedUrls) > 0 {
			product, err = app.Store.AddProductImages(ctx.Request.Context(), id, uploadedUrls)
			if err != nil {
				respondWithStoreError(ctx, err, msgProductNotFound)
				return
			}
		}

		response := gin.H{
			"message": "Files processed",
			"urls":    uploadedUrls,
			"product": product,
		}
		if len(failedUploads) > 0 {
			response["failed"] = failedUploads
		}

		status := http.StatusOK
		if len(uploadedUrls) == 0 {
			status = http.StatusBadGateway
		}
		sendJSONResponse(ctx, status, response)
	}
}

func ExportProducts(app *initializers.App) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		products, err := app.Store.ListProducts(ctx.Request.Context(), storage.ProductFilter{})
		if err != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Failed to fetch products", err)
			return
		}

		ctx.Header("Content-Disposition", "attachment; filename=products.xlsx")
		ctx.Header("Content-Type", utils.XLSXContentType)
		ctx.Header("Content-Transfer-Encoding", "binary")
		ctx.Header("Expires", "0")

		if err := utils.WriteProductsWorkbook(ctx.Writer, products); err != nil {
			log.Println("Failed to write products workbook:", err)
		}
	}
}
