// internal/handlers/product.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tandatangan/katalog-backend/internal/services"
	"github.com/tandatangan/katalog-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
	scanService    *services.ScanService
	storageService *services.StorageService
}

func NewProductHandler(productService *services.ProductService, scanService *services.ScanService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		scanService:    scanService,
		storageService: storageService,
	}
}

// GET /v1/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	products, total, err := h.productService.ListProducts(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /v1/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.productService.CreateProduct(&req)
	if err != nil {
		respondServiceError(c, err, "Maker")
		return
	}

	response := gin.H{
		"message": "Product created successfully",
		"product": product,
	}
	if product.QRCodePath == "" {
		// Creation succeeded but the QR render did not; an explicit
		// regenerate recovers.
		response["warning"] = "QR code generation failed; use regenerate-qr to retry"
	}

	utils.CreatedResponse(c, response)
}

// GET /v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(id)
	if err != nil {
		respondServiceError(c, err, "Product")
		return
	}

	scanCount, _ := h.scanService.CountForProduct(id)
	recentScans, _ := h.scanService.RecentForProduct(id, 10)

	utils.SuccessResponse(c, gin.H{
		"product":      product,
		"scan_count":   scanCount,
		"recent_scans": recentScans,
		"public_url":   h.productService.PublicURL(product.UniqueCode),
	})
}

// PUT /v1/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.productService.UpdateProduct(id, &req)
	if err != nil {
		respondServiceError(c, err, "Product")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DELETE /v1/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(id); err != nil {
		respondServiceError(c, err, "Product")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Product deleted successfully",
	})
}

// POST /v1/products/:id/regenerate-qr
func (h *ProductHandler) RegenerateQR(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.RegenerateQR(id)
	if err != nil {
		respondServiceError(c, err, "Product")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "QR code regenerated successfully",
		"product": product,
	})
}

// POST /v1/products/:id/images
func (h *ProductHandler) UploadImages(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Invalid multipart form", err.Error())
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, "No images supplied", nil)
		return
	}

	options := h.storageService.GetDefaultUploadOptions("product_images")

	var uploaded []interface{}
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			utils.BadRequestResponse(c, "Failed to open upload", err.Error())
			return
		}

		if err := h.storageService.ValidateImage(file); err != nil {
			file.Close()
			respondServiceError(c, err, "Image")
			return
		}

		result, err := h.storageService.UploadFile(file, header, options)
		file.Close()
		if err != nil {
			respondServiceError(c, err, "Image")
			return
		}

		image, err := h.productService.AddImage(id, result.Key, "", false)
		if err != nil {
			respondServiceError(c, err, "Product")
			return
		}

		uploaded = append(uploaded, image)
	}

	utils.CreatedResponse(c, gin.H{
		"message": "Images uploaded successfully",
		"images":  uploaded,
	})
}

// DELETE /v1/images/:id
func (h *ProductHandler) DeleteImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteImage(id); err != nil {
		respondServiceError(c, err, "Image")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Image deleted successfully",
	})
}

// GET /qr/:id
// Streams the product's current QR artifact bytes.
func (h *ProductHandler) ServeQR(c *gin.Context) {
	h.serveQR(c, false)
}

// GET /qr/:id/download
func (h *ProductHandler) DownloadQR(c *gin.Context) {
	h.serveQR(c, true)
}

func (h *ProductHandler) serveQR(c *gin.Context, download bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(id)
	if err != nil {
		respondServiceError(c, err, "Product")
		return
	}

	if product.QRCodePath == "" {
		utils.NotFoundResponse(c, "QR code")
		return
	}

	data, err := h.storageService.Read(product.QRCodePath)
	if err != nil {
		respondServiceError(c, err, "QR code")
		return
	}

	if download {
		filename := fmt.Sprintf("product_%d_qr.png", product.ID)
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	}

	c.Data(http.StatusOK, "image/png", data)
}
