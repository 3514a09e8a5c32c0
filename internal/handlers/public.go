// internal/handlers/public.go
package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/tandatangan/katalog-backend/internal/models"
	"github.com/tandatangan/katalog-backend/internal/services"
	"github.com/tandatangan/katalog-backend/internal/utils"
)

// PublicHandler serves the visitor-facing product pages reached by
// scanning a QR code. Every successful resolution on any of these
// routes records a scan event; the sub-pages each resolve the code
// independently, matching how visitors actually hit them.
type PublicHandler struct {
	productService *services.ProductService
	reviewService  *services.ReviewService
}

func NewPublicHandler(productService *services.ProductService, reviewService *services.ReviewService) *PublicHandler {
	return &PublicHandler{
		productService: productService,
		reviewService:  reviewService,
	}
}

func requestContext(c *gin.Context) services.RequestContext {
	reqCtx := services.RequestContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	// Optional client-supplied geolocation payload, stored freeform
	if raw := c.GetHeader("X-Geo-Location"); raw != "" {
		var location models.JSONB
		if err := json.Unmarshal([]byte(raw), &location); err == nil {
			reqCtx.LocationData = location
		}
	}

	return reqCtx
}

func (h *PublicHandler) resolve(c *gin.Context) (*models.Product, bool) {
	code := c.Param("code")

	product, err := h.productService.ResolvePublic(code, requestContext(c), services.ResolveOptions{RecordScan: true})
	if err != nil {
		respondServiceError(c, err, "Product")
		return nil, false
	}

	return product, true
}

// GET /product/:code
func (h *PublicHandler) ShowProduct(c *gin.Context) {
	product, ok := h.resolve(c)
	if !ok {
		return
	}

	count, average, _ := h.reviewService.ApprovedAggregate(product.ID)

	utils.SuccessResponse(c, gin.H{
		"product":        product,
		"review_count":   count,
		"average_rating": average,
	})
}

// GET /product/:code/story
func (h *PublicHandler) ShowStory(c *gin.Context) {
	product, ok := h.resolve(c)
	if !ok {
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product_id": product.ID,
		"name":       product.Name,
		"history":    product.History,
		"philosophy": product.Philosophy,
	})
}

// GET /product/:code/gallery
func (h *PublicHandler) ShowGallery(c *gin.Context) {
	product, ok := h.resolve(c)
	if !ok {
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product_id": product.ID,
		"name":       product.Name,
		"images":     product.Images,
		"video_path": product.VideoPath,
	})
}

// GET /product/:code/maker
func (h *PublicHandler) ShowMaker(c *gin.Context) {
	product, ok := h.resolve(c)
	if !ok {
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product_id": product.ID,
		"maker":      product.Maker,
	})
}

// GET /product/:code/reviews
func (h *PublicHandler) ShowReviews(c *gin.Context) {
	product, ok := h.resolve(c)
	if !ok {
		return
	}

	count, average, _ := h.reviewService.ApprovedAggregate(product.ID)

	utils.SuccessResponse(c, gin.H{
		"product_id":     product.ID,
		"reviews":        product.Reviews,
		"review_count":   count,
		"average_rating": average,
	})
}

// GET /product/:code/scan-success
// The confirmation page shown right after a scan; it resolves (and
// therefore records) like every other public route.
func (h *PublicHandler) ScanSuccess(c *gin.Context) {
	product, ok := h.resolve(c)
	if !ok {
		return
	}

	utils.SuccessResponse(c, gin.H{
		"scanned":    true,
		"product_id": product.ID,
		"name":       product.Name,
	})
}

// POST /product/:code/reviews
func (h *PublicHandler) SubmitReview(c *gin.Context) {
	code := c.Param("code")

	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	review, err := h.reviewService.SubmitReview(code, &req)
	if err != nil {
		respondServiceError(c, err, "Product")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": "Review submitted and awaiting approval",
		"review":  review,
	})
}
