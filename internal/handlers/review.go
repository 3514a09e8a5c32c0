// internal/handlers/review.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tandatangan/katalog-backend/internal/models"
	"github.com/tandatangan/katalog-backend/internal/services"
	"github.com/tandatangan/katalog-backend/internal/utils"
)

// ReviewHandler is the admin moderation surface; public submission
// lives on PublicHandler.
type ReviewHandler struct {
	reviewService *services.ReviewService
}

type bulkReviewRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1"`
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// GET /v1/reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.ReviewFilter{PaginationParams: params}

	if status := c.Query("status"); status != "" {
		reviewStatus := models.ReviewStatus(status)
		filter.Status = &reviewStatus
	}

	if productIDStr := c.Query("product_id"); productIDStr != "" {
		if productID, err := strconv.ParseUint(productIDStr, 10, 32); err == nil {
			id := uint(productID)
			filter.ProductID = &id
		}
	}

	reviews, total, err := h.reviewService.ListReviews(filter)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(reviews, total, params)
	utils.PaginatedResponse(c, result)
}

// PATCH /v1/reviews/:id/approve
func (h *ReviewHandler) ApproveReview(c *gin.Context) {
	h.setStatus(c, models.ReviewStatusApproved)
}

// PATCH /v1/reviews/:id/reject
func (h *ReviewHandler) RejectReview(c *gin.Context) {
	h.setStatus(c, models.ReviewStatusRejected)
}

func (h *ReviewHandler) setStatus(c *gin.Context, status models.ReviewStatus) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	review, err := h.reviewService.SetStatus(id, status)
	if err != nil {
		respondServiceError(c, err, "Review")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Review " + string(status),
		"review":  review,
	})
}

// POST /v1/reviews/bulk-approve
func (h *ReviewHandler) BulkApprove(c *gin.Context) {
	h.bulkSetStatus(c, models.ReviewStatusApproved)
}

// POST /v1/reviews/bulk-reject
func (h *ReviewHandler) BulkReject(c *gin.Context) {
	h.bulkSetStatus(c, models.ReviewStatusRejected)
}

func (h *ReviewHandler) bulkSetStatus(c *gin.Context, status models.ReviewStatus) {
	var req bulkReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	affected, err := h.reviewService.BulkSetStatus(req.IDs, status)
	if err != nil {
		respondServiceError(c, err, "Review")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  "Reviews updated",
		"affected": affected,
	})
}
