// internal/services/review_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tandatangan/katalog-backend/internal/models"
	"github.com/tandatangan/katalog-backend/internal/utils"
)

type ReviewService struct {
	db *gorm.DB
}

type CreateReviewRequest struct {
	CustomerName string   `json:"customer_name" validate:"required,max=255"`
	Rating       int      `json:"rating" validate:"required,min=1,max=5"`
	Comment      string   `json:"comment,omitempty"`
	ReviewImages []string `json:"review_images,omitempty"`
}

type ReviewFilter struct {
	utils.PaginationParams
	ProductID *uint                `json:"product_id,omitempty"`
	Status    *models.ReviewStatus `json:"status,omitempty"`
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// SubmitReview creates a review in pending status for an active product
// resolved by its unique code. Reviews never affect the QR/scan logic.
func (s *ReviewService) SubmitReview(uniqueCode string, req *CreateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var product models.Product
	err := s.db.Where("unique_code = ? AND status = ?", uniqueCode, models.ProductStatusActive).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: code %q", ErrNotFound, uniqueCode)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	review := &models.Review{
		ProductID:    product.ID,
		CustomerName: req.CustomerName,
		Rating:       req.Rating,
		Comment:      req.Comment,
		ReviewImages: models.JSONBArray(req.ReviewImages),
		Status:       models.ReviewStatusPending,
	}

	if err := s.db.Create(review).Error; err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return review, nil
}

func (s *ReviewService) ListReviews(filter ReviewFilter) ([]models.Review, int64, error) {
	query := s.db.Model(&models.Review{}).Preload("Product")

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	allowedSortFields := []string{"created_at", "rating", "status"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	return reviews, total, nil
}

func (s *ReviewService) SetStatus(id uint, status models.ReviewStatus) (*models.Review, error) {
	var review models.Review
	if err := s.db.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: review %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Model(&review).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update review status: %w", err)
	}

	return &review, nil
}

// BulkSetStatus moderates several reviews at once; returns how many
// rows were touched.
func (s *ReviewService) BulkSetStatus(ids []uint, status models.ReviewStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no review ids supplied", ErrValidation)
	}

	result := s.db.Model(&models.Review{}).Where("id IN ?", ids).Update("status", status)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update reviews: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// ApprovedAggregate returns the public rating summary: approved-only
// review count and average rating.
func (s *ReviewService) ApprovedAggregate(productID uint) (count int64, average float64, err error) {
	err = s.db.Model(&models.Review{}).
		Where("product_id = ? AND status = ?", productID, models.ReviewStatusApproved).
		Count(&count).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count approved reviews: %w", err)
	}
	if count == 0 {
		return 0, 0, nil
	}

	err = s.db.Model(&models.Review{}).
		Where("product_id = ? AND status = ?", productID, models.ReviewStatusApproved).
		Select("AVG(rating)").Scan(&average).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to average ratings: %w", err)
	}

	return count, average, nil
}
