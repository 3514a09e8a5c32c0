// internal/services/dashboard_service.go
package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/tandatangan/katalog-backend/internal/models"
)

// DashboardService aggregates the admin overview numbers.
type DashboardService struct {
	db *gorm.DB
}

type DashboardStats struct {
	TotalMakers       int64 `json:"total_makers"`
	TotalProducts     int64 `json:"total_products"`
	ActiveProducts    int64 `json:"active_products"`
	TotalScans        int64 `json:"total_scans"`
	ScansThisMonth    int64 `json:"scans_this_month"`
	TotalReviews      int64 `json:"total_reviews"`
	PendingReviews    int64 `json:"pending_reviews"`
	ApprovedReviews   int64 `json:"approved_reviews"`
	ProductsMissingQR int64 `json:"products_missing_qr"`
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

func (s *DashboardService) GetStats() (*DashboardStats, error) {
	stats := &DashboardStats{}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	s.db.Model(&models.Maker{}).Count(&stats.TotalMakers)

	s.db.Model(&models.Product{}).Count(&stats.TotalProducts)
	s.db.Model(&models.Product{}).Where("status = ?", models.ProductStatusActive).Count(&stats.ActiveProducts)
	s.db.Model(&models.Product{}).Where("qr_code_path = '' OR qr_code_path IS NULL").Count(&stats.ProductsMissingQR)

	s.db.Model(&models.ScanEvent{}).Count(&stats.TotalScans)
	s.db.Model(&models.ScanEvent{}).Where("scanned_at >= ?", monthStart).Count(&stats.ScansThisMonth)

	s.db.Model(&models.Review{}).Count(&stats.TotalReviews)
	s.db.Model(&models.Review{}).Where("status = ?", models.ReviewStatusPending).Count(&stats.PendingReviews)
	s.db.Model(&models.Review{}).Where("status = ?", models.ReviewStatusApproved).Count(&stats.ApprovedReviews)

	return stats, nil
}

// MostScannedProducts returns the scan leaderboard for the dashboard.
func (s *DashboardService) MostScannedProducts(limit int) ([]map[string]interface{}, error) {
	type row struct {
		ProductID uint   `json:"product_id"`
		Name      string `json:"name"`
		ScanCount int64  `json:"scan_count"`
	}

	var rows []row
	err := s.db.Model(&models.ScanEvent{}).
		Select("qr_scans.product_id, products.name, COUNT(*) as scan_count").
		Joins("JOIN products ON products.id = qr_scans.product_id").
		Group("qr_scans.product_id, products.name").
		Order("scan_count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		result = append(result, map[string]interface{}{
			"product_id": r.ProductID,
			"name":       r.Name,
			"scan_count": r.ScanCount,
		})
	}
	return result, nil
}
