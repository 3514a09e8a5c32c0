// internal/services/scan_service.go
package services

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tandatangan/katalog-backend/internal/models"
)

// RequestContext carries the visitor details recorded with a scan.
type RequestContext struct {
	IPAddress    string
	UserAgent    string
	LocationData models.JSONB
}

// ScanService appends one ScanEvent per successful public resolution.
// Recording is best-effort: a storage failure is logged and swallowed so
// the product page still renders.
type ScanService struct {
	db *gorm.DB
}

func NewScanService(db *gorm.DB) *ScanService {
	return &ScanService{db: db}
}

// Record writes one immutable scan row with a server-assigned timestamp.
// No deduplication: repeated scans and the scan-success confirmation
// each produce their own row.
func (s *ScanService) Record(productID uint, reqCtx RequestContext) {
	event := &models.ScanEvent{
		ProductID:    productID,
		ScannedAt:    time.Now(),
		IPAddress:    reqCtx.IPAddress,
		UserAgent:    reqCtx.UserAgent,
		LocationData: reqCtx.LocationData,
	}

	if err := s.db.Create(event).Error; err != nil {
		logrus.WithFields(logrus.Fields{
			"product_id": productID,
			"ip":         reqCtx.IPAddress,
		}).WithError(err).Error("Failed to record scan event")
	}
}

// CountForProduct returns how many scans a product has accumulated.
func (s *ScanService) CountForProduct(productID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.ScanEvent{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	return count, err
}

// RecentForProduct returns the latest scan rows for the admin detail view.
func (s *ScanService) RecentForProduct(productID uint, limit int) ([]models.ScanEvent, error) {
	var events []models.ScanEvent
	err := s.db.Where("product_id = ?", productID).
		Order("scanned_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
