// internal/services/maker_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tandatangan/katalog-backend/internal/models"
	"github.com/tandatangan/katalog-backend/internal/utils"
)

type MakerService struct {
	db    *gorm.DB
	store ArtifactStore
}

type CreateMakerRequest struct {
	Name            string `json:"name" validate:"required,max=255"`
	OwnerName       string `json:"owner_name" validate:"required,max=255"`
	Address         string `json:"address" validate:"required"`
	Phone           string `json:"phone" validate:"required,max=20"`
	Email           string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Story           string `json:"story,omitempty"`
	EstablishedYear int    `json:"established_year,omitempty" validate:"omitempty,min=1900"`
	LogoPath        string `json:"logo_path,omitempty"`
}

type UpdateMakerRequest struct {
	Name            string  `json:"name,omitempty" validate:"omitempty,max=255"`
	OwnerName       string  `json:"owner_name,omitempty" validate:"omitempty,max=255"`
	Address         string  `json:"address,omitempty"`
	Phone           string  `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email           *string `json:"email,omitempty"`
	Story           *string `json:"story,omitempty"`
	EstablishedYear int     `json:"established_year,omitempty" validate:"omitempty,min=1900"`
	LogoPath        *string `json:"logo_path,omitempty"`
}

func NewMakerService(db *gorm.DB, store ArtifactStore) *MakerService {
	return &MakerService{db: db, store: store}
}

func (s *MakerService) CreateMaker(req *CreateMakerRequest) (*models.Maker, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if req.EstablishedYear > time.Now().Year() {
		return nil, fmt.Errorf("%w: established_year cannot be in the future", ErrValidation)
	}

	maker := &models.Maker{
		Name:            req.Name,
		OwnerName:       req.OwnerName,
		Address:         req.Address,
		Phone:           req.Phone,
		Email:           req.Email,
		Story:           req.Story,
		EstablishedYear: req.EstablishedYear,
		LogoPath:        req.LogoPath,
	}

	if err := s.db.Create(maker).Error; err != nil {
		return nil, fmt.Errorf("failed to create maker: %w", err)
	}

	return maker, nil
}

func (s *MakerService) GetMaker(id uint) (*models.Maker, error) {
	var maker models.Maker
	err := s.db.Preload("Products").First(&maker, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: maker %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &maker, nil
}

func (s *MakerService) ListMakers(params utils.PaginationParams) ([]models.Maker, int64, error) {
	query := s.db.Model(&models.Maker{})

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(owner_name) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count makers: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "established_year"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var makers []models.Maker
	if err := query.Find(&makers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch makers: %w", err)
	}

	return makers, total, nil
}

func (s *MakerService) UpdateMaker(id uint, req *UpdateMakerRequest) (*models.Maker, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var maker models.Maker
	if err := s.db.First(&maker, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: maker %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.OwnerName != "" {
		updates["owner_name"] = req.OwnerName
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Story != nil {
		updates["story"] = *req.Story
	}
	if req.EstablishedYear != 0 {
		updates["established_year"] = req.EstablishedYear
	}
	if req.LogoPath != nil {
		if maker.LogoPath != "" && maker.LogoPath != *req.LogoPath {
			if err := s.store.Delete(maker.LogoPath); err != nil {
				logrus.WithField("key", maker.LogoPath).WithError(err).
					Warn("Failed to delete old maker logo")
			}
		}
		updates["logo_path"] = *req.LogoPath
	}

	if len(updates) > 0 {
		if err := s.db.Model(&maker).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update maker: %w", err)
		}
	}

	return &maker, nil
}

// DeleteMaker refuses to delete a maker that still owns products;
// products carry artifacts and scan history that need explicit removal.
func (s *MakerService) DeleteMaker(id uint) error {
	var maker models.Maker
	if err := s.db.First(&maker, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: maker %d", ErrNotFound, id)
		}
		return fmt.Errorf("database error: %w", err)
	}

	var productCount int64
	if err := s.db.Model(&models.Product{}).Where("maker_id = ?", id).Count(&productCount).Error; err != nil {
		return fmt.Errorf("failed to count maker products: %w", err)
	}
	if productCount > 0 {
		return fmt.Errorf("%w: maker %d still owns %d products", ErrConflict, id, productCount)
	}

	if maker.LogoPath != "" {
		if err := s.store.Delete(maker.LogoPath); err != nil {
			logrus.WithField("key", maker.LogoPath).WithError(err).
				Warn("Failed to delete maker logo")
		}
	}

	return s.db.Delete(&maker).Error
}
