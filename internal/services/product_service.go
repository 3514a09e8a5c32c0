// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tandatangan/katalog-backend/internal/config"
	"github.com/tandatangan/katalog-backend/internal/models"
	"github.com/tandatangan/katalog-backend/internal/qrcode"
	"github.com/tandatangan/katalog-backend/internal/utils"
)

// ProductService is the only component allowed to touch a product's
// public-identity fields (unique_code, qr_code_path) and the gate for
// public visibility.
type ProductService struct {
	db          *gorm.DB
	store       ArtifactStore
	scanService *ScanService
	cfg         *config.Config
}

type CreateProductRequest struct {
	MakerID     uint                 `json:"maker_id" validate:"required"`
	Name        string               `json:"name" validate:"required,max=255"`
	Description string               `json:"description" validate:"required"`
	History     string               `json:"history,omitempty"`
	Philosophy  string               `json:"philosophy,omitempty"`
	VideoPath   string               `json:"video_path,omitempty"`
	UniqueCode  string               `json:"unique_code,omitempty"`
	Status      models.ProductStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type UpdateProductRequest struct {
	MakerID     uint                 `json:"maker_id,omitempty"`
	Name        string               `json:"name,omitempty" validate:"omitempty,max=255"`
	Description string               `json:"description,omitempty"`
	History     *string              `json:"history,omitempty"`
	Philosophy  *string              `json:"philosophy,omitempty"`
	VideoPath   *string              `json:"video_path,omitempty"`
	UniqueCode  string               `json:"unique_code,omitempty"`
	Status      models.ProductStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// ResolveOptions controls the public resolution path. RecordScan is on
// for every public route today, including the story/gallery/maker/
// reviews sub-pages and the scan-success confirmation.
type ResolveOptions struct {
	RecordScan bool
}

func NewProductService(db *gorm.DB, store ArtifactStore, scanService *ScanService, cfg *config.Config) *ProductService {
	return &ProductService{
		db:          db,
		store:       store,
		scanService: scanService,
		cfg:         cfg,
	}
}

// PublicURL is the address a product's QR code resolves to.
func (s *ProductService) PublicURL(uniqueCode string) string {
	return fmt.Sprintf("%s/product/%s", strings.TrimRight(s.cfg.App.BaseURL, "/"), uniqueCode)
}

func (s *ProductService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var maker models.Maker
	if err := s.db.First(&maker, req.MakerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: maker %d", ErrNotFound, req.MakerID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	status := req.Status
	if status == "" {
		status = models.ProductStatusActive
	}

	product := &models.Product{
		MakerID:     req.MakerID,
		Name:        req.Name,
		Description: req.Description,
		History:     req.History,
		Philosophy:  req.Philosophy,
		VideoPath:   req.VideoPath,
		Status:      status,
	}

	if err := s.createWithUniqueCode(product, req.UniqueCode); err != nil {
		return nil, err
	}

	// Render the QR artifact right after creation. A failure here keeps
	// the row with a null qr_code_path; an explicit regenerate recovers.
	if err := s.renderArtifact(product); err != nil {
		logrus.WithField("product_id", product.ID).WithError(err).
			Warn("QR generation failed during product creation; qr_code_path left empty")
	}

	s.db.Preload("Maker").First(product, product.ID)

	return product, nil
}

// createWithUniqueCode inserts the product, generating a code when the
// caller did not supply one. The unique index on products.unique_code is
// the final arbiter under concurrency; generation retries on conflict.
func (s *ProductService) createWithUniqueCode(product *models.Product, explicitCode string) error {
	if explicitCode != "" {
		if !qrcode.IsValidCode(explicitCode) {
			return fmt.Errorf("%w: unique_code must be %d alphanumeric characters", ErrValidation, qrcode.CodeLength)
		}
		product.UniqueCode = explicitCode
		if err := s.db.Create(product).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: unique_code %q is already taken", ErrConflict, explicitCode)
			}
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	}

	maxAttempts := s.cfg.App.CodeMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := qrcode.GenerateUniqueCode()
		if err != nil {
			return fmt.Errorf("failed to generate unique code: %w", err)
		}

		product.UniqueCode = code
		err = s.db.Create(product).Error
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return fmt.Errorf("failed to create product: %w", err)
		}

		logrus.WithField("code", code).Warn("Unique code collision, retrying")
	}

	return fmt.Errorf("%w: unique code generation exhausted %d attempts", ErrConflict, maxAttempts)
}

func (s *ProductService) UpdateProduct(id uint, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if req.UniqueCode != "" && !qrcode.IsValidCode(req.UniqueCode) {
		return nil, fmt.Errorf("%w: unique_code must be %d alphanumeric characters", ErrValidation, qrcode.CodeLength)
	}

	var product models.Product
	var codeChanged bool
	var oldArtifact string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d", ErrNotFound, id)
			}
			return fmt.Errorf("database error: %w", err)
		}

		updates := make(map[string]interface{})
		if req.MakerID != 0 {
			updates["maker_id"] = req.MakerID
		}
		if req.Name != "" {
			updates["name"] = req.Name
		}
		if req.Description != "" {
			updates["description"] = req.Description
		}
		if req.History != nil {
			updates["history"] = *req.History
		}
		if req.Philosophy != nil {
			updates["philosophy"] = *req.Philosophy
		}
		if req.VideoPath != nil {
			updates["video_path"] = *req.VideoPath
		}
		if req.Status != "" {
			updates["status"] = req.Status
		}
		if req.UniqueCode != "" && req.UniqueCode != product.UniqueCode {
			codeChanged = true
			oldArtifact = product.QRCodePath
			updates["unique_code"] = req.UniqueCode
			// The old artifact no longer encodes the product URL
			updates["qr_code_path"] = ""
		}

		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&product).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: unique_code %q is already taken", ErrConflict, req.UniqueCode)
			}
			return fmt.Errorf("failed to update product: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if codeChanged {
		// Old artifact cleanup is best-effort: a stale file leak is
		// acceptable, a broken reference is not.
		if err := s.store.Delete(oldArtifact); err != nil {
			logrus.WithField("key", oldArtifact).WithError(err).
				Warn("Failed to delete stale QR artifact")
		}

		if err := s.renderArtifact(&product); err != nil {
			logrus.WithField("product_id", product.ID).WithError(err).
				Warn("QR regeneration failed after unique_code change; qr_code_path left empty")
		}
	}

	s.db.Preload("Maker").First(&product, id)

	return &product, nil
}

// RegenerateQR always replaces the artifact, even when the unique code
// is unchanged. Used to recover from artifact loss or for a cosmetic
// re-render; safe to invoke repeatedly.
func (s *ProductService) RegenerateQR(id uint) (*models.Product, error) {
	var product models.Product
	var renderErr error

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d", ErrNotFound, id)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if product.QRCodePath != "" {
			if err := s.store.Delete(product.QRCodePath); err != nil {
				logrus.WithField("key", product.QRCodePath).WithError(err).
					Warn("Failed to delete stale QR artifact")
			}
			if err := tx.Model(&product).Update("qr_code_path", "").Error; err != nil {
				return fmt.Errorf("failed to clear qr_code_path: %w", err)
			}
			product.QRCodePath = ""
		}

		// A failed render must still commit the cleared path: the old
		// artifact is already gone, and a reference to a deleted file is
		// worse than no reference. The operation stays retryable.
		renderErr = s.renderArtifactTx(tx, &product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if renderErr != nil {
		return nil, renderErr
	}

	return &product, nil
}

func (s *ProductService) DeleteProduct(id uint) error {
	var product models.Product
	if err := s.db.Preload("Images").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return fmt.Errorf("database error: %w", err)
	}

	// File artifacts first, best-effort: a failed delete never blocks
	// removal of the rows.
	for _, key := range append([]string{product.QRCodePath, product.VideoPath}, imageKeys(product.Images)...) {
		if key == "" {
			continue
		}
		if err := s.store.Delete(key); err != nil {
			logrus.WithField("key", key).WithError(err).
				Warn("Failed to delete artifact during product deletion")
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ScanEvent{}).Error; err != nil {
			return fmt.Errorf("failed to delete scan events: %w", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete reviews: %w", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete product images: %w", err)
		}
		if err := tx.Delete(&models.Product{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
}

// ResolvePublic is the public entry point: it loads an active product by
// its unique code with its maker, images and approved reviews, and
// records a scan for every successful resolution. Unknown and inactive
// codes are indistinguishable to the caller.
func (s *ProductService) ResolvePublic(code string, reqCtx RequestContext, opts ResolveOptions) (*models.Product, error) {
	var product models.Product
	err := s.db.Where("unique_code = ? AND status = ?", code, models.ProductStatusActive).
		Preload("Maker").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Reviews", "status = ?", models.ReviewStatusApproved).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: code %q", ErrNotFound, code)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if opts.RecordScan {
		s.scanService.Record(product.ID, reqCtx)
	}

	return &product, nil
}

// GetProduct loads a product for the admin surface, any status.
func (s *ProductService) GetProduct(id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Maker").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *ProductService) ListProducts(params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Preload("Maker")

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// AddImage attaches an uploaded image artifact to a product.
func (s *ProductService) AddImage(productID uint, imagePath, altText string, featured bool) (*models.ProductImage, error) {
	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var count int64
	s.db.Model(&models.ProductImage{}).Where("product_id = ?", productID).Count(&count)

	if altText == "" {
		altText = fmt.Sprintf("%s - Image %d", product.Name, count+1)
	}

	image := &models.ProductImage{
		ProductID:  productID,
		ImagePath:  imagePath,
		AltText:    altText,
		SortOrder:  int(count),
		IsFeatured: featured || count == 0,
	}

	if err := s.db.Create(image).Error; err != nil {
		return nil, fmt.Errorf("failed to create product image: %w", err)
	}

	return image, nil
}

// DeleteImage removes a product image row and its artifact.
func (s *ProductService) DeleteImage(imageID uint) error {
	var image models.ProductImage
	if err := s.db.First(&image, imageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: image %d", ErrNotFound, imageID)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := s.store.Delete(image.ImagePath); err != nil {
		logrus.WithField("key", image.ImagePath).WithError(err).
			Warn("Failed to delete image artifact")
	}

	return s.db.Delete(&image).Error
}

// renderArtifact encodes the product's public URL and replaces the
// referenced artifact. The key embeds a timestamp so regenerated codes
// never collide with a cached copy of the previous file.
func (s *ProductService) renderArtifact(product *models.Product) error {
	return s.renderArtifactTx(s.db, product)
}

func (s *ProductService) renderArtifactTx(tx *gorm.DB, product *models.Product) error {
	png, err := qrcode.Encode(s.PublicURL(product.UniqueCode))
	if err != nil {
		return err
	}

	// Nanosecond resolution: a create followed by a code change or a
	// regenerate in the same second must still land on a fresh key, or
	// the old artifact stays reachable at its former path.
	key := fmt.Sprintf("qr_codes/product_%d_%d.png", product.ID, time.Now().UnixNano())
	if err := s.store.Save(key, png, "image/png"); err != nil {
		return fmt.Errorf("failed to store QR artifact: %w", err)
	}

	if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("qr_code_path", key).Error; err != nil {
		return fmt.Errorf("failed to persist qr_code_path: %w", err)
	}

	product.QRCodePath = key
	return nil
}

// lockForUpdate serializes per-product mutations so two concurrent
// regenerates cannot leave the row pointing at a deleted file. SQLite
// (tests) has no row locks; its single writer serializes anyway.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

func imageKeys(images []models.ProductImage) []string {
	keys := make([]string, 0, len(images))
	for _, img := range images {
		keys = append(keys, img.ImagePath)
	}
	return keys
}
