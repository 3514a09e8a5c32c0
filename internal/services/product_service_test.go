// internal/services/product_service_test.go
package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/tandatangan/katalog-backend/internal/models"
	"github.com/tandatangan/katalog-backend/internal/qrcode"
)

type ProductServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	store       *fakeStore
	scanService *ScanService
	service     *ProductService
	maker       *models.Maker
}

func (s *ProductServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.store = newFakeStore()
	s.scanService = NewScanService(s.db)
	s.service = NewProductService(s.db, s.store, s.scanService, newTestConfig())
	s.maker = createTestMaker(s.T(), s.db)
}

func (s *ProductServiceTestSuite) createProduct(req *CreateProductRequest) *models.Product {
	if req == nil {
		req = &CreateProductRequest{
			MakerID:     s.maker.ID,
			Name:        "Arabica Gayo 250g",
			Description: "Single-origin arabica from the Gayo highlands.",
		}
	}
	product, err := s.service.CreateProduct(req)
	s.Require().NoError(err)
	return product
}

func (s *ProductServiceTestSuite) TestCreateAssignsCodeAndArtifact() {
	product := s.createProduct(nil)

	s.Len(product.UniqueCode, qrcode.CodeLength)
	s.True(qrcode.IsValidCode(product.UniqueCode))
	s.Contains(product.QRCodePath, fmt.Sprintf("qr_codes/product_%d_", product.ID))

	// The stored artifact decodes to the product's public URL.
	stored, err := s.store.Read(product.QRCodePath)
	s.Require().NoError(err)
	expected, err := qrcode.Encode(s.service.PublicURL(product.UniqueCode))
	s.Require().NoError(err)
	s.Equal(expected, stored)
}

func (s *ProductServiceTestSuite) TestCreateWithExplicitCode() {
	product := s.createProduct(&CreateProductRequest{
		MakerID:     s.maker.ID,
		Name:        "Robusta Lampung",
		Description: "Dark roast robusta.",
		UniqueCode:  "AbC123xYz9",
	})

	s.Equal("AbC123xYz9", product.UniqueCode)
}

func (s *ProductServiceTestSuite) TestCreateExplicitCodeConflict() {
	s.createProduct(&CreateProductRequest{
		MakerID:     s.maker.ID,
		Name:        "First",
		Description: "First product.",
		UniqueCode:  "AbC123xYz9",
	})

	_, err := s.service.CreateProduct(&CreateProductRequest{
		MakerID:     s.maker.ID,
		Name:        "Second",
		Description: "Second product.",
		UniqueCode:  "AbC123xYz9",
	})
	s.ErrorIs(err, ErrConflict)
}

func (s *ProductServiceTestSuite) TestCreateInvalidExplicitCode() {
	_, err := s.service.CreateProduct(&CreateProductRequest{
		MakerID:     s.maker.ID,
		Name:        "Bad code",
		Description: "Code too short.",
		UniqueCode:  "short",
	})
	s.ErrorIs(err, ErrValidation)
}

func (s *ProductServiceTestSuite) TestCreateUnknownMaker() {
	_, err := s.service.CreateProduct(&CreateProductRequest{
		MakerID:     9999,
		Name:        "Orphan",
		Description: "No such maker.",
	})
	s.ErrorIs(err, ErrNotFound)
}

func (s *ProductServiceTestSuite) TestCreateSurvivesStorageFailure() {
	s.store.failSave = true

	product := s.createProduct(nil)

	// The product row persists with an empty qr_code_path; an explicit
	// regenerate recovers once storage is back.
	s.Empty(product.QRCodePath)

	s.store.failSave = false
	regenerated, err := s.service.RegenerateQR(product.ID)
	s.Require().NoError(err)
	s.NotEmpty(regenerated.QRCodePath)
}

func (s *ProductServiceTestSuite) TestConcurrentCreatesUniqueCodes() {
	const workers = 20

	var wg sync.WaitGroup
	codes := make(chan string, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			product, err := s.service.CreateProduct(&CreateProductRequest{
				MakerID:     s.maker.ID,
				Name:        fmt.Sprintf("Product %d", i),
				Description: "Concurrent creation.",
			})
			if err == nil {
				codes <- product.UniqueCode
			}
		}(i)
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for code := range codes {
		s.False(seen[code], "duplicate unique code %q", code)
		seen[code] = true
	}
	s.Len(seen, workers)
}

func (s *ProductServiceTestSuite) TestUpdateCodeChangeReplacesArtifact() {
	product := s.createProduct(nil)
	oldKey := product.QRCodePath

	updated, err := s.service.UpdateProduct(product.ID, &UpdateProductRequest{
		UniqueCode: "ZzTop12345",
	})
	s.Require().NoError(err)

	s.Equal("ZzTop12345", updated.UniqueCode)
	s.NotEmpty(updated.QRCodePath)
	// A re-render right after creation still lands on a fresh key;
	// reusing the old one would leave the stale artifact reachable.
	s.NotEqual(oldKey, updated.QRCodePath)

	// The old artifact is gone and the new one encodes the new URL.
	_, err = s.store.Read(oldKey)
	s.ErrorIs(err, ErrNotFound)

	stored, err := s.store.Read(updated.QRCodePath)
	s.Require().NoError(err)
	expected, err := qrcode.Encode(s.service.PublicURL("ZzTop12345"))
	s.Require().NoError(err)
	s.Equal(expected, stored)
}

func (s *ProductServiceTestSuite) TestUpdateWithoutCodeChangeKeepsArtifact() {
	product := s.createProduct(nil)
	oldKey := product.QRCodePath

	updated, err := s.service.UpdateProduct(product.ID, &UpdateProductRequest{
		Name: "Renamed product",
	})
	s.Require().NoError(err)

	s.Equal("Renamed product", updated.Name)
	s.Equal(oldKey, updated.QRCodePath)
	s.Equal(product.UniqueCode, updated.UniqueCode)

	_, err = s.store.Read(oldKey)
	s.NoError(err)
}

func (s *ProductServiceTestSuite) TestUpdateCodeConflict() {
	first := s.createProduct(&CreateProductRequest{
		MakerID:     s.maker.ID,
		Name:        "First",
		Description: "Holds the code.",
		UniqueCode:  "Taken12345",
	})
	second := s.createProduct(nil)

	_, err := s.service.UpdateProduct(second.ID, &UpdateProductRequest{
		UniqueCode: first.UniqueCode,
	})
	s.ErrorIs(err, ErrConflict)
}

func (s *ProductServiceTestSuite) TestRegenerateAssignsFreshKey() {
	product := s.createProduct(nil)
	oldKey := product.QRCodePath

	// Immediately after creation, so both renders happen within the
	// same wall-clock second.
	regenerated, err := s.service.RegenerateQR(product.ID)
	s.Require().NoError(err)

	s.NotEqual(oldKey, regenerated.QRCodePath)
	_, err = s.store.Read(oldKey)
	s.ErrorIs(err, ErrNotFound)

	stored, err := s.store.Read(regenerated.QRCodePath)
	s.Require().NoError(err)
	expected, err := qrcode.Encode(s.service.PublicURL(product.UniqueCode))
	s.Require().NoError(err)
	s.Equal(expected, stored)
}

func (s *ProductServiceTestSuite) TestRegenerateLeavesOneLiveArtifact() {
	product := s.createProduct(nil)

	regenerated, err := s.service.RegenerateQR(product.ID)
	s.Require().NoError(err)
	regenerated, err = s.service.RegenerateQR(product.ID)
	s.Require().NoError(err)

	keys := s.store.keys()
	s.Len(keys, 1)
	s.Equal(regenerated.QRCodePath, keys[0])
}

func (s *ProductServiceTestSuite) TestRegenerateStorageFailure() {
	product := s.createProduct(nil)
	s.store.failSave = true

	_, err := s.service.RegenerateQR(product.ID)
	s.Error(err)

	// The old artifact is gone; the row must not keep pointing at it.
	var reloaded models.Product
	s.Require().NoError(s.db.First(&reloaded, product.ID).Error)
	s.Empty(reloaded.QRCodePath)

	s.store.failSave = false
	recovered, err := s.service.RegenerateQR(product.ID)
	s.Require().NoError(err)
	s.NotEmpty(recovered.QRCodePath)
}

func (s *ProductServiceTestSuite) TestResolvePublicRecordsScan() {
	product := s.createProduct(nil)

	reqCtx := RequestContext{IPAddress: "203.0.113.7", UserAgent: "test-agent"}
	for i := 0; i < 3; i++ {
		resolved, err := s.service.ResolvePublic(product.UniqueCode, reqCtx, ResolveOptions{RecordScan: true})
		s.Require().NoError(err)
		s.Equal(product.ID, resolved.ID)
		s.Equal(s.maker.Name, resolved.Maker.Name)
	}

	count, err := s.scanService.CountForProduct(product.ID)
	s.Require().NoError(err)
	s.Equal(int64(3), count)
}

func (s *ProductServiceTestSuite) TestResolvePublicWithoutScan() {
	product := s.createProduct(nil)

	_, err := s.service.ResolvePublic(product.UniqueCode, RequestContext{}, ResolveOptions{})
	s.Require().NoError(err)

	count, err := s.scanService.CountForProduct(product.ID)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *ProductServiceTestSuite) TestResolvePublicInactive() {
	product := s.createProduct(nil)
	s.Require().NoError(s.db.Model(product).Update("status", models.ProductStatusInactive).Error)

	_, err := s.service.ResolvePublic(product.UniqueCode, RequestContext{}, ResolveOptions{RecordScan: true})
	s.ErrorIs(err, ErrNotFound)

	count, err := s.scanService.CountForProduct(product.ID)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *ProductServiceTestSuite) TestResolvePublicUnknownCode() {
	_, err := s.service.ResolvePublic("NopeNope11", RequestContext{}, ResolveOptions{RecordScan: true})
	s.ErrorIs(err, ErrNotFound)
}

func (s *ProductServiceTestSuite) TestResolvePublicSurvivesScanFailure() {
	product := s.createProduct(nil)

	// Simulate a broken scan store: resolution must still serve the page.
	s.Require().NoError(s.db.Migrator().DropTable(&models.ScanEvent{}))

	resolved, err := s.service.ResolvePublic(product.UniqueCode, RequestContext{}, ResolveOptions{RecordScan: true})
	s.Require().NoError(err)
	s.Equal(product.ID, resolved.ID)
}

func (s *ProductServiceTestSuite) TestResolvePublicOnlyApprovedReviews() {
	product := s.createProduct(nil)

	for _, status := range []models.ReviewStatus{models.ReviewStatusPending, models.ReviewStatusApproved, models.ReviewStatusRejected} {
		review := &models.Review{
			ProductID:    product.ID,
			CustomerName: "Reviewer",
			Rating:       5,
			Comment:      "Great coffee.",
			Status:       status,
		}
		s.Require().NoError(s.db.Create(review).Error)
	}

	resolved, err := s.service.ResolvePublic(product.UniqueCode, RequestContext{}, ResolveOptions{})
	s.Require().NoError(err)
	s.Len(resolved.Reviews, 1)
	s.Equal(models.ReviewStatusApproved, resolved.Reviews[0].Status)
}

func (s *ProductServiceTestSuite) TestDeleteProductCascades() {
	product := s.createProduct(nil)

	image, err := s.service.AddImage(product.ID, "product_images/pic.png", "", false)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(image.ImagePath, []byte("png-bytes"), "image/png"))

	s.Require().NoError(s.db.Create(&models.Review{
		ProductID:    product.ID,
		CustomerName: "Reviewer",
		Rating:       4,
		Comment:      "Nice.",
		Status:       models.ReviewStatusApproved,
	}).Error)
	s.scanService.Record(product.ID, RequestContext{IPAddress: "203.0.113.7"})

	s.Require().NoError(s.service.DeleteProduct(product.ID))

	_, err = s.service.GetProduct(product.ID)
	s.ErrorIs(err, ErrNotFound)

	for _, model := range []interface{}{&models.ScanEvent{}, &models.Review{}, &models.ProductImage{}} {
		var count int64
		s.Require().NoError(s.db.Model(model).Where("product_id = ?", product.ID).Count(&count).Error)
		s.Zero(count)
	}

	s.Empty(s.store.keys())
}

func (s *ProductServiceTestSuite) TestDeleteProductSurvivesArtifactFailure() {
	product := s.createProduct(nil)
	s.store.failDelete = true

	s.Require().NoError(s.service.DeleteProduct(product.ID))

	_, err := s.service.GetProduct(product.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *ProductServiceTestSuite) TestListProductsSearch() {
	s.createProduct(&CreateProductRequest{
		MakerID:     s.maker.ID,
		Name:        "Arabica Gayo",
		Description: "Highland arabica.",
	})
	s.createProduct(&CreateProductRequest{
		MakerID:     s.maker.ID,
		Name:        "Robusta Lampung",
		Description: "Lowland robusta.",
	})

	products, total, err := s.service.ListProducts(paginationWithSearch("arabica"))
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(products, 1)
	s.Equal("Arabica Gayo", products[0].Name)
}

func TestProductServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}
