// internal/services/maker_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/tandatangan/katalog-backend/internal/models"
)

type MakerServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	store   *fakeStore
	service *MakerService
}

func (s *MakerServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.store = newFakeStore()
	s.service = NewMakerService(s.db, s.store)
}

func (s *MakerServiceTestSuite) createMaker() *models.Maker {
	maker, err := s.service.CreateMaker(&CreateMakerRequest{
		Name:            "Kopi Nusantara",
		OwnerName:       "Budi Santoso",
		Address:         "Jl. Merdeka 1, Bandung",
		Phone:           "+62812345678",
		EstablishedYear: 1990,
	})
	s.Require().NoError(err)
	return maker
}

func (s *MakerServiceTestSuite) TestCreateMaker() {
	maker := s.createMaker()

	s.NotZero(maker.ID)
	s.Equal("Kopi Nusantara", maker.Name)
}

func (s *MakerServiceTestSuite) TestCreateMakerValidation() {
	_, err := s.service.CreateMaker(&CreateMakerRequest{Name: "No owner"})
	s.ErrorIs(err, ErrValidation)

	_, err = s.service.CreateMaker(&CreateMakerRequest{
		Name:            "Future",
		OwnerName:       "Owner",
		Address:         "Somewhere",
		Phone:           "123",
		EstablishedYear: 3000,
	})
	s.ErrorIs(err, ErrValidation)
}

func (s *MakerServiceTestSuite) TestUpdateMakerReplacesLogo() {
	maker := s.createMaker()
	s.Require().NoError(s.store.Save("maker_logos/old.png", []byte("old"), "image/png"))

	oldLogo := "maker_logos/old.png"
	_, err := s.service.UpdateMaker(maker.ID, &UpdateMakerRequest{LogoPath: &oldLogo})
	s.Require().NoError(err)

	newLogo := "maker_logos/new.png"
	updated, err := s.service.UpdateMaker(maker.ID, &UpdateMakerRequest{LogoPath: &newLogo})
	s.Require().NoError(err)

	var reloaded models.Maker
	s.Require().NoError(s.db.First(&reloaded, updated.ID).Error)
	s.Equal(newLogo, reloaded.LogoPath)

	_, err = s.store.Read(oldLogo)
	s.ErrorIs(err, ErrNotFound)
}

func (s *MakerServiceTestSuite) TestDeleteMakerWithProductsRefused() {
	maker := s.createMaker()

	productService := NewProductService(s.db, s.store, NewScanService(s.db), newTestConfig())
	_, err := productService.CreateProduct(&CreateProductRequest{
		MakerID:     maker.ID,
		Name:        "Arabica Gayo",
		Description: "Highland arabica.",
	})
	s.Require().NoError(err)

	err = s.service.DeleteMaker(maker.ID)
	s.ErrorIs(err, ErrConflict)
}

func (s *MakerServiceTestSuite) TestDeleteMakerWithoutProducts() {
	maker := s.createMaker()

	s.Require().NoError(s.service.DeleteMaker(maker.ID))

	_, err := s.service.GetMaker(maker.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *MakerServiceTestSuite) TestListMakersSearch() {
	s.createMaker()
	_, err := s.service.CreateMaker(&CreateMakerRequest{
		Name:      "Batik Pekalongan",
		OwnerName: "Sari Dewi",
		Address:   "Jl. Batik 5, Pekalongan",
		Phone:     "+62898765432",
	})
	s.Require().NoError(err)

	makers, total, err := s.service.ListMakers(paginationWithSearch("batik"))
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(makers, 1)
	s.Equal("Batik Pekalongan", makers[0].Name)
}

func TestMakerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MakerServiceTestSuite))
}
