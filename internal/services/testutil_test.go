// internal/services/testutil_test.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tandatangan/katalog-backend/internal/config"
	"github.com/tandatangan/katalog-backend/internal/database"
	"github.com/tandatangan/katalog-backend/internal/models"
	"github.com/tandatangan/katalog-backend/internal/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One shared in-memory database per test; a single connection keeps
	// SQLite's writer serialization out of the way.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.MigrateModels(db))

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		App: config.AppConfig{
			BaseURL:         "https://katalog.test",
			CodeMaxAttempts: 5,
		},
	}
}

// fakeStore is an in-memory ArtifactStore with failure injection.
type fakeStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failSave   bool
	failDelete bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Save(key string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return errors.New("storage backend unavailable")
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStore) Read(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (f *fakeStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if key == "" {
		return nil
	}
	if f.failDelete {
		return errors.New("storage backend unavailable")
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) URLFor(key string) string {
	if key == "" {
		return ""
	}
	return "https://cdn.katalog.test/" + key
}

func (f *fakeStore) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys
}

func paginationWithSearch(search string) utils.PaginationParams {
	return utils.PaginationParams{
		Page:   1,
		Limit:  20,
		Sort:   "created_at",
		Order:  "desc",
		Search: search,
	}
}

func createTestMaker(t *testing.T, db *gorm.DB) *models.Maker {
	t.Helper()

	maker := &models.Maker{
		Name:            "Kopi Nusantara",
		OwnerName:       "Budi Santoso",
		Address:         "Jl. Merdeka 1, Bandung",
		Phone:           "+62812345678",
		Story:           "A family roastery since 1990.",
		EstablishedYear: 1990,
	}
	require.NoError(t, db.Create(maker).Error)
	return maker
}
