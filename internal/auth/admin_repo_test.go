package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pizzaro/pizzaro-backend/pkg/db/models"
)

func TestAdminRepositoryFindByUsername(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS admin_users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Create(&models.AdminUser{Username: "boss", PasswordHash: "hash"}).Error)

	repo := NewAdminRepository(db)

	admin, err := repo.FindByUsername(context.Background(), "boss")
	require.NoError(t, err)
	assert.Equal(t, "boss", admin.Username)

	_, err = repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
