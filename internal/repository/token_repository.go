package repository

import (
	"context"
	"time"

	"github.com/taskr/taskr-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTokenRepository is a GORM implementation of TokenRepository
type GormTokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &GormTokenRepository{db: db}
}

// Create stores a new token
func (r *GormTokenRepository) Create(ctx context.Context, token *models.AuthToken) error {
	return r.db.WithContext(ctx).Omit("User").Create(token).Error
}

// FindByKey finds a token and its user
func (r *GormTokenRepository) FindByKey(ctx context.Context, key string) (*models.AuthToken, error) {
	var token models.AuthToken
	if err := r.db.WithContext(ctx).Preload("User").Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// DeleteExpired removes tokens that expired before now
func (r *GormTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.AuthToken{})
	return result.RowsAffected, result.Error
}
