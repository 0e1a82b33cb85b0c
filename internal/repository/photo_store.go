package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// gormPhotoStore implements PhotoRepository for one photo table keyed by ownerColumn.
type gormPhotoStore[T any] struct {
	db          *gorm.DB
	ownerColumn string
	setOwner    func(photo *T, ownerID uint64)
}

func (s *gormPhotoStore[T]) AddPhotos(ctx context.Context, ownerID uint64, photos []T) error {
	if len(photos) == 0 {
		return nil
	}
	for i := range photos {
		s.setOwner(&photos[i], ownerID)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&photos).Error
	})
}

func (s *gormPhotoStore[T]) CountPhotos(ctx context.Context, ownerID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(new(T)).
		Where(fmt.Sprintf("%s = ?", s.ownerColumn), ownerID).
		Count(&count).Error
	return count, err
}

func (s *gormPhotoStore[T]) ListPhotos(ctx context.Context, ownerID uint64) ([]T, error) {
	var photos []T
	if err := s.db.WithContext(ctx).
		Where(fmt.Sprintf("%s = ?", s.ownerColumn), ownerID).
		Order("id ASC").
		Find(&photos).Error; err != nil {
		return nil, err
	}
	return photos, nil
}

func (s *gormPhotoStore[T]) FindPhoto(ctx context.Context, ownerID, photoID uint64) (*T, error) {
	var photo T
	if err := s.db.WithContext(ctx).
		Where(fmt.Sprintf("id = ? AND %s = ?", s.ownerColumn), photoID, ownerID).
		First(&photo).Error; err != nil {
		return nil, err
	}
	return &photo, nil
}

func (s *gormPhotoStore[T]) DeletePhoto(ctx context.Context, ownerID, photoID uint64) error {
	result := s.db.WithContext(ctx).
		Where(fmt.Sprintf("id = ? AND %s = ?", s.ownerColumn), photoID, ownerID).
		Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
