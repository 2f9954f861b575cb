package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hahnmechanical/site/internal/db"
	"gorm.io/gorm"
)

var (
	ErrGalleryNotFound        = errors.New("gallery image not found")
	ErrGalleryImageMissing    = errors.New("gallery image is required")
	ErrGalleryTitleMissing    = errors.New("gallery title is required")
	ErrGalleryCategoryInvalid = errors.New("gallery category is invalid")
)

const (
	defaultGalleryPerPage = 24
	maxGalleryPerPage     = 100
)

// GalleryService handles gallery CRUD.
type GalleryService struct {
	db *gorm.DB
}

// GalleryFilter describes filters for listing gallery images.
type GalleryFilter struct {
	Category string
	Page     int
	PerPage  int
}

// GalleryListResult aggregates paginated gallery results.
type GalleryListResult struct {
	Items      []db.GalleryImage
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// GalleryInput represents fields accepted when creating a gallery image.
type GalleryInput struct {
	Title       string
	Category    string
	ImageURL    string
	ImageWidth  int
	ImageHeight int
}

// NewGalleryService creates a GalleryService instance.
func NewGalleryService(gdb *gorm.DB) *GalleryService {
	return &GalleryService{db: gdb}
}

// ListAll returns all gallery images, newest first.
func (s *GalleryService) ListAll() ([]db.GalleryImage, error) {
	var items []db.GalleryImage
	if err := s.db.Order("created_at desc").Order("id desc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list gallery images: %w", err)
	}
	return items, nil
}

// List returns gallery images matching the filter.
func (s *GalleryService) List(filter GalleryFilter) (GalleryListResult, error) {
	result := GalleryListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, defaultGalleryPerPage),
	}

	query := s.db.Model(&db.GalleryImage{})
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return result, fmt.Errorf("count gallery images: %w", err)
	}

	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)
	offset := (result.Page - 1) * result.PerPage

	if err := query.Order("created_at desc").Order("id desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&result.Items).Error; err != nil {
		return result, fmt.Errorf("list gallery images: %w", err)
	}

	return result, nil
}

// Get fetches a gallery image by id.
func (s *GalleryService) Get(id uint) (*db.GalleryImage, error) {
	var item db.GalleryImage
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGalleryNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Locate returns the image together with its position in the newest-first
// listing, which the lightbox uses for prev/next navigation.
func (s *GalleryService) Locate(id uint) (items []db.GalleryImage, index int, err error) {
	items, err = s.ListAll()
	if err != nil {
		return nil, 0, err
	}
	for i, item := range items {
		if item.ID == id {
			return items, i, nil
		}
	}
	return nil, 0, ErrGalleryNotFound
}

// Create inserts a new gallery image.
func (s *GalleryService) Create(input GalleryInput) (*db.GalleryImage, error) {
	category, err := validateGalleryInput(input)
	if err != nil {
		return nil, err
	}

	item := db.GalleryImage{
		Title:       strings.TrimSpace(input.Title),
		Category:    category,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		ImageWidth:  input.ImageWidth,
		ImageHeight: input.ImageHeight,
	}

	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create gallery image: %w", err)
	}
	return &item, nil
}

// Delete removes a gallery image.
func (s *GalleryService) Delete(id uint) error {
	var item db.GalleryImage
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGalleryNotFound
		}
		return err
	}
	return s.db.Delete(&item).Error
}

// Count returns the number of gallery images.
func (s *GalleryService) Count() (int64, error) {
	var total int64
	if err := s.db.Model(&db.GalleryImage{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count gallery images: %w", err)
	}
	return total, nil
}

// ValidateGalleryMeta checks title and category before an image is uploaded.
func ValidateGalleryMeta(title, category string) error {
	if strings.TrimSpace(title) == "" {
		return ErrGalleryTitleMissing
	}
	if !db.IsGalleryCategory(normalizeGalleryCategory(category)) {
		return ErrGalleryCategoryInvalid
	}
	return nil
}

func validateGalleryInput(input GalleryInput) (string, error) {
	if strings.TrimSpace(input.Title) == "" {
		return "", ErrGalleryTitleMissing
	}
	if strings.TrimSpace(input.ImageURL) == "" {
		return "", ErrGalleryImageMissing
	}
	category := normalizeGalleryCategory(input.Category)
	if !db.IsGalleryCategory(category) {
		return "", ErrGalleryCategoryInvalid
	}
	return category, nil
}

func normalizeGalleryCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return db.DefaultGalleryCategory
	}
	return category
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePerPage(perPage, fallback int) int {
	if perPage <= 0 {
		return fallback
	}
	if perPage > maxGalleryPerPage {
		return maxGalleryPerPage
	}
	return perPage
}

func calculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	if total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
