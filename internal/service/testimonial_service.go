package service

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/hahnmechanical/site/internal/db"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

var (
	// ErrTestimonialNotFound 在指定的评价不存在时返回
	ErrTestimonialNotFound = errors.New("testimonial not found")
	// ErrTestimonialInvalidInput 在必填项缺失时返回
	ErrTestimonialInvalidInput = errors.New("invalid testimonial input")
	// ErrTestimonialRatingInvalid 在评分不在 1-5 之间时返回
	ErrTestimonialRatingInvalid = errors.New("testimonial rating must be between 1 and 5")
)

const (
	minTestimonialRating     = 1
	maxTestimonialRating     = 5
	defaultTestimonialRating = 5
)

// TestimonialService 负责维护客户评价
// 提供发布切换、增删查能力，与 handler 解耦
type TestimonialService struct {
	db     *gorm.DB
	policy *bluemonday.Policy
}

// NewTestimonialService 构造 TestimonialService
func NewTestimonialService(gdb *gorm.DB) *TestimonialService {
	return &TestimonialService{db: gdb, policy: bluemonday.StrictPolicy()}
}

// TestimonialInput 描述创建评价时可设置的字段
// Rating/IsPublished 使用指针判断是否显式传入
type TestimonialInput struct {
	CustomerName string
	Text         string
	Rating       *int
	IsPublished  *bool
}

// List 返回评价列表，最新的在前
// 如果 includeHidden 为 false，则只返回已发布的条目
func (s *TestimonialService) List(includeHidden bool) ([]db.Testimonial, error) {
	query := s.db.Model(&db.Testimonial{})
	if !includeHidden {
		query = query.Where("is_published = ?", true)
	}

	var items []db.Testimonial
	if err := query.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list testimonials: %w", err)
	}
	return items, nil
}

// ListPublished 返回前台可见的评价
func (s *TestimonialService) ListPublished() ([]db.Testimonial, error) {
	return s.List(false)
}

// Get 根据主键获取评价
func (s *TestimonialService) Get(id uint) (*db.Testimonial, error) {
	var item db.Testimonial
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestimonialNotFound
		}
		return nil, fmt.Errorf("get testimonial: %w", err)
	}
	return &item, nil
}

// Create 新建评价，未指定评分时默认 5 星，未指定发布状态时默认发布
func (s *TestimonialService) Create(input TestimonialInput) (*db.Testimonial, error) {
	name := s.clean(input.CustomerName)
	text := s.clean(input.Text)
	if name == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrTestimonialInvalidInput)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrTestimonialInvalidInput)
	}

	rating := defaultTestimonialRating
	if input.Rating != nil {
		rating = *input.Rating
	}
	if rating < minTestimonialRating || rating > maxTestimonialRating {
		return nil, ErrTestimonialRatingInvalid
	}

	published := true
	if input.IsPublished != nil {
		published = *input.IsPublished
	}

	item := db.Testimonial{
		CustomerName: name,
		Text:         text,
		Rating:       rating,
		IsPublished:  published,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create testimonial: %w", err)
	}
	return &item, nil
}

// SetPublished 切换评价的发布状态
func (s *TestimonialService) SetPublished(id uint, published bool) (*db.Testimonial, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(item).Update("is_published", published).Error; err != nil {
		return nil, fmt.Errorf("update testimonial: %w", err)
	}
	item.IsPublished = published
	return item, nil
}

// Delete 删除指定评价
func (s *TestimonialService) Delete(id uint) error {
	result := s.db.Delete(&db.Testimonial{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete testimonial: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTestimonialNotFound
	}
	return nil
}

// clean 去除首尾空白并剥离 HTML 标签，评价内容只保存纯文本，转义交给模板
func (s *TestimonialService) clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(strings.TrimSpace(value))))
}
