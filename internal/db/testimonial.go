package db

// Testimonial 保存客户评价，IsPublished 控制是否在前台展示。
type Testimonial struct {
	Model
	CustomerName string `gorm:"size:120;not null" json:"customer_name"`
	Text         string `gorm:"type:text;not null" json:"text"`
	Rating       int    `gorm:"not null;default:5;check:rating >= 1 AND rating <= 5" json:"rating"`
	IsPublished  bool   `gorm:"index" json:"is_published"`
}
