package db

import (
	"time"

	"gorm.io/gorm"
)

// Model 与 gorm.Model 字段一致，JSON 使用 snake_case，软删除时间不对外输出。
type Model struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
