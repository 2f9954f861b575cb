package db

// ContactSubmission 记录联系表单与服务咨询表单的提交。
// ServiceType 为空表示来自通用联系页。
type ContactSubmission struct {
	Model
	Name        string `gorm:"size:120;not null" json:"name"`
	Email       string `gorm:"size:255;not null;index" json:"email"`
	Phone       string `gorm:"size:40" json:"phone"`
	Message     string `gorm:"type:text" json:"message"`
	ServiceType string `gorm:"size:120;index" json:"service_type"`
}

// TableName 指定自定义表名。
func (ContactSubmission) TableName() string {
	return "contact_submissions"
}
