package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/hahnmechanical/site/internal/db"
	sitemail "github.com/hahnmechanical/site/internal/mail"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrContactInvalidInput 在表单必填项缺失或格式错误时返回。
var ErrContactInvalidInput = errors.New("invalid contact submission")

// notifyTimeout 限制通知邮件的发送时长，请求上下文本身没有截止时间。
const notifyTimeout = 30 * time.Second

// ContactInput 对应前台联系表单与服务咨询表单的字段。
// ServiceType 非空时按服务咨询处理：电话必填，留言可选。
type ContactInput struct {
	Name        string
	Email       string
	Phone       string
	Message     string
	ServiceType string
}

// IsInquiry reports whether the input came from the service inquiry form.
func (in ContactInput) IsInquiry() bool {
	return strings.TrimSpace(in.ServiceType) != ""
}

// ContactService 保存访客留言，并在服务咨询时发送通知邮件。
type ContactService struct {
	db       *gorm.DB
	mailer   sitemail.Sender
	notifyTo string
	siteName string
	logger   *zap.Logger
}

// NewContactService 构造 ContactService，mailer 为 nil 时不发送通知。
func NewContactService(gdb *gorm.DB, mailer sitemail.Sender, notifyTo, siteName string, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if siteName == "" {
		siteName = "Hahn Mechanical"
	}
	return &ContactService{
		db:       gdb,
		mailer:   mailer,
		notifyTo: strings.TrimSpace(notifyTo),
		siteName: siteName,
		logger:   logger,
	}
}

// Submit 校验并保存提交记录；服务咨询会在写库成功后再发送邮件。
// 邮件失败不会回滚已保存的记录，调用方可通过返回的错误决定如何提示。
func (s *ContactService) Submit(ctx context.Context, input ContactInput) (*db.ContactSubmission, error) {
	input = normalizeContactInput(input)
	if err := validateContactInput(input); err != nil {
		return nil, err
	}

	submission := db.ContactSubmission{
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		Message:     input.Message,
		ServiceType: input.ServiceType,
	}
	if err := s.db.WithContext(ctx).Create(&submission).Error; err != nil {
		return nil, fmt.Errorf("create contact submission: %w", err)
	}

	if !input.IsInquiry() || s.mailer == nil || s.notifyTo == "" {
		return &submission, nil
	}

	msg := BuildInquiryMessage(s.notifyTo, s.siteName, input)
	sendCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := s.mailer.Send(sendCtx, msg); err != nil {
		s.logger.Error("send inquiry notification failed",
			zap.Uint("submission_id", submission.ID),
			zap.String("service", input.ServiceType),
			zap.Error(err),
		)
		return &submission, fmt.Errorf("send inquiry notification: %w", err)
	}
	return &submission, nil
}

// ListRecent 返回最近的提交记录，供后台只读查看。
func (s *ContactService) ListRecent(limit int) ([]db.ContactSubmission, error) {
	if limit <= 0 {
		limit = 20
	}
	var items []db.ContactSubmission
	if err := s.db.Order("created_at desc").Order("id desc").Limit(limit).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}
	return items, nil
}

// Count 返回提交记录总数。
func (s *ContactService) Count() (int64, error) {
	var total int64
	if err := s.db.Model(&db.ContactSubmission{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count contact submissions: %w", err)
	}
	return total, nil
}

// BuildInquiryMessage 生成服务咨询的纯文本通知邮件。
func BuildInquiryMessage(to, siteName string, input ContactInput) sitemail.Message {
	phone := input.Phone
	if phone == "" {
		phone = "Not provided"
	}
	message := input.Message
	if message == "" {
		message = "No message provided"
	}

	var b strings.Builder
	b.WriteString("New Service Inquiry Received\n\n")
	fmt.Fprintf(&b, "Service Requested: %s\n\n", input.ServiceType)
	b.WriteString("Customer Information:\n")
	fmt.Fprintf(&b, "Name: %s\n", input.Name)
	fmt.Fprintf(&b, "Email: %s\n", input.Email)
	fmt.Fprintf(&b, "Phone: %s\n\n", phone)
	b.WriteString("Message:\n")
	b.WriteString(message)
	b.WriteString("\n\n---\n")
	fmt.Fprintf(&b, "This inquiry was submitted via the %s website.", siteName)

	return sitemail.Message{
		To:      []string{to},
		ReplyTo: input.Email,
		Subject: fmt.Sprintf("New Service Request: %s", input.ServiceType),
		Text:    b.String(),
	}
}

func normalizeContactInput(input ContactInput) ContactInput {
	return ContactInput{
		Name:        strings.TrimSpace(input.Name),
		Email:       strings.TrimSpace(input.Email),
		Phone:       strings.TrimSpace(input.Phone),
		Message:     strings.TrimSpace(input.Message),
		ServiceType: strings.TrimSpace(input.ServiceType),
	}
}

func validateContactInput(input ContactInput) error {
	if input.Name == "" {
		return fmt.Errorf("%w: name is required", ErrContactInvalidInput)
	}
	if input.Email == "" {
		return fmt.Errorf("%w: email is required", ErrContactInvalidInput)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return fmt.Errorf("%w: email is invalid", ErrContactInvalidInput)
	}
	if input.IsInquiry() {
		if input.Phone == "" {
			return fmt.Errorf("%w: phone is required", ErrContactInvalidInput)
		}
		return nil
	}
	if input.Message == "" {
		return fmt.Errorf("%w: message is required", ErrContactInvalidInput)
	}
	return nil
}
