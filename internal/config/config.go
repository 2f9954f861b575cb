package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DevSessionSecret 仅在非 release 模式且未配置 SESSION_SECRET 时使用。
const DevSessionSecret = "hahn-dev-secret"

// minSessionSecretLen 是 release 模式下会话密钥的最小长度。
const minSessionSecretLen = 32

var (
	// ErrSessionSecretMissing release 模式下未配置 SESSION_SECRET
	ErrSessionSecretMissing = errors.New("SESSION_SECRET must be set in release mode")
	// ErrSessionSecretWeak release 模式下会话密钥过短或仍是开发默认值
	ErrSessionSecretWeak = fmt.Errorf("SESSION_SECRET must be at least %d characters and not the development default", minSessionSecretLen)
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	Port           string
	DatabasePath   string
	SessionSecret  string
	TrustedProxies []string
	GinMode        string
	LogLevel       string
	UploadDir      string
	UploadURLPath  string
	UploadMaxBytes int64
	AdminUserName  string
	AdminPassword  string
	SiteBaseURL    string
	CORSOrigins    []string
	Cloudinary     CloudinaryConfig
	Mail           MailConfig
	Business       BusinessInfo
}

// CloudinaryConfig 描述可选的 Cloudinary 上传配置。
type CloudinaryConfig struct {
	URL       string
	CloudName string
	APIKey    string
	APISecret string
}

// Enabled 判断是否提供了足够的 Cloudinary 凭据。
func (c CloudinaryConfig) Enabled() bool {
	if c.URL != "" {
		return true
	}
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// ConnectionURL 返回 cloudinary:// 形式的连接串。
func (c CloudinaryConfig) ConnectionURL() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "cloudinary",
		User:   url.UserPassword(c.APIKey, c.APISecret),
		Host:   c.CloudName,
	}
	return u.String()
}

// MailConfig 描述通知邮件的 SMTP 配置。
type MailConfig struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	NotifyTo string
}

// Enabled 在配置了 SMTP 主机与收件人时返回 true。
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.NotifyTo != ""
}

// BusinessInfo 是页头页脚展示的商户信息。
type BusinessInfo struct {
	Name    string
	Phone   string
	Email   string
	License string
}

// Load 先尝试加载 .env，再从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	// .env 缺失时直接使用系统环境变量
	_ = godotenv.Load()

	port := env("PORT", "8080")

	listenAddr := env("LISTEN_ADDR", "")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	notifyTo := env("NOTIFY_EMAIL", "")
	businessEmail := env("BUSINESS_EMAIL", "info@hahnmechanical.com")
	if notifyTo == "" {
		notifyTo = businessEmail
	}

	ginMode := normalizeGinMode(env("GIN_MODE", "release"))
	sessionSecret := env("SESSION_SECRET", "")
	if sessionSecret == "" && ginMode != "release" {
		sessionSecret = DevSessionSecret
	}

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		DatabasePath:   env("DATABASE_PATH", "hahn.db"),
		SessionSecret:  sessionSecret,
		TrustedProxies: splitList(env("TRUSTED_PROXIES", "")),
		GinMode:        ginMode,
		LogLevel:       env("LOG_LEVEL", "info"),
		UploadDir:      env("UPLOAD_DIR", "web/static/uploads"),
		UploadURLPath:  env("UPLOAD_URL_PATH", "/static/uploads"),
		UploadMaxBytes: envInt64("UPLOAD_MAX_BYTES", 10<<20),
		AdminUserName:  env("ADMIN_USERNAME", ""),
		AdminPassword:  env("ADMIN_PASSWORD", ""),
		SiteBaseURL:    env("SITE_BASE_URL", "https://hahnmechanical.com"),
		CORSOrigins:    splitList(env("CORS_ALLOWED_ORIGINS", "")),
		Cloudinary: CloudinaryConfig{
			URL:       env("CLOUDINARY_URL", ""),
			CloudName: env("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    env("CLOUDINARY_API_KEY", ""),
			APISecret: env("CLOUDINARY_API_SECRET", ""),
		},
		Mail: MailConfig{
			Host:     env("SMTP_HOST", ""),
			Port:     int(envInt64("SMTP_PORT", 587)),
			User:     env("SMTP_USER", ""),
			Pass:     env("SMTP_PASS", ""),
			From:     env("MAIL_FROM", ""),
			NotifyTo: notifyTo,
		},
		Business: BusinessInfo{
			Name:    env("BUSINESS_NAME", "Hahn Mechanical"),
			Phone:   env("BUSINESS_PHONE", "(408) 460-5304"),
			Email:   businessEmail,
			License: env("BUSINESS_LICENSE", "LIC. 1128875"),
		},
	}
}

// Validate 检查启动前必须满足的配置约束。
// release 模式下拒绝空的、过短的或开发默认的会话密钥。
func (c AppConfig) Validate() error {
	if c.GinMode != "release" {
		return nil
	}
	secret := strings.TrimSpace(c.SessionSecret)
	if secret == "" {
		return ErrSessionSecretMissing
	}
	if len(secret) < minSessionSecretLen || secret == DevSessionSecret {
		return ErrSessionSecretWeak
	}
	return nil
}

func env(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

// normalizeGinMode 将未知取值回退为 release，避免 gin.SetMode panic。
func normalizeGinMode(mode string) string {
	switch strings.ToLower(mode) {
	case "debug":
		return "debug"
	case "test":
		return "test"
	default:
		return "release"
	}
}

func envInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
