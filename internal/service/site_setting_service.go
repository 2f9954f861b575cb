package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hahnmechanical/site/internal/db"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SiteSettingsCacheTTL 与前台导航的刷新周期保持一致。
const SiteSettingsCacheTTL = 5 * time.Minute

const siteSettingsCacheKey = "site_settings"

// SiteSettings 描述后台可配置的站点开关。
type SiteSettings struct {
	TestimonialsEnabled bool
}

// SiteSettingsInput 用于更新站点设置。
type SiteSettingsInput struct {
	TestimonialsEnabled bool
}

// SiteSettingService 提供站点设置的读取与更新能力，读取结果带有进程内缓存。
type SiteSettingService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewSiteSettingService 构造 SiteSettingService。
func NewSiteSettingService(gdb *gorm.DB) *SiteSettingService {
	return &SiteSettingService{
		db:    gdb,
		cache: cache.New(SiteSettingsCacheTTL, 2*SiteSettingsCacheTTL),
	}
}

var settingKeys = []string{
	db.SettingKeyTestimonialsEnabled,
}

// GetSettings 读取站点设置，如未设置将返回默认值（评价页关闭）。
func (s *SiteSettingService) GetSettings() (SiteSettings, error) {
	result := SiteSettings{}

	var records []db.SystemSetting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load site settings: %w", err)
	}

	for _, record := range records {
		switch record.Key {
		case db.SettingKeyTestimonialsEnabled:
			result.TestimonialsEnabled = parseBoolSetting(record.Value)
		}
	}

	return result, nil
}

// Cached 返回缓存中的站点设置，缓存缺失时回源数据库。
func (s *SiteSettingService) Cached() (SiteSettings, error) {
	if cached, found := s.cache.Get(siteSettingsCacheKey); found {
		if settings, ok := cached.(SiteSettings); ok {
			return settings, nil
		}
	}

	settings, err := s.GetSettings()
	if err != nil {
		return settings, err
	}
	s.cache.Set(siteSettingsCacheKey, settings, cache.DefaultExpiration)
	return settings, nil
}

// UpdateSettings 保存站点设置，记录不存在时创建，并使缓存失效。
func (s *SiteSettingService) UpdateSettings(input SiteSettingsInput) (SiteSettings, error) {
	sanitized := SiteSettings{TestimonialsEnabled: input.TestimonialsEnabled}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return upsertSetting(tx, db.SettingKeyTestimonialsEnabled, strconv.FormatBool(sanitized.TestimonialsEnabled))
	})
	if err != nil {
		return SiteSettings{}, fmt.Errorf("update site settings: %w", err)
	}

	s.Invalidate()
	return sanitized, nil
}

// Invalidate 清除缓存，下次读取将回源数据库。
func (s *SiteSettingService) Invalidate() {
	s.cache.Delete(siteSettingsCacheKey)
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

func parseBoolSetting(raw string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return parsed
}
