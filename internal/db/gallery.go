package db

// 作品分类固定为六种，与服务目录一一对应。
const (
	GalleryCategoryNewConstruction = "new_construction"
	GalleryCategoryRetrofit        = "retrofit"
	GalleryCategoryDuctwork        = "ductwork"
	GalleryCategoryACServices      = "ac_services"
	GalleryCategoryMiniSplits      = "mini_splits"
	GalleryCategoryHeatPumps       = "heat_pumps"

	DefaultGalleryCategory = GalleryCategoryACServices
)

// GalleryCategories 按展示顺序返回全部分类值。
func GalleryCategories() []string {
	return []string{
		GalleryCategoryNewConstruction,
		GalleryCategoryRetrofit,
		GalleryCategoryDuctwork,
		GalleryCategoryACServices,
		GalleryCategoryMiniSplits,
		GalleryCategoryHeatPumps,
	}
}

// IsGalleryCategory reports whether value is one of the fixed categories.
func IsGalleryCategory(value string) bool {
	for _, candidate := range GalleryCategories() {
		if candidate == value {
			return true
		}
	}
	return false
}

// GalleryImage 定义项目作品图片模型，上传后只允许删除。
type GalleryImage struct {
	Model
	Title       string `gorm:"not null" json:"title"`
	Category    string `gorm:"size:40;index;default:ac_services" json:"category"`
	ImageURL    string `gorm:"not null" json:"image_url"`
	ImageWidth  int    `json:"image_width"`
	ImageHeight int    `json:"image_height"`
}
