package view

import "github.com/hahnmechanical/site/internal/db"

// CategoryOption is a gallery category with its display label.
type CategoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var categoryLabels = map[string]string{
	db.GalleryCategoryNewConstruction: "New Construction",
	db.GalleryCategoryRetrofit:        "Retrofit",
	db.GalleryCategoryDuctwork:        "Ductwork",
	db.GalleryCategoryACServices:      "AC Services",
	db.GalleryCategoryMiniSplits:      "Mini Splits",
	db.GalleryCategoryHeatPumps:       "Heat Pumps",
}

// CategoryOptions 按固定顺序返回后台下拉框使用的分类。
func CategoryOptions() []CategoryOption {
	values := db.GalleryCategories()
	options := make([]CategoryOption, 0, len(values))
	for _, value := range values {
		options = append(options, CategoryOption{Value: value, Label: CategoryLabel(value)})
	}
	return options
}

// CategoryLabel 返回分类的展示名称，未知分类原样返回。
func CategoryLabel(value string) string {
	if label, ok := categoryLabels[value]; ok {
		return label
	}
	return value
}
