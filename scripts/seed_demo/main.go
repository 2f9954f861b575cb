package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hahnmechanical/site/internal/config"
	"github.com/hahnmechanical/site/internal/db"
	"github.com/hahnmechanical/site/internal/service"
	"gorm.io/gorm"
)

type galleryFixture struct {
	title    string
	category string
	width    int
	height   int
}

// 尺寸覆盖横图、竖图与方图，方便检查画廊布局。
var galleryFixtures = []galleryFixture{
	{"Two-story new build rough-in", db.GalleryCategoryNewConstruction, 1600, 1067},
	{"Attic furnace swap", db.GalleryCategoryRetrofit, 1200, 1600},
	{"Sealed trunk line replacement", db.GalleryCategoryDuctwork, 1600, 900},
	{"Condenser install, side yard", db.GalleryCategoryACServices, 1200, 1200},
	{"Ductless head in home office", db.GalleryCategoryMiniSplits, 1067, 1600},
	{"Heat pump pad and line set", db.GalleryCategoryHeatPumps, 1600, 1067},
	{"Return plenum rebuild", db.GalleryCategoryDuctwork, 1200, 1200},
	{"Multi-zone mini split", db.GalleryCategoryMiniSplits, 1600, 1000},
}

type testimonialFixture struct {
	name      string
	text      string
	rating    int
	published bool
}

var testimonialFixtures = []testimonialFixture{
	{"Maria G.", "Showed up on time, explained every option and had our AC running the same afternoon.", 5, true},
	{"Dan P.", "Replaced all of our old ductwork. The upstairs bedrooms finally stay cool.", 5, true},
	{"Priya S.", "Fair quote and a very clean install of our heat pump.", 4, true},
	{"Tom W.", "Still waiting on a follow-up about the thermostat wiring.", 3, false},
}

type seedSummary struct {
	Gallery      int
	Testimonials int
}

func main() {
	cfg := config.Load()

	databasePath := flag.String("db", cfg.DatabasePath, "SQLite 数据库路径")
	reset := flag.Bool("reset", false, "写入前清空已有作品与评价")
	flag.Parse()

	if err := db.Init(*databasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	summary, err := seed(db.DB, *reset)
	if err != nil {
		log.Fatal("生成演示数据失败:", err)
	}

	fmt.Printf("写入 %d 张作品图片、%d 条客户评价\n", summary.Gallery, summary.Testimonials)
}

// seed 通过 service 层写入演示数据，reset 为 true 时先删除旧记录。
func seed(gdb *gorm.DB, reset bool) (seedSummary, error) {
	var summary seedSummary

	if reset {
		if err := gdb.Unscoped().Where("1 = 1").Delete(&db.GalleryImage{}).Error; err != nil {
			return summary, fmt.Errorf("clear gallery: %w", err)
		}
		if err := gdb.Unscoped().Where("1 = 1").Delete(&db.Testimonial{}).Error; err != nil {
			return summary, fmt.Errorf("clear testimonials: %w", err)
		}
	}

	galleries := service.NewGalleryService(gdb)
	for i, fixture := range galleryFixtures {
		_, err := galleries.Create(service.GalleryInput{
			Title:       fixture.title,
			Category:    fixture.category,
			ImageURL:    fmt.Sprintf("https://picsum.photos/seed/hahn-%d/%d/%d", i+1, fixture.width, fixture.height),
			ImageWidth:  fixture.width,
			ImageHeight: fixture.height,
		})
		if err != nil {
			return summary, fmt.Errorf("create gallery %q: %w", fixture.title, err)
		}
		summary.Gallery++
	}

	testimonials := service.NewTestimonialService(gdb)
	for _, fixture := range testimonialFixtures {
		rating := fixture.rating
		published := fixture.published
		_, err := testimonials.Create(service.TestimonialInput{
			CustomerName: fixture.name,
			Text:         fixture.text,
			Rating:       &rating,
			IsPublished:  &published,
		})
		if err != nil {
			return summary, fmt.Errorf("create testimonial %q: %w", fixture.name, err)
		}
		summary.Testimonials++
	}

	return summary, nil
}
