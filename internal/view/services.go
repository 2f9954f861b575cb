package view

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"

	"github.com/hahnmechanical/site/internal/db"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// Service 是服务目录中的一项。
type Service struct {
	Slug         string
	Title        string
	PreviewTitle string
	ShortDesc    string
	Description  string
	Features     []string
	Icon         string
	Category     string
}

// DescriptionHTML 将 Markdown 描述渲染为经过清洗的 HTML。
func (s Service) DescriptionHTML() template.HTML {
	return RenderMarkdown(s.Description)
}

// IconHTML returns the inline SVG icon.
func (s Service) IconHTML() template.HTML {
	return template.HTML(s.Icon)
}

// InquiryPath 返回该服务的咨询表单地址。
func (s Service) InquiryPath() string {
	return "/service-inquiry?service=" + url.QueryEscape(s.Title)
}

const (
	iconBuilding    = `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true"><path d="M6 22V4a2 2 0 0 1 2-2h8a2 2 0 0 1 2 2v18Z"/><path d="M6 12H4a2 2 0 0 0-2 2v6a2 2 0 0 0 2 2h2"/><path d="M18 9h2a2 2 0 0 1 2 2v9a2 2 0 0 1-2 2h-2"/><path d="M10 6h4"/><path d="M10 10h4"/><path d="M10 14h4"/><path d="M10 18h4"/></svg>`
	iconWrench      = `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true"><path d="M14.7 6.3a1 1 0 0 0 0 1.4l1.6 1.6a1 1 0 0 0 1.4 0l3.77-3.77a6 6 0 0 1-7.94 7.94l-6.91 6.91a2.12 2.12 0 0 1-3-3l6.91-6.91a6 6 0 0 1 7.94-7.94l-3.76 3.76z"/></svg>`
	iconWind        = `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true"><path d="M17.7 7.7a2.5 2.5 0 1 1 1.8 4.3H2"/><path d="M9.6 4.6A2 2 0 1 1 11 8H2"/><path d="M12.6 19.4A2 2 0 1 0 14 16H2"/></svg>`
	iconSnowflake   = `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true"><line x1="2" x2="22" y1="12" y2="12"/><line x1="12" x2="12" y1="2" y2="22"/><path d="m20 16-4-4 4-4"/><path d="m4 8 4 4-4 4"/><path d="m16 4-4 4-4-4"/><path d="m8 20 4-4 4 4"/></svg>`
	iconThermometer = `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true"><path d="M14 4v10.54a4 4 0 1 1-4 0V4a2 2 0 0 1 4 0Z"/></svg>`
	iconZap         = `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true"><path d="M4 14a1 1 0 0 1-.78-1.63l9.9-10.2a.5.5 0 0 1 .86.46l-1.92 6.02A1 1 0 0 0 13 10h7a1 1 0 0 1 .78 1.63l-9.9 10.2a.5.5 0 0 1-.86-.46l1.92-6.02A1 1 0 0 0 11 14z"/></svg>`
)

var serviceCatalog = []Service{
	{
		Slug:         "new-construction",
		Title:        "New Construction Installs",
		PreviewTitle: "New Construction",
		ShortDesc:    "Complete HVAC systems for new builds",
		Description:  "We design and install complete HVAC systems for new residential and commercial construction projects. Our team works directly with builders to ensure seamless integration.",
		Features:     []string{"Custom system design", "Energy-efficient solutions", "Code-compliant installation", "Warranty included"},
		Icon:         iconBuilding,
		Category:     db.GalleryCategoryNewConstruction,
	},
	{
		Slug:         "retrofit",
		Title:        "Retrofit Installation",
		PreviewTitle: "Retrofit Install",
		ShortDesc:    "Upgrade your existing systems",
		Description:  "Upgrade your current HVAC system without major construction. We specialize in fitting modern, efficient equipment into existing spaces while minimizing disruption.",
		Features:     []string{"Minimal downtime", "Improved efficiency", "Modern equipment", "Cost-effective solutions"},
		Icon:         iconWrench,
		Category:     db.GalleryCategoryRetrofit,
	},
	{
		Slug:         "ductwork",
		Title:        "Duct Removal & Replacement",
		PreviewTitle: "Ductwork",
		ShortDesc:    "Complete ductwork services",
		Description:  "Old or damaged ductwork reduces efficiency and air quality. We remove outdated systems and install new, properly sealed ductwork for optimal airflow.",
		Features:     []string{"Full system assessment", "Leak-free installation", "Improved air quality", "Better energy efficiency"},
		Icon:         iconWind,
		Category:     db.GalleryCategoryDuctwork,
	},
	{
		Slug:         "ac-services",
		Title:        "AC Services",
		PreviewTitle: "AC Services",
		ShortDesc:    "Installation, repair & maintenance",
		Description:  "From new installations to repairs and annual maintenance, we keep your air conditioning running at peak performance all season long.",
		Features:     []string{"New system installation", "Emergency repairs", "Preventive maintenance", "All major brands serviced"},
		Icon:         iconSnowflake,
		Category:     db.GalleryCategoryACServices,
	},
	{
		Slug:         "mini-splits",
		Title:        "Mini Splits",
		PreviewTitle: "Mini Splits",
		ShortDesc:    "Ductless heating & cooling",
		Description:  "Ductless mini-split systems offer efficient zone control without the need for ductwork. Perfect for additions, converted spaces, or homes without existing ducts.",
		Features:     []string{"Zone temperature control", "No ductwork needed", "Quiet operation", "Energy savings"},
		Icon:         iconThermometer,
		Category:     db.GalleryCategoryMiniSplits,
	},
	{
		Slug:         "heat-pumps",
		Title:        "Heat Pumps",
		PreviewTitle: "Heat Pumps",
		ShortDesc:    "Energy-efficient climate control",
		Description:  "Heat pumps provide both heating and cooling in one efficient system. We install, repair, and maintain all types of heat pump systems.",
		Features:     []string{"Year-round comfort", "Lower energy bills", "Eco-friendly option", "Rebate-eligible systems"},
		Icon:         iconZap,
		Category:     db.GalleryCategoryHeatPumps,
	},
}

// Services 返回服务目录的副本。
func Services() []Service {
	items := make([]Service, len(serviceCatalog))
	copy(items, serviceCatalog)
	return items
}

// ServiceByTitle 按标题查找服务，忽略大小写。
func ServiceByTitle(title string) (Service, bool) {
	title = strings.TrimSpace(title)
	for _, item := range serviceCatalog {
		if strings.EqualFold(item.Title, title) {
			return item, true
		}
	}
	return Service{}, false
}

// RenderMarkdown 渲染 Markdown 并使用 UGC 策略清洗输出。
func RenderMarkdown(content string) template.HTML {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(content))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}
