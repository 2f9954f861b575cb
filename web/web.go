// Package web 内嵌页面模板与静态资源，保证二进制与测试均不依赖工作目录。
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/hahnmechanical/site/internal/view"
)

//go:embed template/*.html
var templateFS embed.FS

//go:embed static/css/*.css static/js/*.js
var staticFS embed.FS

// FuncMap 返回模板中使用的辅助函数。
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"stars": func(rating int) []bool {
			filled := make([]bool, 5)
			for i := 0; i < rating && i < 5; i++ {
				filled[i] = true
			}
			return filled
		},
		"initial": func(name string) string {
			name = strings.TrimSpace(name)
			if name == "" {
				return "?"
			}
			return strings.ToUpper(string([]rune(name)[:1]))
		},
		"categoryLabel": view.CategoryLabel,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
	}
}

// Templates 解析全部内嵌模板，模板名为文件名（例如 home.html）。
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(templateFS, "template/*.html")
}

// Static 返回 /assets 下提供的静态文件系统。
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
