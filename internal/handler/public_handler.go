package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hahnmechanical/site/internal/db"
	"github.com/hahnmechanical/site/internal/service"
	"github.com/hahnmechanical/site/internal/view"
	"go.uber.org/zap"
)

const homePreviewCount = 6

type galleryItemView struct {
	db.GalleryImage
	CategoryLabel string `json:"category_label"`
}

func toGalleryViews(items []db.GalleryImage) []galleryItemView {
	views := make([]galleryItemView, 0, len(items))
	for _, item := range items {
		views = append(views, galleryItemView{GalleryImage: item, CategoryLabel: view.CategoryLabel(item.Category)})
	}
	return views
}

// ShowHome renders the landing page.
func (a *API) ShowHome(c *gin.Context) {
	services := view.Services()
	if len(services) > homePreviewCount {
		services = services[:homePreviewCount]
	}

	a.renderHTML(c, http.StatusOK, "home.html", gin.H{
		"title":       "Professional HVAC Services",
		"description": "Expert HVAC installation, repair, and maintenance for homes and businesses. Quality work, fair prices, lasting results.",
		"services":    services,
	})
}

// ShowServices renders the service catalog.
func (a *API) ShowServices(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "services.html", gin.H{
		"title":       "Our Services",
		"description": "Professional HVAC solutions for every need.",
		"services":    view.Services(),
	})
}

// ShowGallery renders all gallery photos, newest first.
func (a *API) ShowGallery(c *gin.Context) {
	items, err := a.galleries.ListAll()
	if err != nil {
		a.logger.Error("list gallery failed", zap.Error(err))
		a.renderHTML(c, http.StatusInternalServerError, "gallery.html", gin.H{
			"title": "Our Work",
			"error": "We couldn't load the gallery right now. Please try again later.",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "gallery.html", gin.H{
		"title":       "Our Work",
		"description": "A look at recent HVAC installations and projects.",
		"items":       toGalleryViews(items),
	})
}

// ShowGalleryPhoto renders the lightbox view with wrap-around navigation.
func (a *API) ShowGalleryPhoto(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.NotFound(c)
		return
	}

	items, index, err := a.galleries.Locate(id)
	if err != nil {
		if errors.Is(err, service.ErrGalleryNotFound) {
			a.NotFound(c)
			return
		}
		a.logger.Error("locate gallery image failed", zap.Uint("id", id), zap.Error(err))
		a.renderHTML(c, http.StatusInternalServerError, "gallery.html", gin.H{
			"title": "Our Work",
			"error": "We couldn't load this photo right now. Please try again later.",
		})
		return
	}

	prev, next := view.Neighbors(index, len(items))
	current := items[index]

	a.renderHTML(c, http.StatusOK, "gallery_photo.html", gin.H{
		"title":    current.Title,
		"item":     galleryItemView{GalleryImage: current, CategoryLabel: view.CategoryLabel(current.Category)},
		"prev":     items[prev],
		"next":     items[next],
		"position": index + 1,
		"total":    len(items),
	})
}

// ShowTestimonials renders published testimonials; hidden while the feature flag is off.
func (a *API) ShowTestimonials(c *gin.Context) {
	site := a.siteSettings(c)
	if !site.Settings.TestimonialsEnabled {
		a.NotFound(c)
		return
	}

	items, err := a.testimonials.ListPublished()
	if err != nil {
		a.logger.Error("list testimonials failed", zap.Error(err))
		a.renderHTML(c, http.StatusInternalServerError, "testimonials.html", gin.H{
			"title": "What Our Customers Say",
			"error": "We couldn't load testimonials right now. Please try again later.",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "testimonials.html", gin.H{
		"title":       "What Our Customers Say",
		"description": "Reviews from homeowners and builders we've worked with.",
		"items":       items,
	})
}

// NotFound renders the 404 page.
func (a *API) NotFound(c *gin.Context) {
	if isAPIRequest(c) {
		respondError(c, http.StatusNotFound, "Not found")
		return
	}
	a.renderHTML(c, http.StatusNotFound, "not_found.html", gin.H{
		"title": "Page Not Found",
	})
}
