package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hahnmechanical/site/internal/service"
)

type testimonialPayload struct {
	CustomerName string `json:"customer_name"`
	Text         string `json:"text"`
	Rating       *int   `json:"rating"`
	IsPublished  *bool  `json:"is_published"`
}

type testimonialPublishPayload struct {
	IsPublished *bool `json:"is_published"`
}

// ListTestimonials returns every testimonial, including hidden ones.
func (a *API) ListTestimonials(c *gin.Context) {
	items, err := a.testimonials.List(true)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load testimonials")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateTestimonial adds a testimonial.
func (a *API) CreateTestimonial(c *gin.Context) {
	var payload testimonialPayload
	if !bindJSON(c, &payload, "Invalid request body") {
		return
	}

	item, err := a.testimonials.Create(service.TestimonialInput{
		CustomerName: payload.CustomerName,
		Text:         payload.Text,
		Rating:       payload.Rating,
		IsPublished:  payload.IsPublished,
	})
	if err != nil {
		respondTestimonialError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Testimonial added", "item": item})
}

// UpdateTestimonialPublished toggles a testimonial's visibility.
func (a *API) UpdateTestimonialPublished(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid testimonial id")
		return
	}

	var payload testimonialPublishPayload
	if !bindJSON(c, &payload, "Invalid request body") {
		return
	}
	if payload.IsPublished == nil {
		respondError(c, http.StatusBadRequest, "is_published is required")
		return
	}

	item, err := a.testimonials.SetPublished(id, *payload.IsPublished)
	if err != nil {
		respondTestimonialError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Testimonial updated", "item": item})
}

// DeleteTestimonial removes a testimonial.
func (a *API) DeleteTestimonial(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid testimonial id")
		return
	}

	if err := a.testimonials.Delete(id); err != nil {
		respondTestimonialError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Testimonial deleted"})
}

func respondTestimonialError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTestimonialNotFound):
		respondError(c, http.StatusNotFound, "Testimonial not found")
	case errors.Is(err, service.ErrTestimonialRatingInvalid):
		respondError(c, http.StatusBadRequest, "Rating must be between 1 and 5")
	case errors.Is(err, service.ErrTestimonialInvalidInput):
		respondError(c, http.StatusBadRequest, "Customer name and testimonial text are required")
	default:
		respondError(c, http.StatusInternalServerError, "Failed to save testimonial")
	}
}
