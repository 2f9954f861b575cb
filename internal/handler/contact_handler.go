package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hahnmechanical/site/internal/service"
	"go.uber.org/zap"
)

const defaultInquiryService = "General Inquiry"

type contactForm struct {
	Name    string
	Email   string
	Phone   string
	Message string
	Service string
}

func readContactForm(c *gin.Context) contactForm {
	return contactForm{
		Name:    strings.TrimSpace(c.PostForm("name")),
		Email:   strings.TrimSpace(c.PostForm("email")),
		Phone:   strings.TrimSpace(c.PostForm("phone")),
		Message: strings.TrimSpace(c.PostForm("message")),
		Service: strings.TrimSpace(c.PostForm("service")),
	}
}

// ShowContact renders the contact form.
func (a *API) ShowContact(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "contact.html", gin.H{
		"title": "Contact Us",
		"form":  contactForm{},
	})
}

// SubmitContact stores a contact message and shows the confirmation.
func (a *API) SubmitContact(c *gin.Context) {
	form := readContactForm(c)

	_, err := a.contacts.Submit(c.Request.Context(), service.ContactInput{
		Name:    form.Name,
		Email:   form.Email,
		Phone:   form.Phone,
		Message: form.Message,
	})
	if err != nil {
		status, message := contactErrorResponse(err)
		if status == http.StatusInternalServerError {
			a.logger.Error("store contact submission failed", zap.Error(err))
		}
		a.renderHTML(c, status, "contact.html", gin.H{
			"title": "Contact Us",
			"form":  form,
			"error": message,
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "contact.html", gin.H{
		"title":     "Contact Us",
		"submitted": true,
	})
}

// ShowServiceInquiry renders the inquiry form preset to ?service=.
func (a *API) ShowServiceInquiry(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "service_inquiry.html", gin.H{
		"title": "Request This Service",
		"form":  contactForm{Service: strings.TrimSpace(c.Query("service"))},
	})
}

// SubmitServiceInquiry stores the inquiry and notifies the business inbox.
func (a *API) SubmitServiceInquiry(c *gin.Context) {
	form := readContactForm(c)
	serviceName := form.Service
	if serviceName == "" {
		serviceName = defaultInquiryService
	}

	submission, err := a.contacts.Submit(c.Request.Context(), service.ContactInput{
		Name:        form.Name,
		Email:       form.Email,
		Phone:       form.Phone,
		Message:     form.Message,
		ServiceType: serviceName,
	})
	if err != nil && submission == nil {
		status, message := contactErrorResponse(err)
		if status == http.StatusInternalServerError {
			a.logger.Error("store service inquiry failed", zap.Error(err))
		}
		a.renderHTML(c, status, "service_inquiry.html", gin.H{
			"title": "Request This Service",
			"form":  form,
			"error": message,
		})
		return
	}
	if err != nil {
		// 记录已保存，通知邮件失败只记日志
		a.logger.Warn("inquiry stored but notification failed", zap.Uint("submission_id", submission.ID), zap.Error(err))
	}

	a.renderHTML(c, http.StatusOK, "service_inquiry.html", gin.H{
		"title":     "Request This Service",
		"form":      contactForm{Service: form.Service},
		"submitted": true,
	})
}

func contactErrorResponse(err error) (int, string) {
	if errors.Is(err, service.ErrContactInvalidInput) {
		return http.StatusBadRequest, contactValidationMessage(err)
	}
	return http.StatusInternalServerError, "Something went wrong sending your message. Please try again or give us a call."
}

func contactValidationMessage(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx >= 0 && idx+2 < len(msg) {
		detail := msg[idx+2:]
		return strings.ToUpper(detail[:1]) + detail[1:] + "."
	}
	return "Please fill in all required fields."
}
