package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wheelx-dev/wheelx/internal/api"
)

// PartnerInquiry is the partner contact form.
type PartnerInquiry struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Company  string `json:"company" validate:"required"`
	Category string `json:"category" validate:"required"`
	Message  string `json:"message" validate:"required"`
}

func (in *PartnerInquiry) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Company = strings.TrimSpace(in.Company)
	in.Category = strings.TrimSpace(in.Category)
	in.Message = strings.TrimSpace(in.Message)
}

// contactPartner validates the form and mails it to the partnerships team.
func (s *Server) contactPartner(c *gin.Context) {
	var in PartnerInquiry
	if err := c.ShouldBindJSON(&in); err != nil {
		s.metrics.Inquiries.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}
	in.trim()

	if err := api.Validate(in); err != nil {
		s.metrics.Inquiries.WithLabelValues("invalid").Inc()
		message := "All fields are required"
		var validationErr *api.ValidationError
		if errors.As(err, &validationErr) && len(validationErr.Fields) == 1 && in.Email != "" {
			if _, ok := validationErr.Fields["email"]; ok {
				message = "Invalid email address"
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
		return
	}

	if err := s.mailer.SendInquiry(c.Request.Context(), in); err != nil {
		s.metrics.Inquiries.WithLabelValues("failed").Inc()
		s.logger.Error().Err(err).Str("company", in.Company).Msg("Failed to send partner inquiry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email"})
		return
	}

	s.metrics.Inquiries.WithLabelValues("sent").Inc()
	s.logger.Info().Str("company", in.Company).Str("category", in.Category).Msg("Partner inquiry sent")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email sent successfully"})
}
