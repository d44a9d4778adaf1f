package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// GarageInput is the body of garage create and update calls.
type GarageInput struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	Address     string   `json:"address" validate:"required"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Phone       string   `json:"phone,omitempty"`
	Email       string   `json:"email,omitempty" validate:"omitempty,email"`
	Website     string   `json:"website,omitempty"`
	Services    []string `json:"services,omitempty"`
	Country     string   `json:"country,omitempty"`
}

// InsuranceApproval is the policy data recorded when a request is approved.
type InsuranceApproval struct {
	Provider        string   `json:"provider" yaml:"provider" validate:"required"`
	PolicyNumber    string   `json:"policyNumber" yaml:"policyNumber" validate:"required"`
	ActualStartDate string   `json:"actualStartDate" yaml:"actualStartDate" validate:"required,datetime=2006-01-02"`
	ExpirationDate  string   `json:"expirationDate" yaml:"expirationDate" validate:"required,datetime=2006-01-02"`
	Documents       []string `json:"documents" yaml:"documents,omitempty"`
	AdminNotes      string   `json:"adminNotes,omitempty" yaml:"adminNotes,omitempty"`
}

type rejection struct {
	Reason string `json:"rejectionReason" validate:"required,min=10"`
}

// Broadcast is a push notification sent to every user, or to one country.
type Broadcast struct {
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func (c *Client) action(resource, method, path string, body any) endpoint {
	return endpoint{resource: resource, method: method, path: path, body: body}
}

// checked validates input before running ep. Invalid input never reaches the API.
func (c *Client) checked(ctx context.Context, ep endpoint, input any) bool {
	if err := Validate(input); err != nil {
		c.metrics.observe(ep.resource, outcome(err))
		c.logger.Warn().Err(err).Str("resource", ep.resource).Msg("Rejected invalid input")
		return false
	}
	return c.mutate(ctx, ep)
}

func idPath(format string, id string) string {
	return fmt.Sprintf(format, url.PathEscape(id))
}

func (c *Client) BanUser(ctx context.Context, id string) bool {
	return c.mutate(ctx, c.action("ban_user", http.MethodPatch, idPath("/users/%s/ban", id), nil))
}

func (c *Client) UnbanUser(ctx context.Context, id string) bool {
	return c.mutate(ctx, c.action("unban_user", http.MethodPatch, idPath("/users/%s/unban", id), nil))
}

func (c *Client) CreateGarage(ctx context.Context, in GarageInput) bool {
	return c.checked(ctx, c.action("create_garage", http.MethodPost, "/garages", in), in)
}

// UpdateGarage replaces a garage's editable fields. The API takes POST here.
func (c *Client) UpdateGarage(ctx context.Context, id string, in GarageInput) bool {
	return c.checked(ctx, c.action("update_garage", http.MethodPost, idPath("/garages/%s", id), in), in)
}

func (c *Client) DeleteGarage(ctx context.Context, id string) bool {
	return c.mutate(ctx, c.action("delete_garage", http.MethodPost, idPath("/garages/%s/delete", id), nil))
}

func (c *Client) DeletePost(ctx context.Context, id string) bool {
	return c.mutate(ctx, c.action("delete_post", http.MethodDelete, idPath("/posts/%s", id), nil))
}

func (c *Client) DeleteEvent(ctx context.Context, id string) bool {
	return c.mutate(ctx, c.action("delete_event", http.MethodDelete, idPath("/events/%s", id), nil))
}

func (c *Client) DeleteRoute(ctx context.Context, id string) bool {
	return c.mutate(ctx, c.action("delete_route", http.MethodDelete, idPath("/routes/%s", id), nil))
}

func (c *Client) StopActiveRide(ctx context.Context, id string) bool {
	return c.mutate(ctx, c.action("stop_active_ride", http.MethodPost, idPath("/active-rides/%s/stop", id), nil))
}

func (c *Client) MarkInsuranceProcessing(ctx context.Context, id string) bool {
	return c.mutate(ctx, c.action("process_insurance", http.MethodPatch, idPath("/insurance-requests/%s/process", id), nil))
}

func (c *Client) ApproveInsurance(ctx context.Context, id string, in InsuranceApproval) bool {
	if in.Documents == nil {
		in.Documents = []string{}
	}
	ep := c.action("approve_insurance", http.MethodPatch, idPath("/insurance-requests/%s/approve", id), in)
	return c.checked(ctx, ep, in)
}

// RejectInsurance rejects a request. The reason must be at least ten characters.
func (c *Client) RejectInsurance(ctx context.Context, id, reason string) bool {
	in := rejection{Reason: strings.TrimSpace(reason)}
	ep := c.action("reject_insurance", http.MethodPatch, idPath("/insurance-requests/%s/reject", id), in)
	return c.checked(ctx, ep, in)
}

// ActivateInsurance applies an approved policy to the motorcycle record.
func (c *Client) ActivateInsurance(ctx context.Context, id string) bool {
	return c.mutate(ctx, c.action("activate_insurance", http.MethodPatch, idPath("/insurance-requests/%s/activate", id), nil))
}

// UpdateCountryFeatures sets the given feature flags of one country. Keys
// outside Features are rejected.
func (c *Client) UpdateCountryFeatures(ctx context.Context, code string, features map[string]bool) bool {
	ep := c.action("update_country_features", http.MethodPatch, idPath("/countries/%s/features", strings.ToUpper(code)), features)

	var err error
	switch {
	case code == "":
		err = &ValidationError{Fields: map[string]string{"code": "The code field is required."}}
	case len(features) == 0:
		err = &ValidationError{Fields: map[string]string{"features": "The features field is required."}}
	default:
		for key := range features {
			if !IsFeature(key) {
				err = &ValidationError{Fields: map[string]string{key: fmt.Sprintf("Unknown feature %q.", key)}}
				break
			}
		}
	}
	if err != nil {
		c.metrics.observe(ep.resource, outcome(err))
		c.logger.Warn().Err(err).Str("resource", ep.resource).Msg("Rejected invalid input")
		return false
	}
	return c.mutate(ctx, ep)
}

// Broadcast notifies every user.
func (c *Client) Broadcast(ctx context.Context, title, message string) bool {
	in := Broadcast{Title: strings.TrimSpace(title), Message: strings.TrimSpace(message)}
	return c.checked(ctx, c.action("broadcast", http.MethodPost, "/notifications/broadcast", in), in)
}

// BroadcastToCountry notifies the users of one country.
func (c *Client) BroadcastToCountry(ctx context.Context, code, title, message string) bool {
	in := Broadcast{Title: strings.TrimSpace(title), Message: strings.TrimSpace(message)}
	ep := c.action("broadcast_country", http.MethodPost, idPath("/notifications/broadcast/country/%s", strings.ToUpper(code)), in)
	if code == "" {
		c.logger.Warn().Str("resource", ep.resource).Msg("Rejected broadcast without country")
		return false
	}
	return c.checked(ctx, ep, in)
}
