package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) list(resource, path string, p ListParams) endpoint {
	p = p.normalized()
	return endpoint{
		resource: resource,
		method:   http.MethodGet,
		path:     path,
		query:    p.query(),
		country:  p.Country,
	}
}

// Users lists users. On failure it returns an empty page.
func (c *Client) Users(ctx context.Context, p ListParams) Page[User] {
	return request(ctx, c, c.list("users", "/users", p), DecodePage[User], EmptyPage[User]())
}

// Rides lists completed rides.
func (c *Client) Rides(ctx context.Context, p ListParams) Page[Ride] {
	return request(ctx, c, c.list("rides", "/rides/all", p), DecodePage[Ride], EmptyPage[Ride]())
}

func (c *Client) Garages(ctx context.Context, p ListParams) Page[Garage] {
	return request(ctx, c, c.list("garages", "/garages", p), DecodePage[Garage], EmptyPage[Garage]())
}

func (c *Client) Groups(ctx context.Context, p ListParams) Page[Group] {
	return request(ctx, c, c.list("groups", "/groups", p), DecodePage[Group], EmptyPage[Group]())
}

func (c *Client) Posts(ctx context.Context, p ListParams) Page[Post] {
	return request(ctx, c, c.list("posts", "/posts", p), DecodePage[Post], EmptyPage[Post]())
}

func (c *Client) Events(ctx context.Context, p ListParams) Page[Event] {
	return request(ctx, c, c.list("events", "/events", p), DecodePage[Event], EmptyPage[Event]())
}

func (c *Client) Routes(ctx context.Context, p ListParams) Page[Route] {
	return request(ctx, c, c.list("routes", "/routes", p), DecodePage[Route], EmptyPage[Route]())
}

// Reports lists moderation reports. The endpoint takes no search term.
func (c *Client) Reports(ctx context.Context, p ListParams) Page[Report] {
	p.Search = ""
	return request(ctx, c, c.list("reports", "/reports", p), DecodePage[Report], EmptyPage[Report]())
}

// InsuranceRequests lists insurance requests, optionally by status.
func (c *Client) InsuranceRequests(ctx context.Context, page, limit int, status string) Page[InsuranceRequest] {
	p := ListParams{Page: page, Limit: limit}.normalized()
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	if status != "" {
		q.Set("status", status)
	}
	ep := endpoint{resource: "insurance_requests", method: http.MethodGet, path: "/insurance-requests", query: q}
	return request(ctx, c, ep, DecodePage[InsuranceRequest], EmptyPage[InsuranceRequest]())
}

// DashboardStats returns the admin counters, or nil on failure.
func (c *Client) DashboardStats(ctx context.Context, country string) *AdminStats {
	ep := endpoint{
		resource: "stats",
		method:   http.MethodGet,
		path:     "/admin/stats",
		query:    countryQuery(country),
		country:  country,
	}
	return request(ctx, c, ep, DecodeOne[*AdminStats], nil)
}

// ActiveRides returns the live rides, or an empty slice on failure.
func (c *Client) ActiveRides(ctx context.Context, country string) []ActiveRide {
	ep := endpoint{
		resource: "active_rides",
		method:   http.MethodGet,
		path:     "/active-rides/all/active",
		query:    countryQuery(country),
		country:  country,
	}
	return request(ctx, c, ep, DecodeList[ActiveRide], []ActiveRide{})
}

func (c *Client) Countries(ctx context.Context) []CountryInfo {
	ep := endpoint{resource: "countries", method: http.MethodGet, path: "/countries"}
	return request(ctx, c, ep, DecodeList[CountryInfo], []CountryInfo{})
}

func (c *Client) CountryConfigs(ctx context.Context) []CountryConfig {
	ep := endpoint{resource: "country_configs", method: http.MethodGet, path: "/countries/config"}
	return request(ctx, c, ep, DecodeList[CountryConfig], []CountryConfig{})
}

// CurrentUser returns the signed-in user's profile, or nil on failure.
func (c *Client) CurrentUser(ctx context.Context) *User {
	ep := endpoint{resource: "current_user", method: http.MethodGet, path: "/users/me"}
	return request(ctx, c, ep, DecodeOne[*User], nil)
}

// ProfileCountry returns the signed-in user's country. It adapts CurrentUser
// to country.ProfileFunc.
func (c *Client) ProfileCountry(ctx context.Context) (string, error) {
	u := c.CurrentUser(ctx)
	if u == nil {
		return "", ErrNoProfile
	}
	return u.Country, nil
}
