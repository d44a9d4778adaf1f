package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wheelx-dev/wheelx/internal/api"
	"github.com/wheelx-dev/wheelx/internal/country"
	"github.com/wheelx-dev/wheelx/internal/session"
)

// upstream builds an API client bound to the caller's cookies. An upstream
// 401 clears them and records the login target on the returned navigator.
func (s *Server) upstream(c *gin.Context) (*api.Client, *gatewayNavigator) {
	store := session.NewCookieStore(c.Writer, c.Request, s.config.HTTP.SecureCookies)
	nav := &gatewayNavigator{location: screenURL(c.Request.URL)}

	client := api.New(s.config.API.URL, store,
		api.WithHTTPClient(s.httpClient),
		api.WithNavigator(nav),
		api.WithLogger(s.logger.With().Str("path", c.Request.URL.Path).Logger()),
		api.WithMetrics(s.apiMetrics),
	)
	return client, nav
}

// fetchFunc loads the data of one screen.
type fetchFunc func(c *gin.Context, client *api.Client) any

// read serves the result of fetch as JSON. Fetches never fail; they answer
// their fallback.
func (s *Server) read(fetch fetchFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, nav := s.upstream(c)
		data := fetch(c, client)
		if nav.respond(c) {
			return
		}
		c.JSON(http.StatusOK, data)
	}
}

// actionFunc runs one mutation. An error means the request itself was bad.
type actionFunc func(c *gin.Context, client *api.Client) (bool, error)

// mutate answers {"success": bool}, or 400 when the body cannot be read.
func (s *Server) mutate(action actionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, nav := s.upstream(c)
		ok, err := action(c, client)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if nav.respond(c) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": ok})
	}
}

// activeCountry resolves the filter from the request query, falling back
// to the signed-in user's country.
func activeCountry(c *gin.Context, client *api.Client) string {
	filter := country.NewFilter("", client.ProfileCountry)
	return filter.Resolve(c.Request.Context(), c.Request.URL.Query())
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

func listParams(c *gin.Context, client *api.Client) api.ListParams {
	return api.ListParams{
		Page:    queryInt(c, "page"),
		Limit:   queryInt(c, "limit"),
		Search:  c.Query("search"),
		Country: activeCountry(c, client),
	}
}

// listOf adapts a paginated client method such as (*api.Client).Users.
func listOf[T any](list func(*api.Client, context.Context, api.ListParams) api.Page[T]) fetchFunc {
	return func(c *gin.Context, client *api.Client) any {
		return list(client, c.Request.Context(), listParams(c, client))
	}
}

func insuranceRequests(c *gin.Context, client *api.Client) any {
	return client.InsuranceRequests(c.Request.Context(), queryInt(c, "page"), queryInt(c, "limit"), c.Query("status"))
}

func dashboardStats(c *gin.Context, client *api.Client) any {
	return client.DashboardStats(c.Request.Context(), activeCountry(c, client))
}

func activeRides(c *gin.Context, client *api.Client) any {
	return client.ActiveRides(c.Request.Context(), activeCountry(c, client))
}

func countries(c *gin.Context, client *api.Client) any {
	return client.Countries(c.Request.Context())
}

func countryConfigs(c *gin.Context, client *api.Client) any {
	return client.CountryConfigs(c.Request.Context())
}

func currentUser(c *gin.Context, client *api.Client) any {
	return client.CurrentUser(c.Request.Context())
}

// byID adapts a client method that acts on the :id path parameter.
func byID(action func(*api.Client, context.Context, string) bool) actionFunc {
	return func(c *gin.Context, client *api.Client) (bool, error) {
		return action(client, c.Request.Context(), c.Param("id")), nil
	}
}

func createGarage(c *gin.Context, client *api.Client) (bool, error) {
	var in api.GarageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		return false, err
	}
	return client.CreateGarage(c.Request.Context(), in), nil
}

func updateGarage(c *gin.Context, client *api.Client) (bool, error) {
	var in api.GarageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		return false, err
	}
	return client.UpdateGarage(c.Request.Context(), c.Param("id"), in), nil
}

func approveInsurance(c *gin.Context, client *api.Client) (bool, error) {
	var in api.InsuranceApproval
	if err := c.ShouldBindJSON(&in); err != nil {
		return false, err
	}
	return client.ApproveInsurance(c.Request.Context(), c.Param("id"), in), nil
}

func rejectInsurance(c *gin.Context, client *api.Client) (bool, error) {
	var in struct {
		Reason string `json:"rejectionReason"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		return false, err
	}
	return client.RejectInsurance(c.Request.Context(), c.Param("id"), in.Reason), nil
}

func updateCountryFeatures(c *gin.Context, client *api.Client) (bool, error) {
	var features map[string]bool
	if err := c.ShouldBindJSON(&features); err != nil {
		return false, err
	}
	return client.UpdateCountryFeatures(c.Request.Context(), c.Param("code"), features), nil
}

// broadcast notifies everyone, or one country when "country" is set.
func broadcast(c *gin.Context, client *api.Client) (bool, error) {
	var in struct {
		Title   string `json:"title"`
		Message string `json:"message"`
		Country string `json:"country"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		return false, err
	}
	if code := country.Normalize(in.Country); code != "" {
		return client.BroadcastToCountry(c.Request.Context(), code, in.Title, in.Message), nil
	}
	return client.Broadcast(c.Request.Context(), in.Title, in.Message), nil
}
