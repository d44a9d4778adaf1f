package api

// Identity carries the two id spellings the API uses.
type Identity struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	ObjectID string `json:"_id,omitempty" yaml:"_id,omitempty"`
}

// Key returns whichever id is set, preferring "id".
func (i Identity) Key() string {
	if i.ID != "" {
		return i.ID
	}
	return i.ObjectID
}

type UserStats struct {
	TotalRides    int     `json:"totalRides" yaml:"totalRides"`
	TotalDistance float64 `json:"totalDistance" yaml:"totalDistance"`
	TotalDuration float64 `json:"totalDuration" yaml:"totalDuration"`
	Followers     int     `json:"followers" yaml:"followers"`
	Following     int     `json:"following" yaml:"following"`
}

type User struct {
	Identity    `yaml:",inline"`
	Email       string     `json:"email" yaml:"email"`
	Username    string     `json:"username" yaml:"username"`
	DisplayName string     `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Avatar      string     `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Location    string     `json:"location,omitempty" yaml:"location,omitempty"`
	Country     string     `json:"country,omitempty" yaml:"country,omitempty"`
	Role        string     `json:"role,omitempty" yaml:"role,omitempty"`
	IsVerified  bool       `json:"isVerified" yaml:"isVerified"`
	IsBanned    bool       `json:"isBanned" yaml:"isBanned"`
	Stats       *UserStats `json:"stats,omitempty" yaml:"stats,omitempty"`
	CreatedAt   string     `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// Name is the label shown for a user.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

type Ride struct {
	Identity      `yaml:",inline"`
	Name          string  `json:"name" yaml:"name"`
	UserID        string  `json:"userId,omitempty" yaml:"userId,omitempty"`
	User          *User   `json:"user,omitempty" yaml:"user,omitempty"`
	Distance      float64 `json:"distance" yaml:"distance"`
	Duration      float64 `json:"duration" yaml:"duration"`
	AvgSpeed      float64 `json:"avgSpeed" yaml:"avgSpeed"`
	MaxSpeed      float64 `json:"maxSpeed" yaml:"maxSpeed"`
	StartLocation string  `json:"startLocation,omitempty" yaml:"startLocation,omitempty"`
	EndLocation   string  `json:"endLocation,omitempty" yaml:"endLocation,omitempty"`
	IsPublic      bool    `json:"isPublic" yaml:"isPublic"`
	CompletedAt   string  `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
	CreatedAt     string  `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

type RideParticipant struct {
	// the API spells this key "oderId"
	UserID    string  `json:"oderId" yaml:"userId"`
	Username  string  `json:"username" yaml:"username"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Speed     float64 `json:"speed" yaml:"speed"`
	Status    string  `json:"status" yaml:"status"`
}

type ActiveRide struct {
	Identity     `yaml:",inline"`
	Code         string            `json:"code" yaml:"code"`
	HostID       string            `json:"hostId,omitempty" yaml:"hostId,omitempty"`
	Host         *User             `json:"host,omitempty" yaml:"host,omitempty"`
	Participants []RideParticipant `json:"participants" yaml:"participants"`
	Status       string            `json:"status" yaml:"status"`
	CreatedAt    string            `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

type Group struct {
	Identity     `yaml:",inline"`
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	OwnerID      string `json:"ownerId,omitempty" yaml:"ownerId,omitempty"`
	MembersCount int    `json:"membersCount" yaml:"membersCount"`
	IsPublic     bool   `json:"isPublic" yaml:"isPublic"`
	Country      string `json:"country,omitempty" yaml:"country,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

type Garage struct {
	Identity     `yaml:",inline"`
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Address      string   `json:"address" yaml:"address"`
	Latitude     float64  `json:"latitude" yaml:"latitude"`
	Longitude    float64  `json:"longitude" yaml:"longitude"`
	Phone        string   `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email        string   `json:"email,omitempty" yaml:"email,omitempty"`
	Website      string   `json:"website,omitempty" yaml:"website,omitempty"`
	Services     []string `json:"services,omitempty" yaml:"services,omitempty"`
	Rating       float64  `json:"rating" yaml:"rating"`
	ReviewsCount int      `json:"reviewsCount" yaml:"reviewsCount"`
	IsVerified   bool     `json:"isVerified" yaml:"isVerified"`
	Country      string   `json:"country,omitempty" yaml:"country,omitempty"`
	CreatedAt    string   `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

type Event struct {
	Identity          `yaml:",inline"`
	Title             string `json:"title" yaml:"title"`
	Description       string `json:"description,omitempty" yaml:"description,omitempty"`
	OrganizerID       string `json:"organizerId,omitempty" yaml:"organizerId,omitempty"`
	Organizer         *User  `json:"organizer,omitempty" yaml:"organizer,omitempty"`
	StartDate         string `json:"startDate" yaml:"startDate"`
	EndDate           string `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Location          string `json:"location" yaml:"location"`
	ParticipantsCount int    `json:"participantsCount" yaml:"participantsCount"`
	MaxParticipants   int    `json:"maxParticipants,omitempty" yaml:"maxParticipants,omitempty"`
	IsPublic          bool   `json:"isPublic" yaml:"isPublic"`
	Country           string `json:"country,omitempty" yaml:"country,omitempty"`
	CreatedAt         string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

type Report struct {
	Identity    `yaml:",inline"`
	Type        string `json:"type" yaml:"type"`
	TargetID    string `json:"targetId" yaml:"targetId"`
	Reason      string `json:"reason" yaml:"reason"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	ReporterID  string `json:"reporterId,omitempty" yaml:"reporterId,omitempty"`
	Reporter    *User  `json:"reporter,omitempty" yaml:"reporter,omitempty"`
	Status      string `json:"status" yaml:"status"`
	CreatedAt   string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

type Post struct {
	Identity      `yaml:",inline"`
	Content       string   `json:"content" yaml:"content"`
	Author        *User    `json:"author,omitempty" yaml:"author,omitempty"`
	Images        []string `json:"images,omitempty" yaml:"images,omitempty"`
	LikesCount    int      `json:"likesCount" yaml:"likesCount"`
	CommentsCount int      `json:"commentsCount" yaml:"commentsCount"`
	Country       string   `json:"country,omitempty" yaml:"country,omitempty"`
	CreatedAt     string   `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

type Route struct {
	Identity    `yaml:",inline"`
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type,omitempty" yaml:"type,omitempty"`
	Distance    float64  `json:"distance" yaml:"distance"`
	Difficulty  string   `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Rating      float64  `json:"rating" yaml:"rating"`
	ViewCount   int      `json:"viewCount" yaml:"viewCount"`
	FavoritedBy []string `json:"favoritedBy,omitempty" yaml:"favoritedBy,omitempty"`
	CreatedBy   *User    `json:"createdBy,omitempty" yaml:"createdBy,omitempty"`
	Country     string   `json:"country,omitempty" yaml:"country,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// Insurance request statuses.
const (
	InsurancePending    = "pending"
	InsuranceProcessing = "processing"
	InsuranceApproved   = "approved"
	InsuranceRejected   = "rejected"
	InsuranceActive     = "active"
)

type InsuranceRequestData struct {
	CoverageType string `json:"coverageType" yaml:"coverageType"`
	StartDate    string `json:"startDate" yaml:"startDate"`
	Duration     int    `json:"duration" yaml:"duration"`
}

type InsuranceRequest struct {
	Identity `yaml:",inline"`
	// UserID and MotorcycleID come back populated
	UserID struct {
		Username string `json:"username" yaml:"username"`
		Email    string `json:"email" yaml:"email"`
	} `json:"userId" yaml:"user"`
	MotorcycleID struct {
		Brand string `json:"brand" yaml:"brand"`
		Model string `json:"model" yaml:"model"`
		Year  int    `json:"year" yaml:"year"`
	} `json:"motorcycleId" yaml:"motorcycle"`
	Status          string               `json:"status" yaml:"status"`
	RequestedAt     string               `json:"requestedAt,omitempty" yaml:"requestedAt,omitempty"`
	RequestData     InsuranceRequestData `json:"requestData" yaml:"requestData"`
	InsuranceData   *InsuranceApproval   `json:"insuranceData,omitempty" yaml:"insuranceData,omitempty"`
	RejectionReason string               `json:"rejectionReason,omitempty" yaml:"rejectionReason,omitempty"`
}

// CountryConfig is the per-country feature configuration.
type CountryConfig struct {
	Identity `yaml:",inline"`
	Code     string          `json:"code" yaml:"code"`
	Name     string          `json:"name" yaml:"name"`
	Flag     string          `json:"flag,omitempty" yaml:"flag,omitempty"`
	IsActive bool            `json:"isActive" yaml:"isActive"`
	Features map[string]bool `json:"features" yaml:"features"`
}

// CountryInfo is a country known to the API.
type CountryInfo struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
	Flag string `json:"flag,omitempty" yaml:"flag,omitempty"`
}

type AdminStats struct {
	Users struct {
		Total        int `json:"total" yaml:"total"`
		Active       int `json:"active" yaml:"active"`
		Banned       int `json:"banned" yaml:"banned"`
		NewThisMonth int `json:"newThisMonth" yaml:"newThisMonth"`
	} `json:"users" yaml:"users"`
	Rides struct {
		Total           int     `json:"total" yaml:"total"`
		TotalDistance   float64 `json:"totalDistance" yaml:"totalDistance"`
		AverageDistance float64 `json:"averageDistance" yaml:"averageDistance"`
		ThisMonth       int     `json:"thisMonth" yaml:"thisMonth"`
	} `json:"rides" yaml:"rides"`
	Groups struct {
		Total   int `json:"total" yaml:"total"`
		Public  int `json:"public" yaml:"public"`
		Private int `json:"private" yaml:"private"`
	} `json:"groups" yaml:"groups"`
	Reports struct {
		Pending   int `json:"pending" yaml:"pending"`
		Resolved  int `json:"resolved" yaml:"resolved"`
		ThisMonth int `json:"thisMonth" yaml:"thisMonth"`
	} `json:"reports" yaml:"reports"`
}

// Features lists the country feature keys with their label and group.
var Features = []Feature{
	{"mobileMoney", "Mobile Money", "Payment"},
	{"orangeMoney", "Orange Money", "Payment"},
	{"wave", "Wave", "Payment"},
	{"stripe", "Stripe", "Payment"},
	{"applePay", "Apple Pay", "Payment"},
	{"googlePay", "Google Pay", "Payment"},
	{"fuelPrices", "Fuel Prices", "App"},
	{"garages", "Garages", "App"},
	{"insurance", "Insurance", "App"},
	{"marketplace", "Marketplace", "App"},
	{"events", "Events", "App"},
	{"groups", "Groups", "App"},
	{"routes", "Routes", "App"},
	{"leaderboard", "Leaderboard", "App"},
	{"premium", "Premium", "App"},
	{"territoryConquest", "Territory Conquest", "Social"},
	{"clans", "Clans", "Social"},
}

type Feature struct {
	Key   string
	Label string
	Group string
}

// IsFeature reports whether key is a known country feature.
func IsFeature(key string) bool {
	for _, f := range Features {
		if f.Key == key {
			return true
		}
	}
	return false
}
