package leads

import (
	"time"
)

// Source is stamped on every lead produced by the parser.
const Source = "Green-Acres"

// Category is the normalized property category.
type Category string

const (
	CategoryNone      Category = ""
	CategoryVilla     Category = "villa"
	CategoryTownhouse Category = "townhouse"
	CategoryApartment Category = "apartment"
)

// Stage names the classification step that decided a lead's category.
type Stage string

const (
	StageNone       Stage = ""
	StageStructural Stage = "structural"
	StageKeyword    Stage = "keyword"
	StageRemote     Stage = "remote"
)

// Lead is the structured record extracted from one inquiry notification.
// Empty strings mean the field was not extracted.
type Lead struct {
	ContactName string `json:"contact_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Country     string `json:"country,omitempty"`

	City     string `json:"city,omitempty"`
	AreaName string `json:"area_name,omitempty"`

	PropertyType       string   `json:"property_type,omitempty"`
	TransactionType    string   `json:"transaction_type,omitempty"`
	PropertyCategory   Category `json:"property_category,omitempty"`
	CategorySource     Stage    `json:"category_source,omitempty"`
	PropertyTitle      string   `json:"property_title,omitempty"`
	PropertyRef        string   `json:"property_ref,omitempty"`
	PropertyURL        string   `json:"property_url,omitempty"`
	ProfileAnalysisURL string   `json:"profile_analysis_url,omitempty"`
	Developer          string   `json:"developer,omitempty"`

	AreaM2    string `json:"area_m2,omitempty"`
	SurfaceM2 string `json:"surface_m2,omitempty"`
	Rooms     string `json:"rooms,omitempty"`
	Bedrooms  string `json:"bedrooms,omitempty"`
	// HasLand is nil when the structured property line was not found.
	HasLand *bool `json:"has_land,omitempty"`

	Price   string `json:"price,omitempty"`
	Message string `json:"message,omitempty"`

	Source     string    `json:"source"`
	ReceivedAt time.Time `json:"received_at"`
}

// Land reports the has_land signal, treating a missing signal as false.
func (l *Lead) Land() bool {
	return l != nil && l.HasLand != nil && *l.HasLand
}

// Summary is the subset of a lead echoed back to webhook callers.
type Summary struct {
	ContactName      string   `json:"contact_name,omitempty"`
	Phone            string   `json:"phone,omitempty"`
	Email            string   `json:"email,omitempty"`
	City             string   `json:"city,omitempty"`
	PropertyCategory Category `json:"property_category,omitempty"`
	Price            string   `json:"price,omitempty"`
}

// Summarize returns the caller-facing subset of the lead.
func (l *Lead) Summarize() Summary {
	return Summary{
		ContactName:      l.ContactName,
		Phone:            l.Phone,
		Email:            l.Email,
		City:             l.City,
		PropertyCategory: l.PropertyCategory,
		Price:            l.Price,
	}
}

// Transport identifies how a notification reached the service.
type Transport string

const (
	TransportWebhook Transport = "webhook"
	TransportEmail   Transport = "email"
)

// Inbound is the transport-agnostic notification handed to the Service.
type Inbound struct {
	Transport Transport
	Subject   string
	HTML      string
	From      string
}
