package crm

import (
	"strconv"
	"strings"

	"github.com/wolfman30/property-lead-bridge/internal/leads"
)

// DefaultLeadSource tags every lead created by this bridge.
const DefaultLeadSource = "greenAcres"

const unknownName = "Unknown"

// Payload is the flat lead record the CRM accepts. Empty fields are left
// out of the JSON body.
type Payload struct {
	Name       string  `json:"name"`
	Phone      string  `json:"phone,omitempty"`
	Email      string  `json:"email,omitempty"`
	Country    string  `json:"country,omitempty"`
	Emirate    string  `json:"emirate,omitempty"`
	Location   string  `json:"location,omitempty"`
	Developer  string  `json:"developer,omitempty"`
	Category   string  `json:"category,omitempty"`
	Beds       string  `json:"beds,omitempty"`
	BudgetMin  float64 `json:"budget_min,omitempty"`
	LeadSource string  `json:"lead_source"`
	Notes      string  `json:"notes,omitempty"`
}

// BuildPayload maps a lead onto the CRM schema.
func BuildPayload(lead *leads.Lead, leadSource string) Payload {
	if leadSource == "" {
		leadSource = DefaultLeadSource
	}
	p := Payload{
		Name:       lead.ContactName,
		Phone:      lead.Phone,
		Email:      lead.Email,
		Country:    lead.Country,
		Emirate:    lead.City,
		Location:   lead.AreaName,
		Developer:  lead.Developer,
		Category:   strings.ToLower(string(lead.PropertyCategory)),
		Beds:       lead.Bedrooms,
		LeadSource: leadSource,
		Notes:      buildNotes(lead),
	}
	if p.Name == "" {
		p.Name = unknownName
	}
	if budget, ok := parseBudget(lead.Price); ok {
		p.BudgetMin = budget
	}
	return p
}

// parseBudget strips thousands separators; anything still non-numeric is
// dropped rather than sent as zero.
func parseBudget(price string) (float64, bool) {
	if price == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(price, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func buildNotes(lead *leads.Lead) string {
	labeled := []struct {
		label string
		value string
	}{
		{"Property: ", lead.PropertyTitle},
		{"URL: ", lead.PropertyURL},
		{"Ref: ", lead.PropertyRef},
		{"Type: ", lead.PropertyType},
		{"Transaction: ", lead.TransactionType},
	}

	var lines []string
	if lead.Message != "" {
		lines = append(lines, lead.Message)
	}
	for _, l := range labeled {
		if l.value != "" {
			lines = append(lines, l.label+l.value)
		}
	}
	if lead.SurfaceM2 != "" {
		lines = append(lines, "Surface: "+lead.SurfaceM2+" m²")
	}
	if lead.Rooms != "" {
		lines = append(lines, "Rooms: "+lead.Rooms)
	}
	return strings.Join(lines, "\n")
}
