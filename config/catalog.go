package config

import "strings"

// Location is a searchable neighbourhood with its map centre
type Location struct {
	Name   string    `json:"name"`
	City   string    `json:"city"`
	Center []float64 `json:"center"`
}

// PriceRange is an inclusive monthly rent bracket
type PriceRange struct {
	Min       int    `json:"min"`
	Max       int    `json:"max,omitempty"`
	OpenEnded bool   `json:"open_ended,omitempty"`
	Label     string `json:"label"`
}

// USSDBank is a bank that can generate a USSD payment code
type USSDBank struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Shortcode string `json:"shortcode"`
}

const Currency = "₦"

var SupportedLocations = []Location{
	{Name: "Victoria Island", City: "Lagos", Center: []float64{6.4281, 3.4219}},
	{Name: "Lekki Phase 1", City: "Lagos", Center: []float64{6.4478, 3.4723}},
	{Name: "Ikoyi", City: "Lagos", Center: []float64{6.4541, 3.4347}},
	{Name: "Ikeja GRA", City: "Lagos", Center: []float64{6.5833, 3.3500}},
	{Name: "Yaba", City: "Lagos", Center: []float64{6.5095, 3.3711}},
	{Name: "Surulere", City: "Lagos", Center: []float64{6.4926, 3.3490}},
	{Name: "Ajah", City: "Lagos", Center: []float64{6.4698, 3.5852}},
	{Name: "Gbagada", City: "Lagos", Center: []float64{6.5531, 3.3873}},
	{Name: "Maryland", City: "Lagos", Center: []float64{6.5706, 3.3665}},
	{Name: "Magodo", City: "Lagos", Center: []float64{6.6167, 3.3833}},
}

var PriceRanges = []PriceRange{
	{Min: 0, Max: 200000, Label: "Under ₦200,000"},
	{Min: 200000, Max: 350000, Label: "₦200,000 - ₦350,000"},
	{Min: 350000, Max: 500000, Label: "₦350,000 - ₦500,000"},
	{Min: 500000, Max: 750000, Label: "₦500,000 - ₦750,000"},
	{Min: 750000, Max: 1000000, Label: "₦750,000 - ₦1,000,000"},
	{Min: 1000000, OpenEnded: true, Label: "Above ₦1,000,000"},
}

var PropertyTypes = []string{
	"Apartment",
	"House",
	"Studio",
	"Duplex",
	"Bungalow",
	"Penthouse",
	"Terrace",
}

var Amenities = []string{
	"Water",
	"Electricity",
	"Internet",
	"Air Conditioning",
	"Furnished",
	"Parking Space",
	"Security",
	"Swimming Pool",
	"Gym",
	"CCTV",
}

var USSDBanks = []USSDBank{
	{Code: "gtb", Name: "GTBank", Shortcode: "737"},
	{Code: "firstbank", Name: "First Bank", Shortcode: "894"},
	{Code: "uba", Name: "UBA", Shortcode: "919"},
	{Code: "zenith", Name: "Zenith Bank", Shortcode: "966"},
	{Code: "access", Name: "Access Bank", Shortcode: "901"},
}

// LocationNames returns the names of all searchable locations
func LocationNames() []string {
	names := make([]string, len(SupportedLocations))
	for i, loc := range SupportedLocations {
		names[i] = loc.Name
	}
	return names
}

// LocationByName finds a location case-insensitively
func LocationByName(name string) *Location {
	for _, loc := range SupportedLocations {
		if strings.EqualFold(loc.Name, strings.TrimSpace(name)) {
			return &loc
		}
	}
	return nil
}

// PriceRangeAt returns the bracket at index i, or nil when i is out of range
func PriceRangeAt(i int) *PriceRange {
	if i < 0 || i >= len(PriceRanges) {
		return nil
	}
	r := PriceRanges[i]
	return &r
}

// Contains reports whether price falls inside the bracket, both ends inclusive
func (r PriceRange) Contains(price int) bool {
	return price >= r.Min && (r.OpenEnded || price <= r.Max)
}

func IsPropertyType(t string) bool {
	return containsFold(PropertyTypes, t)
}

func IsAmenity(a string) bool {
	return containsFold(Amenities, a)
}

func IsUSSDBank(code string) bool {
	return USSDBankByCode(code) != nil
}

func USSDBankByCode(code string) *USSDBank {
	for _, b := range USSDBanks {
		if b.Code == code {
			bank := b
			return &bank
		}
	}
	return nil
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
