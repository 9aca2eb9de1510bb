package forms

import (
	"strings"

	"lagospaces/server/config"
)

// ListingBasics is step 1 of the post-property form
type ListingBasics struct {
	Title        string `json:"title" validate:"required,max=120"`
	Description  string `json:"description" validate:"required,max=2000"`
	PropertyType string `json:"property_type" validate:"required"`
	Location     string `json:"location" validate:"required"`
}

var basicsMessages = messages{
	"title":         "Please enter a property title",
	"title.max":     "Title must be at most 120 characters",
	"description":   "Please describe the property",
	"property_type": "Please select a property type",
	"location":      "Please enter the property location",
}

func (f *ListingBasics) Validate() error {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Location = strings.TrimSpace(f.Location)

	errs := check(f, basicsMessages)
	if _, ok := errs["property_type"]; !ok && !config.IsPropertyType(f.PropertyType) {
		errs = withError(errs, "property_type", "Please select a property type")
	}
	return merge(errs)
}

// ListingDetails is step 2. Bedroom and bathroom counts are capped at the "7+" and "6+" options.
type ListingDetails struct {
	Bedrooms  int      `json:"bedrooms" validate:"min=1,max=7"`
	Bathrooms int      `json:"bathrooms" validate:"min=1,max=6"`
	Size      string   `json:"size" validate:"max=40"`
	Price     int      `json:"price" validate:"gt=0"`
	Amenities []string `json:"amenities"`
}

var detailsMessages = messages{
	"bedrooms":  "Please select the number of bedrooms",
	"bathrooms": "Please select the number of bathrooms",
	"size":      "Size must be at most 40 characters",
	"price":     "Please enter the monthly rent",
}

func (f *ListingDetails) Validate() error {
	f.Size = strings.TrimSpace(f.Size)

	errs := check(f, detailsMessages)
	for _, a := range f.Amenities {
		if !config.IsAmenity(a) {
			errs = withError(errs, "amenities", "Unknown amenity: "+a)
			break
		}
	}
	return merge(errs)
}
