// Package listing serves the public property catalogue shown on the landing
// page. The catalogue is static; only filtering happens at request time.
package listing

import "strings"

// Property is one rentable unit. Rent is monthly, Area in square feet.
type Property struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Location  string   `json:"location"`
	Rent      int      `json:"rent"`
	Bedrooms  int      `json:"bedrooms"`
	Bathrooms int      `json:"bathrooms"`
	Area      int      `json:"area"`
	Image     string   `json:"image"`
	Amenities []string `json:"amenities"`
	Available bool     `json:"available"`
}

// Filter narrows a search. Zero values do not filter.
type Filter struct {
	Location  string
	MinBudget int
	MaxBudget int
	Bedrooms  int
}

func (f Filter) matches(p Property) bool {
	if f.Location != "" && !strings.Contains(strings.ToLower(p.Location), strings.ToLower(f.Location)) {
		return false
	}
	if f.MinBudget > 0 && p.Rent < f.MinBudget {
		return false
	}
	if f.MaxBudget > 0 && p.Rent > f.MaxBudget {
		return false
	}
	if f.Bedrooms > 0 && p.Bedrooms != f.Bedrooms {
		return false
	}
	return true
}

// Catalog is an immutable set of properties.
type Catalog struct {
	properties []Property
}

// NewCatalog copies props into a new Catalog.
func NewCatalog(props []Property) *Catalog {
	return &Catalog{properties: append([]Property(nil), props...)}
}

// DefaultCatalog returns the catalogue shipped with the application.
func DefaultCatalog() *Catalog { return NewCatalog(seedProperties) }

// Search returns the properties matching f in catalogue order. The result
// is never nil.
func (c *Catalog) Search(f Filter) []Property {
	out := make([]Property, 0, len(c.properties))
	for _, p := range c.properties {
		if f.matches(p) {
			out = append(out, p)
		}
	}
	return out
}

var seedProperties = []Property{
	{ID: 1, Title: "Luxury 3BHK Apartment", Location: "Bangalore, Karnataka", Rent: 25000, Bedrooms: 3, Bathrooms: 2, Area: 1500,
		Image: "https://images.unsplash.com/photo-1522708323590-d24dbb6b0267?w=800", Amenities: []string{"AC", "Wi-Fi", "Parking", "Gym"}, Available: true},
	{ID: 2, Title: "Cozy 2BHK Villa", Location: "Mumbai, Maharashtra", Rent: 30000, Bedrooms: 2, Bathrooms: 2, Area: 1200,
		Image: "https://images.unsplash.com/photo-1512917774080-9991f1c4c750?w=800", Amenities: []string{"AC", "Wi-Fi", "Parking", "Garden"}, Available: true},
	{ID: 3, Title: "Modern 1BHK Flat", Location: "Pune, Maharashtra", Rent: 15000, Bedrooms: 1, Bathrooms: 1, Area: 650,
		Image: "https://images.unsplash.com/photo-1545324418-cc1a3fa10c00?w=800", Amenities: []string{"AC", "Wi-Fi", "Parking"}, Available: true},
	{ID: 4, Title: "Spacious 4BHK Penthouse", Location: "Delhi, NCR", Rent: 50000, Bedrooms: 4, Bathrooms: 3, Area: 2500,
		Image: "https://images.unsplash.com/photo-1600596542815-ffad4c1539a9?w=800", Amenities: []string{"AC", "Wi-Fi", "Parking", "Gym", "Pool"}, Available: true},
	{ID: 5, Title: "Affordable 2BHK Home", Location: "Hyderabad, Telangana", Rent: 18000, Bedrooms: 2, Bathrooms: 1, Area: 950,
		Image: "https://images.unsplash.com/photo-1570129477492-45c003edd2be?w=800", Amenities: []string{"Wi-Fi", "Parking"}, Available: true},
	{ID: 6, Title: "Elegant 3BHK House", Location: "Chennai, Tamil Nadu", Rent: 22000, Bedrooms: 3, Bathrooms: 2, Area: 1400,
		Image: "https://images.unsplash.com/photo-1600585154340-be6161a56a0c?w=800", Amenities: []string{"AC", "Wi-Fi", "Parking", "Garden"}, Available: true},
}
