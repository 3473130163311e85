// Package property defines the typed view of a RentCast property record.
//
// Upstream records carry no schema guarantee: any field may be missing,
// null, or of a looser type than documented. Record keeps one pointer per
// known scalar so that "absent" stays distinct from "empty", and Extra
// holds every key the struct does not know about.
package property

// Record is one parcel as returned by the property search API.
type Record struct {
	ID               *string  `json:"id,omitempty" mapstructure:"id"`
	FormattedAddress *string  `json:"formattedAddress,omitempty" mapstructure:"formattedAddress"`
	AddressLine1     *string  `json:"addressLine1,omitempty" mapstructure:"addressLine1"`
	City             *string  `json:"city,omitempty" mapstructure:"city"`
	State            *string  `json:"state,omitempty" mapstructure:"state"`
	ZipCode          *string  `json:"zipCode,omitempty" mapstructure:"zipCode"`
	County           *string  `json:"county,omitempty" mapstructure:"county"`
	Latitude         *float64 `json:"latitude,omitempty" mapstructure:"latitude"`
	Longitude        *float64 `json:"longitude,omitempty" mapstructure:"longitude"`
	PropertyType     *string  `json:"propertyType,omitempty" mapstructure:"propertyType"`
	Bedrooms         *float64 `json:"bedrooms,omitempty" mapstructure:"bedrooms"`
	Bathrooms        *float64 `json:"bathrooms,omitempty" mapstructure:"bathrooms"`
	SquareFootage    *float64 `json:"squareFootage,omitempty" mapstructure:"squareFootage"`
	LotSize          *float64 `json:"lotSize,omitempty" mapstructure:"lotSize"`
	YearBuilt        *float64 `json:"yearBuilt,omitempty" mapstructure:"yearBuilt"`
	AssessorID       *string  `json:"assessorID,omitempty" mapstructure:"assessorID"`
	Zoning           *string  `json:"zoning,omitempty" mapstructure:"zoning"`
	LastSaleDate     *string  `json:"lastSaleDate,omitempty" mapstructure:"lastSaleDate"`
	LastSalePrice    *float64 `json:"lastSalePrice,omitempty" mapstructure:"lastSalePrice"`
	OwnerOccupied    *bool    `json:"ownerOccupied,omitempty" mapstructure:"ownerOccupied"`

	Owner    *Owner    `json:"owner,omitempty" mapstructure:"owner"`
	Features *Features `json:"features,omitempty" mapstructure:"features"`

	// Keyed by assessment year ("2023").
	TaxAssessments map[string]Assessment `json:"taxAssessments,omitempty" mapstructure:"taxAssessments"`
	PropertyTaxes  map[string]Tax        `json:"propertyTaxes,omitempty" mapstructure:"propertyTaxes"`

	// Extra holds upstream keys not modelled above.
	Extra map[string]any `json:"-" mapstructure:",remain"`
}

// Owner is the ownership block of a record.
type Owner struct {
	Names []string `json:"names,omitempty" mapstructure:"names"`
	Type  *string  `json:"type,omitempty" mapstructure:"type"`
}

// Features describes the building.
type Features struct {
	ArchitectureType *string  `json:"architectureType,omitempty" mapstructure:"architectureType"`
	ExteriorType     *string  `json:"exteriorType,omitempty" mapstructure:"exteriorType"`
	Heating          *bool    `json:"heating,omitempty" mapstructure:"heating"`
	Cooling          *bool    `json:"cooling,omitempty" mapstructure:"cooling"`
	Garage           *bool    `json:"garage,omitempty" mapstructure:"garage"`
	GarageSpaces     *float64 `json:"garageSpaces,omitempty" mapstructure:"garageSpaces"`
	Floors           *float64 `json:"floorCount,omitempty" mapstructure:"floorCount"`
	Pool             *bool    `json:"pool,omitempty" mapstructure:"pool"`
}

// Assessment is one year of assessed value.
type Assessment struct {
	Value        *float64 `json:"value,omitempty" mapstructure:"value"`
	Land         *float64 `json:"land,omitempty" mapstructure:"land"`
	Improvements *float64 `json:"improvements,omitempty" mapstructure:"improvements"`
}

// Tax is one year of property tax.
type Tax struct {
	Total *float64 `json:"total,omitempty" mapstructure:"total"`
}

// OwnerNames returns owner names, or nil when the record has none.
func (r *Record) OwnerNames() []string {
	if r.Owner == nil {
		return nil
	}
	return r.Owner.Names
}

// HasTaxAssessments reports whether the record carries any assessment year.
func (r *Record) HasTaxAssessments() bool {
	return len(r.TaxAssessments) > 0
}

// HasPropertyTaxes reports whether the record carries any tax year.
func (r *Record) HasPropertyTaxes() bool {
	return len(r.PropertyTaxes) > 0
}
