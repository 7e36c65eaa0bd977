package domain

// PackageType identifies the well-known package slots of an offering.
type PackageType string

const (
	PackageMonthly  PackageType = "monthly"
	PackageAnnual   PackageType = "annual"
	PackageLifetime PackageType = "lifetime"
	PackageCustom   PackageType = "custom"
)

// Package is a purchasable item of an offering.
type Package struct {
	ID        string      `json:"id"`
	Type      PackageType `json:"type"`
	ProductID string      `json:"product_id"`
	Price     string      `json:"price,omitempty"`
}

// Offering is the bundle of packages currently presented to the user.
type Offering struct {
	ID       string    `json:"id"`
	Packages []Package `json:"packages"`
}

// Package returns the first package of the given type.
func (o Offering) Package(t PackageType) (Package, bool) {
	for _, pkg := range o.Packages {
		if pkg.Type == t {
			return pkg, true
		}
	}
	return Package{}, false
}

// PackageByID looks a package up by its identifier.
func (o Offering) PackageByID(id string) (Package, bool) {
	for _, pkg := range o.Packages {
		if pkg.ID == id {
			return pkg, true
		}
	}
	return Package{}, false
}

// IsEmpty reports whether nothing can be bought.
func (o Offering) IsEmpty() bool {
	return len(o.Packages) == 0
}
