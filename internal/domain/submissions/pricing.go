package submissions

// Package identifiers (single source of truth)
const (
	PackageStarter  = "starter"
	PackageBusiness = "business"
	PackageDynamic  = "dynamic"
)

const (
	Currency            = "ETB"
	defaultPackagePrice = 10000
)

type Package struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	PriceETB  int64    `json:"price_etb"`
	Timeline  string   `json:"timeline"`
	Revisions int      `json:"revisions"`
	Features  []string `json:"features"`
}

var packages = []Package{
	{
		ID:        PackageStarter,
		Name:      "Starter Landing Page",
		PriceETB:  7000,
		Timeline:  "3 Days",
		Revisions: 2,
		Features:  []string{"Single Page", "Mobile Responsive", "Contact Form", "1 Month Support"},
	},
	{
		ID:        PackageBusiness,
		Name:      "Business Pro",
		PriceETB:  10000,
		Timeline:  "3 Days",
		Revisions: 5,
		Features:  []string{"Up to 5 Pages", "SEO Optimization", "Custom Domain Setup", "Social Media Integration"},
	},
	{
		ID:        PackageDynamic,
		Name:      "Dynamic Website",
		PriceETB:  14999,
		Timeline:  "3 Days",
		Revisions: 10,
		Features:  []string{"Dynamic Content Management", "Admin Dashboard", "Database Integration", "3 Months Support"},
	},
}

func Packages() []Package {
	out := make([]Package, len(packages))
	copy(out, packages)
	return out
}

func LookupPackage(id string) (Package, bool) {
	for _, p := range packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

// PackagePrice falls back to the business price for unknown packages.
func PackagePrice(packageID string) int64 {
	if p, ok := LookupPackage(packageID); ok {
		return p.PriceETB
	}
	return defaultPackagePrice
}

// DepositAmount is the 50% upfront deposit, rounded down to whole birr.
func DepositAmount(packageID string) int64 {
	return PackagePrice(packageID) / 2
}
