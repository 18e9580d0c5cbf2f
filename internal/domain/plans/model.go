package plans

// Plan is a catalog entry shown on the pricing screen.
type Plan struct {
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	PriceMonthly int      `json:"price_monthly"`
	Currency     string   `json:"currency"`
	Features     []string `json:"features"`
}

var catalog = []Plan{
	{
		Slug:         TierFree,
		Name:         "Free",
		PriceMonthly: 0,
		Currency:     "INR",
		Features:     []string{"1 shop page", "Up to 12 blocks", "Kashpages branding"},
	},
	{
		Slug:         TierPro,
		Name:         "Pro",
		PriceMonthly: 299,
		Currency:     "INR",
		Features:     []string{"3 shop pages", "Up to 40 blocks per page", "No branding", "Analytics export"},
	},
	{
		Slug:         TierBusiness,
		Name:         "Business",
		PriceMonthly: 799,
		Currency:     "INR",
		Features:     []string{"10 shop pages", "Unlimited blocks", "No branding", "Analytics export", "Priority review"},
	},
}

// Catalog returns the plans in ascending price order.
func Catalog() []Plan {
	out := make([]Plan, len(catalog))
	copy(out, catalog)
	return out
}

// Find returns the catalog entry for a tier.
func Find(tier string) Plan {
	tier = NormalizeTier(tier)
	for _, p := range catalog {
		if p.Slug == tier {
			return p
		}
	}
	return catalog[0]
}
