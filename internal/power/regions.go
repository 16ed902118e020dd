package power

// defaultRegionNames lists the states published on the status site, in processing order.
var defaultRegionNames = []string{
	"Andhra Pradesh", "Assam", "Bihar", "Chhattisgarh", "Delhi", "Gujarat",
	"Haryana", "Himachal Pradesh", "Jammu & Kashmir", "Jharkhand", "Karnataka",
	"Kerala", "Madhya Pradesh", "Maharashtra", "Meghalaya", "Mizoram",
	"Nagaland", "Odisha", "Puducherry", "Punjab", "Rajasthan", "Sikkim",
	"Tamil Nadu", "Telangana", "Tripura", "Uttar Pradesh", "Uttarakhand",
	"West Bengal",
}

// DefaultRegions returns a fresh copy of the built-in region table.
func DefaultRegions() []Region {
	regions := make([]Region, len(defaultRegionNames))
	for i, name := range defaultRegionNames {
		regions[i] = Region{Name: name}
	}
	return regions
}
