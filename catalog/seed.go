package catalog

// SeedProducts returns the demo catalog used by the bundled service binary
// and the test-suite. Restricted notes are intentionally sensitive strings
// so a leak is unmistakable in tests and demos.
func SeedProducts() []Product {
	return []Product{
		{
			SKU:             "SKU-001",
			Name:            "Smart Speaker",
			Category:        "home-audio",
			Price:           79.0,
			Currency:        "USD",
			Inventory:       24,
			RestrictedNotes: "VIP discount code: vip-secret-50",
		},
		{
			SKU:             "SKU-002",
			Name:            "Productivity Laptop",
			Category:        "computers",
			Price:           1299.0,
			Currency:        "USD",
			Inventory:       4,
			RestrictedNotes: "Prototype model - includes admin debug firmware.",
		},
		{
			SKU:             "SKU-003",
			Name:            "Noise Cancelling Headphones",
			Category:        "home-audio",
			Price:           199.0,
			Currency:        "USD",
			Inventory:       58,
			RestrictedNotes: "Embargoed influencer bundle ships with leak tracker disabled.",
		},
		{
			SKU:             "SKU-004",
			Name:            "Smart Home Hub",
			Category:        "home-automation",
			Price:           149.0,
			Currency:        "USD",
			Inventory:       11,
			RestrictedNotes: "Contains customer email list for onboarding drip campaigns.",
		},
	}
}
