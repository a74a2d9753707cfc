package domain

// PlanVIP is the directory plan granting full access
const PlanVIP = "VIP"

// Identity is a customer record from the directory
type Identity struct {
	Email       string
	AccessValid bool
	Plan        string
	Trial       bool
}

// Listing is a property record from the directory. Title and Area are in
// Russian, TitleEn and District are their English counterparts.
type Listing struct {
	ID       int64
	AdID     string
	Title    string
	TitleEn  string
	Area     string
	District string
	Beds     int
	Price    int
	ChatLink string
	Photos   []string
}

// ListingQuery selects listings matching a request
type ListingQuery struct {
	Areas      []string
	Beds       []int
	MinPrice   int
	MaxPrice   int
	ExcludeIDs []int64
}
