// Package viewmodel holds the presentation structs rendered by the web
// templates. They carry display-ready strings only.
package viewmodel

// PlanCard describes one pricing option on the landing and payment pages.
type PlanCard struct {
	Plan        string
	Name        string
	Price       int64
	PriceLabel  string
	CreditsText string
	Features    []string
	Highlighted bool
	Purchasable bool
}

// PageViewModel is shared by every full page.
type PageViewModel struct {
	Title     string
	Plans     []PlanCard
	Currency  string
	KeyID     string
	CSRFToken string
	Formats   []Option
	Lengths   []Option
}

// Option is a labelled select value.
type Option struct {
	Value   string
	Label   string
	Default bool
}

// PreviewViewModel is the fragment returned by the post preview endpoint.
type PreviewViewModel struct {
	HTML       string
	Words      int
	Characters int
	Limit      int
	OverLimit  bool
}
