package domain

// Business is a provider location the owner can manage.
//
// It is produced by the discovery walk and never mutated afterwards:
// a reload replaces the whole list.
type Business struct {
	// ID is the provider resource path, used verbatim as a lookup key.
	// Example: accounts/1234/locations/5678
	ID string `json:"id"`

	// Name is the location title as displayed on the listing.
	Name string `json:"name"`

	// Address is the single-line display form of the storefront address.
	Address string `json:"address"`

	// Category is the primary category display name.
	Category string `json:"category"`

	// LogoURL points at a placeholder image for now.
	LogoURL string `json:"logo_url"`
}

// Display defaults applied when the provider omits a field.
const (
	UnknownAddress  = "Adresse non définie"
	UnknownCategory = "Non classé"
	PlaceholderLogo = "https://picsum.photos/100/100?random=real"
)
