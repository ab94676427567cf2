package substances

// Substance is one row of the reference catalog.
type Substance struct {
	Name           string `json:"name"`
	NormalizedName string `json:"normalized_name,omitempty"`
	Category       string `json:"category"`
	Description    string `json:"description"`
}
