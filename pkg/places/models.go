package places

// SearchResponse is one page of a Text Search response.
type SearchResponse struct {
	HTMLAttributions []string `json:"html_attributions"`
	NextPageToken    string   `json:"next_page_token,omitempty"`
	Results          []Result `json:"results"`
	Status           string   `json:"status"`
	ErrorMessage     string   `json:"error_message,omitempty"`
}

// Result is a single place. Optional numeric fields are pointers so that an
// absent field can be told apart from a zero.
type Result struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	Geometry         Geometry `json:"geometry"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingsTotal *float64 `json:"user_ratings_total,omitempty"`
	PriceLevel       *float64 `json:"price_level,omitempty"`
	BusinessStatus   string   `json:"business_status,omitempty"`
	Types            []string `json:"types,omitempty"`
}

type Geometry struct {
	Location LatLng `json:"location"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Response statuses that are not failures.
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)
