package anylist

// Wire types for the AnyList REST API. Optional fields are pointers so an
// absent field survives the round trip as nil rather than collapsing into
// the empty string.

// List is one shopping list as returned by GET /v1/lists, items included.
type List struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UpdatedAt int64  `json:"updated_at"` // Unix seconds
	Items     []Item `json:"items"`
}

// Item is one list entry.
type Item struct {
	ID       string  `json:"id"`
	ListID   string  `json:"list_id"`
	Name     string  `json:"name"`
	Details  *string `json:"details,omitempty"`
	Quantity *string `json:"quantity,omitempty"`
	Category *string `json:"category,omitempty"`
	Checked  bool    `json:"checked"`
	UserID   *string `json:"user_id,omitempty"` // user who last touched the item
}

// listsResponse is the envelope for GET /v1/lists.
type listsResponse struct {
	Lists []List `json:"lists"`
}

// loginRequest is the body for POST /v1/auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse carries the bearer token used on all subsequent calls.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
}

// realtimeFrame is one JSON message on the realtime websocket.
type realtimeFrame struct {
	Event string `json:"event"`
}

// Realtime event names the subscriber cares about.
const (
	eventListsChanged = "shopping_lists_changed"
	eventHeartbeat    = "heartbeat"
)
