package entity

// User is a PagerDuty user record resolved from a chat identity.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	HTMLURL string `json:"html_url"`
}

// EscalationPolicy is an ordered set of notification targets.
type EscalationPolicy struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// Service is a PagerDuty service, listed for maintenance-window targeting.
type Service struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	HTMLURL string `json:"html_url"`
}

// ChatUser is the chat-platform side of the identity cross-reference.
// Email fields are filled in whatever order the platform provides them;
// the identity resolver decides precedence.
type ChatUser struct {
	ID           string
	Name         string
	Email        string // platform-provided address
	ProfileEmail string // profile field, set by some adapters only
}
