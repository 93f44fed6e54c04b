package checkout

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/georgemunganga/jerseyx-backend/internal/modules/payment"
)

// Step is a position in the checkout wizard.
type Step int

const (
	StepTerms Step = iota
	StepDetails
	StepReview
	StepPayment
)

var stepNames = [...]string{"Terms", "Details", "Review", "Payment"}

func (s Step) String() string {
	if s < StepTerms || s > StepPayment {
		return "Unknown"
	}
	return stepNames[s]
}

func (s Step) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// Details is the shipping form.
type Details struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal,omitempty"`
}

var emailPattern = regexp.MustCompile(`.+@.+\..+`)

const minPostalLen = 4

// FieldErrors maps form fields to messages.
type FieldErrors map[string]string

// ValidateDetails returns nil when d may leave the Details step. Phone is
// never checked.
func ValidateDetails(d Details) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(d.Name) == "" {
		errs["name"] = "Name is required"
	}
	switch {
	case strings.TrimSpace(d.Email) == "":
		errs["email"] = "Email is required"
	case !emailPattern.MatchString(d.Email):
		errs["email"] = "Enter a valid email"
	}
	if strings.TrimSpace(d.Address) == "" {
		errs["address"] = "Address is required"
	}
	if d.PostalCode != "" && len([]rune(strings.TrimSpace(d.PostalCode))) < minPostalLen {
		errs["postal"] = "Postal code too short"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidationError is returned when a guard rejects the details form.
type ValidationError struct {
	Fields FieldErrors `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid details: " + strings.Join(keys, ", ")
}

// State is what the wizard shows.
type State struct {
	Step     Step           `json:"step"`
	Accepted bool           `json:"accepted"`
	Details  Details        `json:"details"`
	Method   payment.Method `json:"method,omitempty"`
	Items    int            `json:"items"`
	Amount   float64        `json:"amount"`
}

type ConfirmationItem struct {
	Name  string  `json:"name"`
	Size  string  `json:"size"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
}

// Confirmation is shown once payment succeeds.
type Confirmation struct {
	OrderID   string             `json:"id"`
	Items     []ConfirmationItem `json:"items"`
	Total     float64            `json:"total"`
	ETA       time.Time          `json:"eta_date"`
	ETALabel  string             `json:"eta"`
	Reference string             `json:"reference,omitempty"`
}
