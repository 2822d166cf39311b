package registration

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
)

type Status int

const (
	REGISTERED Status = iota
	PAID
)

func (s Status) String() string {
	switch s {
	case PAID:
		return "paid"
	default:
		return "registered"
	}
}

func ParseStatus(s string) (Status, error) {
	switch s {
	case "registered":
		return REGISTERED, nil
	case "paid":
		return PAID, nil
	default:
		return REGISTERED, fmt.Errorf("unknown status %q", s)
	}
}

// Event describes the one bootcamp this gateway sells seats for.
// Values are resolved once at startup and injected.
type Event struct {
	Name          string
	Price         *money.Money
	ContactNumber string
}

type Record struct {
	FirstName   string
	LastName    string
	Email       string
	Gender      string
	Country     string
	CountryCode string
	Phone       string
	FullPhone   string

	Status    Status
	Reference string
	CreatedAt time.Time

	PaidAt           *time.Time
	PaymentMethod    string
	PaymentReference string
}

// Form is the raw submission before validation. Country may be the
// literal "other", in which case OtherCountry carries the real value.
type Form struct {
	FirstName    string
	LastName     string
	Email        string
	Gender       string
	Country      string
	OtherCountry string
	CountryCode  string
	Phone        string
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
var nonDigits = regexp.MustCompile(`\D`)

// Validate returns a field name -> message map, empty when the form is valid.
func (f Form) Validate() map[string]string {
	fieldErrs := map[string]string{}

	required := map[string]string{
		"firstName": f.FirstName,
		"lastName":  f.LastName,
		"email":     f.Email,
		"gender":    f.Gender,
		"country":   f.Country,
		"phone":     f.Phone,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			fieldErrs[field] = "This field is required"
		}
	}

	if f.Country == "other" && strings.TrimSpace(f.OtherCountry) == "" {
		fieldErrs["otherCountry"] = "This field is required"
	}

	if email := strings.TrimSpace(f.Email); email != "" && !emailPattern.MatchString(email) {
		fieldErrs["email"] = "Please enter a valid email address"
	}

	if phone := strings.TrimSpace(f.Phone); phone != "" {
		digits := nonDigits.ReplaceAllString(phone, "")
		if len(digits) < 10 || len(digits) > 15 {
			fieldErrs["phone"] = "Please enter a valid phone number (10-15 digits)"
		}
	}

	return fieldErrs
}

// NewRecord validates the form and assembles a Record. The reference is
// assigned here exactly once; retries of the remote save never regenerate it.
func NewRecord(f Form, now time.Time) (Record, error) {
	if fieldErrs := f.Validate(); len(fieldErrs) > 0 {
		return Record{}, NewValidationFailedError(fmt.Sprintf("%d field(s) failed validation", len(fieldErrs)))
	}

	country := strings.TrimSpace(f.Country)
	if f.Country == "other" {
		country = strings.TrimSpace(f.OtherCountry)
	}

	phone := strings.TrimSpace(f.Phone)

	return Record{
		FirstName:   strings.TrimSpace(f.FirstName),
		LastName:    strings.TrimSpace(f.LastName),
		Email:       strings.TrimSpace(f.Email),
		Gender:      f.Gender,
		Country:     country,
		CountryCode: f.CountryCode,
		Phone:       phone,
		FullPhone:   f.CountryCode + phone,
		Status:      REGISTERED,
		Reference:   GenerateReference(now),
		CreatedAt:   now,
	}, nil
}

// GenerateReference builds the human-readable correlation reference,
// e.g. "GIT-1756449600000-0042".
func GenerateReference(now time.Time) string {
	return fmt.Sprintf("GIT-%d-%04d", now.UnixMilli(), rand.IntN(10000))
}

// CompletePayment transitions the record to PAID. PAID is terminal: a second
// completion is a no-op and the first payment reference is kept. Returns
// whether the record was mutated.
func (r *Record) CompletePayment(paymentRef, method string, now time.Time) bool {
	if r.Status == PAID {
		return false
	}

	r.Status = PAID
	r.PaidAt = &now
	r.PaymentMethod = method
	r.PaymentReference = paymentRef
	return true
}
