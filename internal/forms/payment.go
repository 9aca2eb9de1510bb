package forms

import (
	"strings"
	"time"

	"lagospaces/server/config"
	"lagospaces/server/internal/models"
)

// BookingRequest opens the booking wizard for a property visit
type BookingRequest struct {
	PropertyID string `json:"property_id" validate:"required"`
	VisitDate  string `json:"visit_date" validate:"required,datetime=2006-01-02"`
	VisitTime  string `json:"visit_time" validate:"required,datetime=15:04"`
	Note       string `json:"note" validate:"max=500"`
}

var bookingMessages = messages{
	"property_id": "Property is required",
	"visit_date":  "Please choose a visit date",
	"visit_time":  "Please choose a visit time",
	"note":        "Note must be at most 500 characters",
}

// Validate checks the request. now is used to reject visit dates in the past.
func (r *BookingRequest) Validate(now time.Time) error {
	r.PropertyID = strings.TrimSpace(r.PropertyID)
	errs := check(r, bookingMessages)
	if _, ok := errs["visit_date"]; !ok {
		day, _ := time.ParseInLocation("2006-01-02", r.VisitDate, now.Location())
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if day.Before(today) {
			errs = withError(errs, "visit_date", "Visit date cannot be in the past")
		}
	}
	return merge(errs)
}

// PaymentDetails is the payment form. Only the fields of the chosen method are checked.
type PaymentDetails struct {
	Method     models.PaymentMethod `json:"method"`
	CardNumber string               `json:"card_number,omitempty"`
	CardExpiry string               `json:"card_expiry,omitempty"`
	CardCVV    string               `json:"card_cvv,omitempty"`
	CardName   string               `json:"card_name,omitempty"`
	Bank       string               `json:"bank,omitempty"`
}

// Validate normalises the card fields the way the payment form formats them, then checks them
func (p *PaymentDetails) Validate() error {
	errs := ValidationErrors{}

	switch p.Method {
	case models.PaymentCard:
		p.CardNumber = FormatCardNumber(p.CardNumber)
		p.CardExpiry = FormatCardExpiry(p.CardExpiry)
		p.CardName = strings.TrimSpace(p.CardName)

		if validate.Var(digitsOnly(p.CardNumber), "len=16,digits") != nil {
			errs["card_number"] = "Please enter a valid 16-digit card number"
		}
		if !validExpiry(p.CardExpiry) {
			errs["card_expiry"] = "Please enter the expiry date as MM/YY"
		}
		if validate.Var(p.CardCVV, "len=3,digits") != nil {
			errs["card_cvv"] = "CVV must be 3 digits"
		}
		if validate.Var(p.CardName, "min=2") != nil {
			errs["card_name"] = "Please enter the name on the card"
		}
	case models.PaymentUSSD:
		if !config.IsUSSDBank(p.Bank) {
			errs["bank"] = "Please select your bank"
		}
	case models.PaymentBank:
	default:
		errs["method"] = "Please choose card, bank or ussd"
	}

	return merge(errs)
}

// MaskedCard shows only the last four digits
func (p *PaymentDetails) MaskedCard() string {
	d := digitsOnly(p.CardNumber)
	if len(d) < 4 {
		return ""
	}
	return "**** **** **** " + d[len(d)-4:]
}

func validExpiry(v string) bool {
	if len(v) != 5 || v[2] != '/' || !isDigits(v[:2]) || !isDigits(v[3:]) {
		return false
	}
	month := (v[0]-'0')*10 + (v[1] - '0')
	return month >= 1 && month <= 12
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber groups up to 16 digits in blocks of four. Input with fewer than four
// digits is returned unchanged.
func FormatCardNumber(value string) string {
	d := digitsOnly(value)
	if len(d) < 4 {
		return value
	}
	if len(d) > 16 {
		d = d[:16]
	}

	parts := make([]string, 0, 4)
	for i := 0; i < len(d); i += 4 {
		end := i + 4
		if end > len(d) {
			end = len(d)
		}
		parts = append(parts, d[i:end])
	}
	return strings.Join(parts, " ")
}

// FormatCardExpiry inserts the slash once two digits have been typed
func FormatCardExpiry(value string) string {
	d := digitsOnly(value)
	if len(d) < 2 {
		return d
	}
	if len(d) > 4 {
		d = d[:4]
	}
	return d[:2] + "/" + d[2:]
}
