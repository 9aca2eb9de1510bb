package forms

import "strings"

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

var loginMessages = messages{
	"email":    "Please enter a valid email address",
	"password": "Password must be at least 8 characters",
}

// Validate checks the shape of the credentials. The email is left exactly as typed because
// it has to match the stored address byte for byte.
func (f *LoginForm) Validate() error {
	return merge(check(f, loginMessages))
}

type SignupForm struct {
	FirstName       string `json:"first_name" validate:"min=2"`
	LastName        string `json:"last_name" validate:"min=2"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
	AgreeToTerms    bool   `json:"agree_to_terms" validate:"required"`
}

var signupMessages = messages{
	"first_name":       "First name must be at least 2 characters",
	"last_name":        "Last name must be at least 2 characters",
	"email":            "Please enter a valid email address",
	"password":         "Password must be at least 8 characters",
	"confirm_password": "Passwords do not match",
	"agree_to_terms":   "You must agree to the terms and conditions",
}

func (f *SignupForm) Validate() error {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)

	errs := check(f, signupMessages)
	if _, ok := errs["password"]; !ok {
		if msg := passwordStrength(f.Password); msg != "" {
			errs = withError(errs, "password", msg)
		}
	}
	return merge(errs)
}

// FullName joins the first and last names
func (f *SignupForm) FullName() string {
	return f.FirstName + " " + f.LastName
}

func withError(errs ValidationErrors, field, msg string) ValidationErrors {
	if errs == nil {
		errs = ValidationErrors{}
	}
	errs[field] = msg
	return errs
}
