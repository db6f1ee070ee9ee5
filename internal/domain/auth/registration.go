package auth

import (
	"regexp"
	"strconv"

	apperrors "github.com/pentopublic/pentopublic-client/internal/errors"
	"github.com/pentopublic/pentopublic-client/internal/validation"
)

const (
	msgRequiredFields = "Please fill in all required fields"
	minPasswordLength = 6
	minAge, maxAge    = 13, 120
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]{10,}$`)

	// Genders accepted by the registration form.
	Genders = []string{"Male", "Female", "Other", "PreferNotToSay"}

	// SelfServiceRoles are the roles a user may pick when registering.
	// Admin accounts are provisioned by the backend.
	SelfServiceRoles = []Role{RoleReader, RoleAuthor}
)

// Validate runs the sign-in form checks.
func (in LoginInput) Validate() error {
	fv := validation.New().
		Validate("identifier", in.Identifier, validation.Required("Please enter your username and password")).
		Validate("secret", in.Secret, validation.Present("Please enter your username and password"))
	return firstError(fv)
}

// Validate runs the registration form checks in form order: account step, then profile step.
func (r Registration) Validate() error {
	roles := make([]string, 0, len(SelfServiceRoles))
	for _, role := range SelfServiceRoles {
		roles = append(roles, string(role))
	}

	account := validation.New().
		Validate("userName", r.UserName, validation.Required(msgRequiredFields)).
		Validate("email", r.Email, validation.Required(msgRequiredFields)).
		Validate("password", r.Password, validation.Present(msgRequiredFields)).
		Validate("confirmPassword", r.ConfirmPassword, validation.Present(msgRequiredFields)).
		Validate("role", string(r.Role), validation.Required(msgRequiredFields))
	if err := firstError(account); err != nil {
		return err
	}

	account = validation.New().
		Validate("confirmPassword", r.ConfirmPassword, validation.Equals(r.Password, "Passwords do not match")).
		Validate("password", r.Password,
			validation.MinLength(minPasswordLength, "Password must be at least 6 characters long")).
		Validate("email", r.Email, validation.Pattern(emailPattern, "Please enter a valid email address")).
		Validate("role", string(r.Role), validation.OneOf(roles, "Please choose a valid role"))
	if err := firstError(account); err != nil {
		return err
	}

	age := ""
	if r.Profile.Age != 0 {
		age = strconv.Itoa(r.Profile.Age)
	}
	profile := validation.New().
		Validate("name", r.Profile.Name, validation.Required(msgRequiredFields)).
		Validate("gender", r.Profile.Gender, validation.Required(msgRequiredFields)).
		Validate("age", age, validation.Required(msgRequiredFields)).
		Validate("phoneNumber", r.Profile.PhoneNumber, validation.Required(msgRequiredFields))
	if err := firstError(profile); err != nil {
		return err
	}

	profile = validation.New().
		Validate("gender", r.Profile.Gender, validation.OneOf(Genders, "Please choose a valid gender")).
		Validate("age", age, validation.IntRange(minAge, maxAge, "Please enter a valid age (13-120)")).
		Validate("phoneNumber", r.Profile.PhoneNumber,
			validation.Pattern(phonePattern, "Please enter a valid phone number"))
	return firstError(profile)
}

func firstError(fv *validation.FieldValidator) error {
	if field, msg, ok := fv.First(); ok {
		return apperrors.ValidationField(field, msg)
	}
	return nil
}
