package domain

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	NationalIDLength = 9
	PhoneDigits      = 9
	CardNumberDigits = 5
)

// ValidateMember checks every field constraint of a registration candidate and reports the
// first violation. The check order is fixed so the reported field is deterministic.
// maxYear is the latest registration year accepted.
func ValidateMember(candidate *Member, maxYear int) error {
	if candidate == nil {
		return invalid("member", "cannot be nil")
	}
	if err := ValidateNationalID(candidate.NationalID); err != nil {
		return err
	}

	required := []struct {
		field string
		value string
	}{
		{"given_name", candidate.GivenName},
		{"surname", candidate.Surname},
		{"city", candidate.City},
		{"center", candidate.Center},
	}
	for _, r := range required {
		if isBlank(r.value) {
			return invalid(r.field, "cannot be blank")
		}
	}

	switch candidate.Qualification {
	case QualificationNone, QualificationBachelor, QualificationMaster:
	default:
		return invalid("qualification", "must be 0, 1 or 2")
	}

	if candidate.RegistrationYear <= 0 {
		return invalid("registration_year", "must be positive")
	}
	if candidate.CardNumber <= 0 {
		return invalid("card_number", "must be positive")
	}
	if candidate.Phone <= 0 {
		return invalid("phone", "must be positive")
	}
	if digits(candidate.Phone) != PhoneDigits {
		return invalid("phone", "must have exactly 9 digits")
	}
	if candidate.RegistrationYear > maxYear {
		return invalid("registration_year", "cannot be later than "+strconv.Itoa(maxYear))
	}
	if digits(candidate.CardNumber) != CardNumberDigits {
		return invalid("card_number", "must have exactly 5 digits")
	}
	return nil
}

// ValidateNationalID checks the shape of a national ID.
func ValidateNationalID(id string) error {
	if isBlank(id) {
		return invalid("national_id", "cannot be blank")
	}
	if utf8.RuneCountInString(id) != NationalIDLength {
		return invalid("national_id", "must have exactly 9 characters")
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func digits(n int) int {
	return len(strconv.Itoa(n))
}
