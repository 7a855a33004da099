package domain

import "time"

// Qualification is the academic qualification code held by a member.
type Qualification int

const (
	QualificationNone     Qualification = 0
	QualificationBachelor Qualification = 1
	QualificationMaster   Qualification = 2
)

// Member is a registered professional ("colegiado"). Members are immutable once registered.
type Member struct {
	NationalID       string        `json:"national_id"`
	GivenName        string        `json:"given_name"`
	Surname          string        `json:"surname"`
	City             string        `json:"city"`
	Center           string        `json:"center"`
	Qualification    Qualification `json:"qualification"`
	RegistrationYear int           `json:"registration_year"`
	CardNumber       int           `json:"card_number"`
	Phone            int           `json:"phone"`
	RegisteredAt     time.Time     `json:"registered_at"`
}
