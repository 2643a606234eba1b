package domain

import (
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryAdult  Category = "ADULT"
	CategoryMinor  Category = "MINOR"
	CategorySenior Category = "SENIOR"
	CategoryInfant Category = "INFANT"
)

type DetailType string

const (
	DetailTypeAdult  DetailType = "ADULTO"
	DetailTypeMinor  DetailType = "MENOR"
	DetailTypeSenior DetailType = "MAYOR"
	DetailTypeInfant DetailType = "INFANTE"
)

// CategorySpec is one row of the category dispatch table.
type CategorySpec struct {
	Category   Category
	DetailType DetailType
	FormKey    string
	count      func(*PassengerCounts) *int
	records    func(*PassengerForm) *[]PassengerRecord
}

// Categories lists every passenger category in the fixed payload order:
// adult, minor, senior, infant.
var Categories = []CategorySpec{
	{
		Category:   CategoryAdult,
		DetailType: DetailTypeAdult,
		FormKey:    "adults",
		count:      func(c *PassengerCounts) *int { return &c.Adult },
		records:    func(f *PassengerForm) *[]PassengerRecord { return &f.Adults },
	},
	{
		Category:   CategoryMinor,
		DetailType: DetailTypeMinor,
		FormKey:    "minors",
		count:      func(c *PassengerCounts) *int { return &c.Minor },
		records:    func(f *PassengerForm) *[]PassengerRecord { return &f.Minors },
	},
	{
		Category:   CategorySenior,
		DetailType: DetailTypeSenior,
		FormKey:    "seniors",
		count:      func(c *PassengerCounts) *int { return &c.Senior },
		records:    func(f *PassengerForm) *[]PassengerRecord { return &f.Seniors },
	},
	{
		Category:   CategoryInfant,
		DetailType: DetailTypeInfant,
		FormKey:    "infants",
		count:      func(c *PassengerCounts) *int { return &c.Infant },
		records:    func(f *PassengerForm) *[]PassengerRecord { return &f.Infants },
	},
}

func ParseCategory(value string) (CategorySpec, error) {
	for _, spec := range Categories {
		if strings.EqualFold(string(spec.Category), value) {
			return spec, nil
		}
	}
	return CategorySpec{}, ValidationError{Field: "category", Msg: fmt.Sprintf("unknown passenger category %q", value)}
}

// Count returns how many passengers of this category are in c.
func (s CategorySpec) Count(c PassengerCounts) int {
	return *s.count(&c)
}

// Records returns the form entries of this category.
func (s CategorySpec) Records(f PassengerForm) []PassengerRecord {
	return *s.records(&f)
}

type PaxOp string

const (
	PaxIncrement PaxOp = "increment"
	PaxDecrement PaxOp = "decrement"
)

type PaxAction struct {
	Category Category `json:"category" binding:"required"`
	Op       PaxOp    `json:"op" binding:"required,oneof=increment decrement"`
}

// PassengerCounts holds the number of passengers per category chosen on the
// search step.
type PassengerCounts struct {
	Adult  int `json:"paxAdult"`
	Minor  int `json:"paxMinor"`
	Senior int `json:"paxSenior"`
	Infant int `json:"paxInfant"`
}

func (c PassengerCounts) Total() int {
	return c.Adult + c.Minor + c.Senior + c.Infant
}

func (c PassengerCounts) Valid() error {
	for _, spec := range Categories {
		if spec.Count(c) < 0 {
			return ErrInvalidCount
		}
	}
	return nil
}

// Apply returns the counts after action. The receiver is left untouched.
func (c PassengerCounts) Apply(action PaxAction) (PassengerCounts, error) {
	spec, err := ParseCategory(string(action.Category))
	if err != nil {
		return c, err
	}
	next := c
	n := spec.count(&next)
	switch action.Op {
	case PaxIncrement:
		*n++
	case PaxDecrement:
		if *n == 0 {
			return c, ErrInvalidCount
		}
		*n--
	default:
		return c, ValidationError{Field: "op", Msg: fmt.Sprintf("unknown operation %q", action.Op)}
	}
	return next, nil
}

type DocumentType string

const (
	DocumentDNI      DocumentType = "DNI"
	DocumentPassport DocumentType = "PASSPORT"
)

type Gender string

const (
	GenderMale   Gender = "MASCULINO"
	GenderFemale Gender = "FEMENINO"
)

type PassengerRecord struct {
	DocumentType           DocumentType `json:"documentType" validate:"required,oneof=DNI PASSPORT"`
	DocumentNumber         string       `json:"documentNumber" validate:"required"`
	DocumentExpirationDate Date         `json:"documentExpirationDate" validate:"required"`
	DocumentIssueCountry   string       `json:"documentIssueCountry" validate:"required"`
	FirstName              string       `json:"firstName" validate:"required"`
	MiddleName             string       `json:"middleName" validate:"required"`
	LastName               string       `json:"lastName" validate:"required"`
	GenderType             Gender       `json:"genderType" validate:"required,oneof=MASCULINO FEMENINO"`
	DateBirth              Date         `json:"dateBirth" validate:"required"`
	CountryBirth           string       `json:"countryBirth" validate:"required"`
	CountryNationality     string       `json:"countryNationality" validate:"required"`
	CountryResidence       string       `json:"countryResidence" validate:"required"`
}

func blankPassenger(now time.Time) PassengerRecord {
	return PassengerRecord{
		DocumentExpirationDate: NewDate(now),
		DateBirth:              NewDate(now),
	}
}

// PassengerForm keeps the passenger records grouped by category. A record's
// category is given by the slice it lives in.
type PassengerForm struct {
	Adults  []PassengerRecord `json:"adults"`
	Minors  []PassengerRecord `json:"minors"`
	Seniors []PassengerRecord `json:"seniors"`
	Infants []PassengerRecord `json:"infants"`
}

// NewPassengerForm pre-populates one blank record per counted passenger,
// with dates set to now and every other field empty.
func NewPassengerForm(counts PassengerCounts, now time.Time) PassengerForm {
	var form PassengerForm
	for _, spec := range Categories {
		n := spec.Count(counts)
		records := make([]PassengerRecord, n)
		for i := range records {
			records[i] = blankPassenger(now)
		}
		*spec.records(&form) = records
	}
	return form
}

// Counts reports how many records the form holds per category.
func (f PassengerForm) Counts() PassengerCounts {
	var c PassengerCounts
	for _, spec := range Categories {
		*spec.count(&c) = len(spec.Records(f))
	}
	return c
}

type ContactInfo struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}
