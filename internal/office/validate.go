package office

import (
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wolfeidau/offices/internal/models"
)

// Attribute names accepted in request bodies.
const (
	FieldCompany        = "company"
	FieldCity           = "city"
	FieldState          = "state"
	FieldGeneralManager = "general_manager"
	FieldPhoneNumber    = "phone_number"
)

var (
	companyPattern        = regexp.MustCompile(`^[a-zA-Z\s\-\d.!']{2,40}$`)
	cityPattern           = regexp.MustCompile(`^[a-zA-Z\s\-']{2,40}$`)
	generalManagerPattern = regexp.MustCompile(`^[a-zA-Z\s]{2,40}$`)
	phonePattern          = regexp.MustCompile(`^[\d()+\-\s]{10,}$`)
)

// USStateAbbreviations is the closed set of values accepted for state.
var USStateAbbreviations = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA", "HI", "ID", "IL", "IN",
	"IA", "KS", "KY", "LA", "ME", "MD", "MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV",
	"NH", "NJ", "NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC", "SD", "TN",
	"TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
}

// fieldRule binds an attribute to the validator tag that checks it.
type fieldRule struct {
	name string
	tag  string
}

// fieldRules is consulted by both full and partial validation. Order matters:
// the first failing attribute decides the reported field.
var fieldRules = []fieldRule{
	{name: FieldCompany, tag: "office_company"},
	{name: FieldCity, tag: "office_city"},
	{name: FieldState, tag: "oneof=" + strings.Join(USStateAbbreviations, " ")},
	{name: FieldGeneralManager, tag: "office_general_manager"},
	{name: FieldPhoneNumber, tag: "office_phone_number"},
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()

	patterns := map[string]*regexp.Regexp{
		"office_company":         companyPattern,
		"office_city":            cityPattern,
		"office_general_manager": generalManagerPattern,
		"office_phone_number":    phonePattern,
	}
	for tag, re := range patterns {
		if err := v.RegisterValidation(tag, matches(re)); err != nil {
			panic(err)
		}
	}

	return v
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// Attributes are the five mutable office fields after full validation.
type Attributes struct {
	Company        string
	City           string
	State          string
	GeneralManager string
	PhoneNumber    string
}

// Apply copies the attributes onto office.
func (a Attributes) Apply(office *models.Office) {
	office.Company = a.Company
	office.City = a.City
	office.State = a.State
	office.GeneralManager = a.GeneralManager
	office.PhoneNumber = a.PhoneNumber
}

// Patch holds the attributes supplied in a partial update. Nil means absent.
type Patch struct {
	Company        *string
	City           *string
	State          *string
	GeneralManager *string
	PhoneNumber    *string
}

// ChangesIdentity reports whether company, city and state were all supplied.
// Only then is the uniqueness check repeated for a patch.
func (p Patch) ChangesIdentity() bool {
	return p.Company != nil && p.City != nil && p.State != nil
}

// Apply merges the supplied attributes onto office, leaving absent ones unchanged.
func (p Patch) Apply(office *models.Office) {
	if p.Company != nil {
		office.Company = *p.Company
	}
	if p.City != nil {
		office.City = *p.City
	}
	if p.State != nil {
		office.State = *p.State
	}
	if p.GeneralManager != nil {
		office.GeneralManager = *p.GeneralManager
	}
	if p.PhoneNumber != nil {
		office.PhoneNumber = *p.PhoneNumber
	}
}

// ValidateFull checks a replacement body: only known attributes, all five present
// and non-null, each matching its rule.
func ValidateFull(fields map[string]any) (Attributes, error) {
	if err := checkAttributeNames(fields); err != nil {
		return Attributes{}, err
	}

	for _, rule := range fieldRules {
		if v, ok := fields[rule.name]; !ok || v == nil {
			return Attributes{}, newError(KindMissingAttributes, "")
		}
	}

	values := make(map[string]string, len(fieldRules))
	for _, rule := range fieldRules {
		s, err := checkField(rule, fields[rule.name])
		if err != nil {
			return Attributes{}, err
		}
		values[rule.name] = s
	}

	return Attributes{
		Company:        values[FieldCompany],
		City:           values[FieldCity],
		State:          values[FieldState],
		GeneralManager: values[FieldGeneralManager],
		PhoneNumber:    values[FieldPhoneNumber],
	}, nil
}

// ValidatePartial checks a patch body: only known attributes, and each present
// attribute matching its rule. A present null is invalid.
func ValidatePartial(fields map[string]any) (Patch, error) {
	if err := checkAttributeNames(fields); err != nil {
		return Patch{}, err
	}

	values := make(map[string]*string, len(fieldRules))
	for _, rule := range fieldRules {
		v, ok := fields[rule.name]
		if !ok {
			continue
		}
		s, err := checkField(rule, v)
		if err != nil {
			return Patch{}, err
		}
		values[rule.name] = &s
	}

	return Patch{
		Company:        values[FieldCompany],
		City:           values[FieldCity],
		State:          values[FieldState],
		GeneralManager: values[FieldGeneralManager],
		PhoneNumber:    values[FieldPhoneNumber],
	}, nil
}

func checkAttributeNames(fields map[string]any) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !knownField(name) {
			return &Error{Kind: KindInvalidAttribute, Field: name}
		}
	}
	return nil
}

func knownField(name string) bool {
	for _, rule := range fieldRules {
		if rule.name == name {
			return true
		}
	}
	return false
}

func checkField(rule fieldRule, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", &Error{Kind: KindInvalidField, Field: rule.name}
	}
	if err := validate.Var(s, rule.tag); err != nil {
		return "", &Error{Kind: KindInvalidField, Field: rule.name}
	}
	return s, nil
}
