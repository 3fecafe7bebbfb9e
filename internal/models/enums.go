// internal/models/enums.go
package models

import "fmt"

// DoseType is a member of the fixed national dose schedule. The set is closed:
// values are never created or destroyed at runtime, and DoseCatalog order is
// the row order of every card grid.
type DoseType string

const (
	DoseFirst         DoseType = "FIRST_DOSE"
	DoseSecond        DoseType = "SECOND_DOSE"
	DoseThird         DoseType = "THIRD_DOSE"
	DoseSingle        DoseType = "SINGLE_DOSE"
	DoseBooster       DoseType = "BOOSTER"
	DoseFirstBooster  DoseType = "FIRST_BOOSTER"
	DoseSecondBooster DoseType = "SECOND_BOOSTER"
)

// DoseCatalog is the canonical ordered enumeration of dose types.
var DoseCatalog = []DoseType{
	DoseFirst,
	DoseSecond,
	DoseThird,
	DoseSingle,
	DoseBooster,
	DoseFirstBooster,
	DoseSecondBooster,
}

var doseLabels = map[DoseType]string{
	DoseFirst:         "1st Dose",
	DoseSecond:        "2nd Dose",
	DoseThird:         "3rd Dose",
	DoseSingle:        "Single Dose",
	DoseBooster:       "Booster",
	DoseFirstBooster:  "1st Booster",
	DoseSecondBooster: "2nd Booster",
}

// Label returns the human-readable description of the dose type.
func (d DoseType) Label() string {
	if l, ok := doseLabels[d]; ok {
		return l
	}
	return string(d)
}

// Valid reports whether d is a member of the catalog.
func (d DoseType) Valid() bool {
	_, ok := doseLabels[d]
	return ok
}

// ParseDoseType validates a wire value against the catalog.
func ParseDoseType(s string) (DoseType, error) {
	d := DoseType(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown dose type %q", s)
	}
	return d, nil
}

// DoseStatus is the derived per-cell state. TAKEN and MISSING are the two
// states a scheduled dose can be in; NOT_APPLICABLE marks catalog doses
// outside a vaccine's schedule; ERROR is synthesized locally when the
// collaborator omits a scheduled entry and is never sent on the wire.
type DoseStatus string

const (
	StatusTaken         DoseStatus = "TAKEN"
	StatusMissing       DoseStatus = "MISSING"
	StatusNotApplicable DoseStatus = "NOT_APPLICABLE"
	StatusError         DoseStatus = "ERROR"
)

// VaccineCategory classifies vaccines for grid filtering. Closed set.
type VaccineCategory string

const (
	CategoryRoutine    VaccineCategory = "ROUTINE"
	CategorySeasonal   VaccineCategory = "SEASONAL"
	CategoryTravel     VaccineCategory = "TRAVEL"
	CategorySpecialGrp VaccineCategory = "SPECIAL_GROUPS"
)

var vaccineCategories = map[VaccineCategory]bool{
	CategoryRoutine:    true,
	CategorySeasonal:   true,
	CategoryTravel:     true,
	CategorySpecialGrp: true,
}

// ParseVaccineCategory validates a wire value against the closed set.
func ParseVaccineCategory(s string) (VaccineCategory, error) {
	c := VaccineCategory(s)
	if !vaccineCategories[c] {
		return "", fmt.Errorf("unknown vaccine category %q", s)
	}
	return c, nil
}

// Sex as recorded by the collaborator.
type Sex string

const (
	SexMale   Sex = "MALE"
	SexFemale Sex = "FEMALE"
)
