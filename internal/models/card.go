// internal/models/card.go
package models

// DoseCell is one (vaccine, dose type) entry of a card grid. The pairing
// invariant: RecordID and ApplicationDate are both set when Status is TAKEN
// and both nil otherwise, never one without the other.
type DoseCell struct {
	DoseType        DoseType   `json:"doseType"`
	Status          DoseStatus `json:"status"`
	RecordID        *int64     `json:"recordId"`
	ApplicationDate *string    `json:"applicationDate"`
}

// Taken reports whether the cell carries an administration record.
func (c DoseCell) Taken() bool {
	return c.Status == StatusTaken
}

// VaccineStatus is one grid column: a vaccine plus its dose cells, one per
// catalog dose type, in catalog order.
type VaccineStatus struct {
	VaccineID   int64           `json:"vaccineId"`
	VaccineName string          `json:"vaccineName"`
	Category    VaccineCategory `json:"category"`
	Doses       []DoseCell      `json:"doses"`
}

// CardGrid is the collaborator's card representation: a person plus the
// vaccines currently in view.
type CardGrid struct {
	Person   Person          `json:"person"`
	Vaccines []VaccineStatus `json:"vaccines"`
}

// RecordRequest is the write payload for registering an administration.
type RecordRequest struct {
	VaccineID       int64    `json:"vaccineId"`
	Dose            DoseType `json:"dose"`
	ApplicationDate string   `json:"applicationDate"`
}
