// internal/models/vaccine.go
package models

type Vaccine struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Category     VaccineCategory `json:"category"`
	DoseSchedule []DoseType      `json:"doseSchedule"`
}

type VaccineRequest struct {
	Name         string          `json:"name"`
	Category     VaccineCategory `json:"category"`
	DoseSchedule []DoseType      `json:"doseSchedule"`
}
