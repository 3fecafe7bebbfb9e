// internal/models/person.go
package models

// Person is the collaborator's projection of a registered person. Immutable
// from the engine's perspective.
type Person struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CPF         string `json:"cpf"`
	DateOfBirth string `json:"dateOfBirth"`
	Sex         Sex    `json:"sex"`
}

// PersonRequest is the create payload for the person lifecycle passthrough.
type PersonRequest struct {
	Name        string `json:"name"`
	CPF         string `json:"cpf"`
	DateOfBirth string `json:"dateOfBirth"`
	Sex         Sex    `json:"sex"`
}
