// internal/models/page.go
package models

// PersonPage mirrors the collaborator's offset-paginated listing shape.
type PersonPage struct {
	Content          []Person `json:"content"`
	Number           int      `json:"number"`
	Size             int      `json:"size"`
	TotalPages       int      `json:"totalPages"`
	TotalElements    int64    `json:"totalElements"`
	NumberOfElements int      `json:"numberOfElements"`
	First            bool     `json:"first"`
	Last             bool     `json:"last"`
	Empty            bool     `json:"empty"`
}

// PageOfOne wraps a single lookup hit in a synthetic page so downstream
// rendering never branches on retrieval mode.
func PageOfOne(p Person) PersonPage {
	return PersonPage{
		Content:          []Person{p},
		Number:           0,
		Size:             1,
		TotalPages:       1,
		TotalElements:    1,
		NumberOfElements: 1,
		First:            true,
		Last:             true,
		Empty:            false,
	}
}
