// internal/engine/cardgrid/validation.go
package cardgrid

import (
	"strings"

	"vaccard/internal/common/errors"
	"vaccard/internal/common/validation"
	"vaccard/internal/models"
)

// cardResponseSchema is the structural contract for collaborator card
// payloads. Pairing invariants between status and record fields are checked
// during alignment, not here; the schema only guards shape and enums.
var cardResponseSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"person", "vaccines"},
	"properties": map[string]interface{}{
		"person": map[string]interface{}{
			"type":     "object",
			"required": []string{"id", "name", "cpf"},
			"properties": map[string]interface{}{
				"id":   map[string]interface{}{"type": "integer", "minimum": 1},
				"name": map[string]interface{}{"type": "string", "minLength": 1},
				"cpf":  map[string]interface{}{"type": "string", "minLength": 11, "maxLength": 11},
			},
		},
		"vaccines": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []string{"vaccineId", "vaccineName", "doses"},
				"properties": map[string]interface{}{
					"vaccineId":   map[string]interface{}{"type": "integer", "minimum": 1},
					"vaccineName": map[string]interface{}{"type": "string", "minLength": 1},
					"category": map[string]interface{}{
						"type": "string",
						"enum": []string{"ROUTINE", "SEASONAL", "TRAVEL", "SPECIAL_GROUPS"},
					},
					"doses": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type":     "object",
							"required": []string{"doseType", "status"},
							"properties": map[string]interface{}{
								"doseType": map[string]interface{}{"type": "string"},
								"status": map[string]interface{}{
									"type": "string",
									"enum": []string{"TAKEN", "MISSING", "NOT_APPLICABLE"},
								},
							},
						},
					},
				},
			},
		},
	},
}

// ValidateCard checks a card payload against the response schema.
func ValidateCard(card *models.CardGrid) error {
	result, err := validation.ValidateDocument(card, cardResponseSchema)
	if err != nil {
		return errors.NewIntegrityViolationError("card schema check failed to run: " + err.Error())
	}
	if !result.Valid {
		return errors.NewIntegrityViolationError(strings.Join(result.ErrorMessages(), "; "))
	}
	return nil
}
