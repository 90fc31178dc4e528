package validation

import (
	"strings"

	"github.com/google/uuid"

	"timesheet/internal/errors"
	"timesheet/internal/period"
)

// BatchPayload is the JSON body of a batch approval request. TimeEntries is
// accepted as an alias for IDs.
type BatchPayload struct {
	IDs         []string `json:"ids"`
	TimeEntries []string `json:"timeEntries"`
	Period      string   `json:"period"`
}

// Batch is a validated batch request
type Batch struct {
	IDs    []uuid.UUID
	Period *period.ID
}

// BatchValidator checks batch payloads
type BatchValidator struct {
	validator *Validator
}

// NewBatchValidator creates a batch validator with the given limits
func NewBatchValidator(limits Limits) *BatchValidator {
	return &BatchValidator{validator: NewValidatorWithLimits(limits)}
}

// Validate parses and deduplicates the ids of p, keeping first-seen order.
// An empty, malformed or oversized batch fails as invalid input naming
// every offending value.
func (bv *BatchValidator) Validate(p BatchPayload) (*Batch, error) {
	raw := p.IDs
	field := "ids"
	if len(raw) == 0 && len(p.TimeEntries) > 0 {
		raw = p.TimeEntries
		field = "timeEntries"
	}

	if len(raw) == 0 {
		return nil, errors.NewInvalidInputError("ids", raw, "at least one time entry id is required")
	}
	if max := bv.validator.Limits().MaxBatchSize; len(raw) > max {
		ve := NewValidationError()
		ve.AddTooManyError(field, len(raw), max)
		return nil, errors.NewInvalidInputError(field, len(raw), ve.Errors[0].Message)
	}

	seen := make(map[uuid.UUID]bool, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	var malformed []string
	for _, s := range raw {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			malformed = append(malformed, s)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(malformed) > 0 {
		list := strings.Join(malformed, ", ")
		return nil, errors.NewInvalidInputError(field, list, "not a valid uuid: "+list).
			WithContext("ids", malformed)
	}

	batch := &Batch{IDs: ids}
	if p.Period != "" {
		id, err := period.Parse(p.Period)
		if err != nil {
			return nil, err
		}
		batch.Period = &id
	}
	return batch, nil
}

// ParseIDs validates bare id strings, as given on the command line
func (bv *BatchValidator) ParseIDs(raw []string) ([]uuid.UUID, error) {
	batch, err := bv.Validate(BatchPayload{IDs: raw})
	if err != nil {
		return nil, err
	}
	return batch.IDs, nil
}
