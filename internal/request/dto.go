package request

import (
	"strings"

	"github.com/frahmantamala/clearance-management/internal"
)

// CreateRequestDTO carries the submission fields of the multipart create
// form; the files travel separately.
type CreateRequestDTO struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	ClearanceType string `json:"clearance_type"`
	Reason        string `json:"reason"`
	Description   string `json:"description"`
}

// Validate reports every missing field together so the form can highlight
// all of them at once.
func (dto CreateRequestDTO) Validate() error {
	var fieldErrors []internal.ValidationError

	required := []struct {
		name  string
		value string
	}{
		{"full_name", dto.FullName},
		{"email", dto.Email},
		{"clearance_type", dto.ClearanceType},
		{"reason", dto.Reason},
		{"description", dto.Description},
	}

	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			fieldErrors = append(fieldErrors, internal.ValidationError{
				Field:   f.name,
				Message: f.name + " is required",
				Code:    "REQUIRED",
			})
		}
	}

	if len(fieldErrors) > 0 {
		return internal.NewFieldValidationError(fieldErrors)
	}
	return nil
}

// ReviewDTO is shared by the status-update and review endpoints; both run
// the same transition.
type ReviewDTO struct {
	Status        Status `json:"status"`
	ReviewComment string `json:"reviewComment"`
}

func (dto ReviewDTO) Validate() error {
	if dto.Status == "" {
		return internal.NewValidationError("status is required", internal.ErrCodeInvalidStatus)
	}
	if !dto.Status.Terminal() {
		return internal.NewValidationError("status must be either 'Approved' or 'Rejected'", internal.ErrCodeInvalidStatus)
	}
	return nil
}

// CommentDTO is the append-comment payload.
type CommentDTO struct {
	Text string `json:"text"`
}

func (dto CommentDTO) Validate() error {
	if strings.TrimSpace(dto.Text) == "" {
		return internal.NewValidationError("comment text is required", internal.ErrCodeEmptyComment)
	}
	return nil
}
