package models

import "github.com/gookit/validate"

// Demographics are coarse self-reported bands. Only enumerated bands are
// accepted so a free-text value cannot single out a respondent.
type Demographics struct {
	AgeRange         string `json:"ageRange,omitempty" validate:"in:18-25,26-35,36-45,46-55,56+"`
	SeniorityRange   string `json:"seniorityRange,omitempty" validate:"in:0-2,3-5,6-10,11-20,21+"`
	Department       string `json:"department,omitempty" validate:"maxLen:32|alphaDash"`
	StakeholderGroup string `json:"stakeholderGroup,omitempty" validate:"in:ACADEMIC,ADMINISTRATIVE,STUDENT,EXTERNAL"`
}

func (d Demographics) Validate() error {
	v := validate.Struct(&d)
	if !v.Validate() {
		return NewError(CodeInvalidAnswer, "demographics: %s", v.Errors.One())
	}
	return nil
}
