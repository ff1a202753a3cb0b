package models

import "sort"

type ModuleCode string

const (
	ModuleOCAI ModuleCode = "M1_OCAI"
	ModuleQCI  ModuleCode = "M2_QCI"
	ModuleMSAI ModuleCode = "M3_MSAI"
	ModuleUWES ModuleCode = "M4_UWES"
	ModulePKE  ModuleCode = "M5_PKE"
	ModuleSPU  ModuleCode = "M6_SPU"
)

type QuestionFormat string

const (
	FormatIpsative QuestionFormat = "ipsative"
	FormatLikert   QuestionFormat = "likert"
)

// ModuleSpec describes how answers of one instrument are captured.
// Likert answers range over ScaleMin..ScaleMax inclusive. MultiRater marks the 360° instrument, whose answers are grouped by rater
// perspective instead of pooled across the campaign.
type ModuleSpec struct {
	Code       ModuleCode
	Format     QuestionFormat
	ScaleMin   int
	ScaleMax   int
	MultiRater bool
}

var moduleSpecs = map[ModuleCode]ModuleSpec{
	ModuleOCAI: {Code: ModuleOCAI, Format: FormatIpsative},
	ModuleQCI:  {Code: ModuleQCI, Format: FormatLikert, ScaleMin: 1, ScaleMax: 5},
	ModuleMSAI: {Code: ModuleMSAI, Format: FormatLikert, ScaleMin: 1, ScaleMax: 5, MultiRater: true},
	ModuleUWES: {Code: ModuleUWES, Format: FormatLikert, ScaleMin: 0, ScaleMax: 6},
	ModulePKE:  {Code: ModulePKE, Format: FormatLikert, ScaleMin: 1, ScaleMax: 5},
	ModuleSPU:  {Code: ModuleSPU, Format: FormatLikert, ScaleMin: 1, ScaleMax: 5},
}

func LookupModule(code ModuleCode) (ModuleSpec, bool) {
	spec, ok := moduleSpecs[code]
	return spec, ok
}

// SortModules orders codes by their instrument number.
func SortModules(codes []ModuleCode) []ModuleCode {
	out := append([]ModuleCode(nil), codes...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func ValidModuleSet(codes []ModuleCode) bool {
	if len(codes) == 0 {
		return false
	}
	for _, c := range codes {
		if _, ok := moduleSpecs[c]; !ok {
			return false
		}
	}
	return true
}
