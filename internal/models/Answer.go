package models

import (
	"fmt"
	"math"
	"sort"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"
)

type Alternative string

const (
	AlternativeA Alternative = "A"
	AlternativeB Alternative = "B"
	AlternativeC Alternative = "C"
	AlternativeD Alternative = "D"
)

var Alternatives = []Alternative{AlternativeA, AlternativeB, AlternativeC, AlternativeD}

type Perspective string

const (
	PerspectiveCurrent   Perspective = "current"
	PerspectivePreferred Perspective = "preferred"
)

type PayloadKind string

const (
	KindIpsative PayloadKind = "ipsative"
	KindLikert   PayloadKind = "likert"
)

// Payload is the closed set of answer shapes. Exactly one of
// IpsativePayload or LikertPayload.
type Payload interface {
	Kind() PayloadKind
	validate(spec ModuleSpec) (Payload, error)
}

// IpsativePayload distributes 100 points over the four alternatives of one
// dimension. Absent alternatives count as zero.
type IpsativePayload struct {
	Dimension    string
	Perspective  Perspective
	Distribution map[Alternative]int
}

func (p IpsativePayload) Kind() PayloadKind { return KindIpsative }

func (p IpsativePayload) Points(alt Alternative) int {
	return p.Distribution[alt]
}

func (p IpsativePayload) Total() int {
	total := 0
	for _, v := range p.Distribution {
		total += v
	}
	return total
}

// Partial sums are accepted while a respondent is still moving points around.
func (p IpsativePayload) validate(spec ModuleSpec) (Payload, error) {
	if spec.Format != FormatIpsative {
		return nil, NewError(CodeInvalidAnswer, "module %s does not take ipsative answers", spec.Code)
	}
	if p.Dimension == "" {
		return nil, NewError(CodeInvalidAnswer, "ipsative answer has no dimension")
	}
	if p.Perspective != PerspectiveCurrent && p.Perspective != PerspectivePreferred {
		return nil, NewError(CodeInvalidAnswer, "unknown perspective %q", p.Perspective)
	}
	dist := make(map[Alternative]int, len(p.Distribution))
	for alt, v := range p.Distribution {
		if !isAlternative(alt) {
			return nil, NewError(CodeInvalidAnswer, "unknown alternative %q", alt)
		}
		if v < 0 || v > 100 {
			return nil, NewError(CodeInvalidAnswer, "alternative %s has %d points, expected 0..100", alt, v)
		}
		dist[alt] = v
	}
	p.Distribution = dist
	return p, nil
}

func isAlternative(a Alternative) bool {
	for _, alt := range Alternatives {
		if alt == a {
			return true
		}
	}
	return false
}

type LikertPayload struct {
	Dimension     string
	Subdimension  string
	Value         int
	ScaleMin      int
	ScaleMax      int
	ReverseScored bool
}

func (p LikertPayload) Kind() PayloadKind { return KindLikert }

// Score is the value used in aggregation, reversed for reverse-keyed items.
func (p LikertPayload) Score() int {
	if p.ReverseScored {
		return p.ScaleMin + p.ScaleMax - p.Value
	}
	return p.Value
}

// Group is the finest grouping label the item carries.
func (p LikertPayload) Group() string {
	if p.Subdimension != "" {
		return p.Subdimension
	}
	return p.Dimension
}

func (p LikertPayload) validate(spec ModuleSpec) (Payload, error) {
	if spec.Format != FormatLikert {
		return nil, NewError(CodeInvalidAnswer, "module %s does not take likert answers", spec.Code)
	}
	if p.Dimension == "" && p.Subdimension == "" {
		return nil, NewError(CodeInvalidAnswer, "likert answer has no dimension")
	}
	if p.ScaleMax == 0 {
		p.ScaleMax = spec.ScaleMax
	}
	if p.ScaleMax != spec.ScaleMax {
		return nil, NewError(CodeInvalidAnswer, "scale maximum %d does not match module scale %d..%d", p.ScaleMax, spec.ScaleMin, spec.ScaleMax)
	}
	p.ScaleMin = spec.ScaleMin
	if p.Value < p.ScaleMin || p.Value > p.ScaleMax {
		return nil, NewError(CodeInvalidAnswer, "value %d outside %d..%d", p.Value, p.ScaleMin, p.ScaleMax)
	}
	return p, nil
}

// NormalizePayload validates p against the module it is saved under and
// fills module defaults such as the Likert scale maximum.
func NormalizePayload(p Payload, spec ModuleSpec) (Payload, error) {
	if p == nil {
		return nil, NewError(CodeInvalidAnswer, "answer has no payload")
	}
	return p.validate(spec)
}

type Answer struct {
	ResponseID string
	ModuleCode ModuleCode
	QuestionID string
	Payload    Payload
}

// payloadEnvelope is the wire form of a Payload. Numeric fields are decoded
// leniently so that "4" and 4 are both accepted from form-driven clients.
type payloadEnvelope struct {
	Kind          PayloadKind         `json:"kind"`
	Dimension     string              `json:"dimension,omitempty"`
	Perspective   Perspective         `json:"perspective,omitempty"`
	Distribution  map[Alternative]any `json:"distribution,omitempty"`
	Subdimension  string              `json:"subdimension,omitempty"`
	Value         any                 `json:"value,omitempty"`
	ScaleMin      *int                `json:"scaleMin,omitempty"`
	ScaleMax      any                 `json:"scaleMax,omitempty"`
	ReverseScored bool                `json:"reverseScored,omitempty"`
}

func MarshalPayload(p Payload) ([]byte, error) {
	switch v := p.(type) {
	case IpsativePayload:
		dist := make(map[Alternative]any, len(v.Distribution))
		for alt, pts := range v.Distribution {
			dist[alt] = pts
		}
		return json.Marshal(payloadEnvelope{
			Kind:         KindIpsative,
			Dimension:    v.Dimension,
			Perspective:  v.Perspective,
			Distribution: dist,
		})
	case LikertPayload:
		return json.Marshal(payloadEnvelope{
			Kind:          KindLikert,
			Dimension:     v.Dimension,
			Subdimension:  v.Subdimension,
			Value:         v.Value,
			ScaleMin:      &v.ScaleMin,
			ScaleMax:      v.ScaleMax,
			ReverseScored: v.ReverseScored,
		})
	default:
		return nil, fmt.Errorf("unsupported payload type %T", p)
	}
}

func UnmarshalPayload(data []byte) (Payload, error) {
	var env payloadEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, NewError(CodeInvalidAnswer, "malformed answer: %v", err)
	}

	switch env.Kind {
	case KindIpsative:
		dist := make(map[Alternative]int, len(env.Distribution))
		for alt, raw := range env.Distribution {
			v, err := toInt(raw)
			if err != nil {
				return nil, NewError(CodeInvalidAnswer, "alternative %s: %v", alt, err)
			}
			dist[alt] = v
		}
		return IpsativePayload{Dimension: env.Dimension, Perspective: env.Perspective, Distribution: dist}, nil
	case KindLikert:
		value, err := toInt(env.Value)
		if err != nil {
			return nil, NewError(CodeInvalidAnswer, "value: %v", err)
		}
		scaleMax := 0
		if env.ScaleMax != nil {
			if scaleMax, err = toInt(env.ScaleMax); err != nil {
				return nil, NewError(CodeInvalidAnswer, "scaleMax: %v", err)
			}
		}
		scaleMin := 0
		if env.ScaleMin != nil {
			scaleMin = *env.ScaleMin
		}
		return LikertPayload{
			Dimension:     env.Dimension,
			Subdimension:  env.Subdimension,
			Value:         value,
			ScaleMin:      scaleMin,
			ScaleMax:      scaleMax,
			ReverseScored: env.ReverseScored,
		}, nil
	default:
		return nil, NewError(CodeInvalidAnswer, "unknown answer kind %q", env.Kind)
	}
}

func toInt(v any) (int, error) {
	if v == nil {
		return 0, fmt.Errorf("missing number")
	}
	switch n := v.(type) {
	case bool:
		return 0, fmt.Errorf("%v is not a number", n)
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
	}
	return cast.ToIntE(v)
}

type answerJSON struct {
	ResponseID string          `json:"responseId"`
	ModuleCode ModuleCode      `json:"moduleCode"`
	QuestionID string          `json:"questionId"`
	Payload    json.RawMessage `json:"payload"`
}

func (a Answer) MarshalJSON() ([]byte, error) {
	payload, err := MarshalPayload(a.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(answerJSON{
		ResponseID: a.ResponseID,
		ModuleCode: a.ModuleCode,
		QuestionID: a.QuestionID,
		Payload:    payload,
	})
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var raw answerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	payload, err := UnmarshalPayload(raw.Payload)
	if err != nil {
		return err
	}
	*a = Answer{ResponseID: raw.ResponseID, ModuleCode: raw.ModuleCode, QuestionID: raw.QuestionID, Payload: payload}
	return nil
}

// SortAnswers orders answers by module then question id.
func SortAnswers(answers []Answer) {
	sort.Slice(answers, func(i, j int) bool {
		if answers[i].ModuleCode != answers[j].ModuleCode {
			return answers[i].ModuleCode < answers[j].ModuleCode
		}
		return answers[i].QuestionID < answers[j].QuestionID
	})
}
