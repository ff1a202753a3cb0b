package scoring

import (
	"sort"
	"surveycore/internal/models"

	"github.com/RoaringBitmap/roaring/v2"
)

type ReliabilityStatus string

const (
	ReliabilityOK            ReliabilityStatus = "OK"
	ReliabilityNotComputable ReliabilityStatus = "NOT_COMPUTABLE"
)

// Reliability is Cronbach's alpha for one item set. Alpha is nil when the
// set is not computable.
type Reliability struct {
	Module      models.ModuleCode `json:"module"`
	Dimension   string            `json:"dimension,omitempty"`
	Items       int               `json:"items"`
	Respondents int               `json:"respondents"`
	Alpha       *float64          `json:"alpha"`
	Status      ReliabilityStatus `json:"status"`
}

// CronbachAlpha takes k item vectors of n scores each and returns
// (k/(k-1)) * (1 - sum(item variances)/variance(total)) with population
// variances. ok is false for k < 2, n < 2, ragged vectors or a zero total
// variance. The result is not clamped: a negative alpha is reported as is.
func CronbachAlpha(items [][]float64) (alpha float64, ok bool) {
	k := len(items)
	if k < 2 {
		return 0, false
	}
	n := len(items[0])
	if n < 2 {
		return 0, false
	}

	totals := make([]float64, n)
	sumItemVar := 0.0
	for _, item := range items {
		if len(item) != n {
			return 0, false
		}
		sumItemVar += populationVariance(item)
		for i, v := range item {
			totals[i] += v
		}
	}
	totalVar := populationVariance(totals)
	if totalVar == 0 {
		return 0, false
	}

	kf := float64(k)
	return kf / (kf - 1) * (1 - sumItemVar/totalVar), true
}

// ItemMatrix collects the Likert items of one module accepted by keep.
// Respondents are the submissions that answered at least one such item;
// only questions every one of them answered become item vectors, so
// partially covered items are dropped rather than zero-filled.
func ItemMatrix(subs []models.Submission, module models.ModuleCode, keep func(models.LikertPayload) bool) (items [][]float64, questions []string, respondents int) {
	var rows []map[string]float64
	for _, sub := range subs {
		row := map[string]float64{}
		for _, a := range sub.Answers {
			if a.ModuleCode != module {
				continue
			}
			p, ok := a.Payload.(models.LikertPayload)
			if !ok || (keep != nil && !keep(p)) {
				continue
			}
			row[a.QuestionID] = float64(p.Score())
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, nil, 0
	}

	answered := map[string]*roaring.Bitmap{}
	for i, row := range rows {
		for q := range row {
			bm, ok := answered[q]
			if !ok {
				bm = roaring.New()
				answered[q] = bm
			}
			bm.Add(uint32(i))
		}
	}
	for q, bm := range answered {
		if bm.GetCardinality() == uint64(len(rows)) {
			questions = append(questions, q)
		}
	}
	sort.Strings(questions)

	items = make([][]float64, 0, len(questions))
	for _, q := range questions {
		vec := make([]float64, len(rows))
		for i, row := range rows {
			vec[i] = row[q]
		}
		items = append(items, vec)
	}
	return items, questions, len(rows)
}

func reliabilityOf(module models.ModuleCode, dimension string, items [][]float64, respondents int) Reliability {
	r := Reliability{
		Module:      module,
		Dimension:   dimension,
		Items:       len(items),
		Respondents: respondents,
		Status:      ReliabilityNotComputable,
	}
	if alpha, ok := CronbachAlpha(items); ok {
		rounded := Round(alpha, 3)
		r.Alpha = &rounded
		r.Status = ReliabilityOK
	}
	return r
}

// ModuleReliability reports alpha for the whole module followed by one
// entry per dimension.
func ModuleReliability(subs []models.Submission, module models.ModuleCode) []Reliability {
	items, _, n := ItemMatrix(subs, module, nil)
	if n == 0 {
		return nil
	}
	out := []Reliability{reliabilityOf(module, "", items, n)}

	dimensions := map[string]struct{}{}
	for _, sub := range subs {
		for _, a := range sub.Answers {
			if p, ok := a.Payload.(models.LikertPayload); ok && a.ModuleCode == module && p.Dimension != "" {
				dimensions[p.Dimension] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(dimensions))
	for d := range dimensions {
		names = append(names, d)
	}
	sort.Strings(names)

	for _, d := range names {
		dim := d
		items, _, n := ItemMatrix(subs, module, func(p models.LikertPayload) bool { return p.Dimension == dim })
		out = append(out, reliabilityOf(module, dim, items, n))
	}
	return out
}
