package scoring

import "surveycore/internal/models"

type ReportOptions struct {
	Gaps GapThresholds
}

// Report is the full aggregate of one population of submissions.
type Report struct {
	Respondents   int              `json:"respondents"`
	Culture       *CultureProfile  `json:"culture,omitempty"`
	CultureGaps   []Gap            `json:"cultureGaps,omitempty"`
	DimensionGaps []Gap            `json:"dimensionGaps,omitempty"`
	Likert        []*LikertSummary `json:"likert,omitempty"`
	Reliability   []Reliability    `json:"reliability,omitempty"`
	Demographics  Distribution     `json:"demographics"`
}

// BuildReport aggregates every pooled module. The multi-rater module is
// left to AnalyzeMultiRater because its answers only mean something per
// assessment.
func BuildReport(subs []models.Submission, opts ReportOptions) Report {
	if opts.Gaps == (GapThresholds{}) {
		opts.Gaps = DefaultGapThresholds
	}
	r := Report{
		Respondents:  len(subs),
		Demographics: Demographics(subs),
	}

	r.Culture = AggregateIpsative(subs)
	r.CultureGaps = CultureGaps(r.Culture, opts.Gaps)
	r.DimensionGaps = DimensionGaps(r.Culture, opts.Gaps)

	for _, code := range presentModules(subs) {
		spec, ok := models.LookupModule(code)
		if !ok || spec.Format != models.FormatLikert || spec.MultiRater {
			continue
		}
		if summary := AggregateLikert(subs, code); summary != nil {
			r.Likert = append(r.Likert, summary)
		}
		r.Reliability = append(r.Reliability, ModuleReliability(subs, code)...)
	}
	return r
}

func presentModules(subs []models.Submission) []models.ModuleCode {
	seen := map[models.ModuleCode]struct{}{}
	var codes []models.ModuleCode
	for _, sub := range subs {
		for _, a := range sub.Answers {
			if _, ok := seen[a.ModuleCode]; !ok {
				seen[a.ModuleCode] = struct{}{}
				codes = append(codes, a.ModuleCode)
			}
		}
	}
	return models.SortModules(codes)
}
