package models

type DocumentSource string

const (
	SourceAgency  DocumentSource = "AGENCY"
	SourceDirect  DocumentSource = "DIRECT"
	SourceUnknown DocumentSource = "UNKNOWN"
)

type QualityVerdict string

const (
	QualityPass QualityVerdict = "PASS"
	QualityFail QualityVerdict = "FAIL"
)

// QualityPassThreshold is the minimum total for a PASS verdict.
const QualityPassThreshold = 3

type Criterion struct {
	Score  int      `json:"score" mapstructure:"score"`
	Issues []string `json:"issues" mapstructure:"issues"`
}

type QualityCriteria struct {
	SpellingGrammar    Criterion `json:"spelling_grammar" mapstructure:"spelling_grammar"`
	FactualConsistency Criterion `json:"factual_consistency" mapstructure:"factual_consistency"`
	LayoutStructure    Criterion `json:"layout_structure" mapstructure:"layout_structure"`
	AttentionToDetail  Criterion `json:"attention_to_detail" mapstructure:"attention_to_detail"`
}

// Named returns the criteria in display order with their labels.
func (c QualityCriteria) Named() []NamedCriterion {
	return []NamedCriterion{
		{Name: "Spelling & grammar", Criterion: c.SpellingGrammar},
		{Name: "Factual consistency", Criterion: c.FactualConsistency},
		{Name: "Layout & structure", Criterion: c.LayoutStructure},
		{Name: "Attention to detail", Criterion: c.AttentionToDetail},
	}
}

type NamedCriterion struct {
	Name string
	Criterion
}

// QualityRecord is the outcome of the document quality review.
type QualityRecord struct {
	DocumentSource DocumentSource  `json:"document_source" mapstructure:"document_source"`
	AgencyName     *string         `json:"agency_name" mapstructure:"agency_name"`
	Criteria       QualityCriteria `json:"criteria" mapstructure:"criteria"`
	TotalScore     int             `json:"total_score" mapstructure:"total_score"`
	Verdict        QualityVerdict  `json:"verdict" mapstructure:"verdict"`
	Summary        string          `json:"summary" mapstructure:"summary"`
}

// DefaultQualityRecord is substituted when no usable review exists. It lets
// the document through: every criterion passes and no penalty follows.
func DefaultQualityRecord() QualityRecord {
	pass := Criterion{Score: 1, Issues: []string{}}
	return QualityRecord{
		DocumentSource: SourceUnknown,
		Criteria: QualityCriteria{
			SpellingGrammar:    pass,
			FactualConsistency: pass,
			LayoutStructure:    pass,
			AttentionToDetail:  pass,
		},
		TotalScore: 4,
		Verdict:    QualityPass,
		Summary:    "Quality review unavailable; document passed by default.",
	}
}

func (q QualityRecord) CriteriaSum() int {
	return q.Criteria.SpellingGrammar.Score +
		q.Criteria.FactualConsistency.Score +
		q.Criteria.LayoutStructure.Score +
		q.Criteria.AttentionToDetail.Score
}

// Consistent reports whether the total matches the criteria and the verdict
// matches the total.
func (q QualityRecord) Consistent() bool {
	if q.TotalScore != q.CriteriaSum() {
		return false
	}
	return (q.TotalScore >= QualityPassThreshold) == (q.Verdict == QualityPass)
}

// Issues flattens the issue lists of every criterion, prefixed by its label.
func (q QualityRecord) Issues() []string {
	var out []string
	for _, c := range q.Criteria.Named() {
		for _, issue := range c.Issues {
			out = append(out, c.Name+": "+issue)
		}
	}
	return out
}
