package domain

type UpsertOutcome string

const (
	OutcomeInserted UpsertOutcome = "inserted"
	OutcomeUpdated  UpsertOutcome = "updated"
)

type RecordOutcome struct {
	OptionSymbol string        `json:"option_symbol"`
	Outcome      UpsertOutcome `json:"outcome"`
}

// UpsertSummary reports a committed batch. Inserted+Updated always equals TotalProcessed.
type UpsertSummary struct {
	TotalProcessed int             `json:"total_processed"`
	Inserted       int             `json:"inserted"`
	Updated        int             `json:"updated"`
	Outcomes       []RecordOutcome `json:"outcomes"`
}

func (s *UpsertSummary) Add(optionSymbol string, o UpsertOutcome) {
	s.TotalProcessed++
	switch o {
	case OutcomeInserted:
		s.Inserted++
	case OutcomeUpdated:
		s.Updated++
	}
	s.Outcomes = append(s.Outcomes, RecordOutcome{OptionSymbol: optionSymbol, Outcome: o})
}
