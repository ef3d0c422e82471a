package retrieval

// Stage identifies a step of the fallback sequence.
type Stage int

// Retrieval stages, from strict to permissive.
const (
	StageEmbed Stage = iota
	StageQuery
	StageThreshold
	StageNonEmpty
	StageListAll
	StageAssemble
	StagePlaceholder
)

var stageNames = [...]string{
	StageEmbed:       "embed",
	StageQuery:       "query",
	StageThreshold:   "threshold",
	StageNonEmpty:    "non_empty",
	StageListAll:     "list_all",
	StageAssemble:    "assemble",
	StagePlaceholder: "placeholder",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}
