package survey

import "strings"

// Classification is the closed set of outcomes for one respondent reply.
type Classification string

const (
	ClassificationSkipped     Classification = "skipped"
	ClassificationHighQuality Classification = "answered (high quality)"
	ClassificationLowQuality  Classification = "answered (low quality)"
	ClassificationOther       Classification = "other"
)

// ClassifiedReply is the transient result of classifying one reply.
// It is not persisted beyond the turn that produced it.
type ClassifiedReply struct {
	Label  Classification `json:"classification"`
	Reason string         `json:"reason"`
}

// ParseClassification maps a classifier label onto the closed variant set.
// Minor formatting drift from the model (case, hyphens) is tolerated.
func ParseClassification(label string) (Classification, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	normalized = strings.ReplaceAll(normalized, "-", " ")
	normalized = strings.ReplaceAll(normalized, "_", " ")

	switch normalized {
	case "skipped", "skip":
		return ClassificationSkipped, true
	case "answered (high quality)", "answered high quality", "high quality":
		return ClassificationHighQuality, true
	case "answered (low quality)", "answered low quality", "low quality":
		return ClassificationLowQuality, true
	case "other":
		return ClassificationOther, true
	}
	return "", false
}
