package summary

// Classification is the top-level GADSL status of a substance
type Classification string

const (
	Declarable           Classification = "D"
	Prohibited           Classification = "P"
	DeclarableProhibited Classification = "D/P"
	ForInformation       Classification = "FI"
)

// Known reports whether c has its own summary texts
func (c Classification) Known() bool {
	_, ok := defaults[c]
	return ok
}

type entryKey struct {
	class   Classification
	reasons string
}

const (
	declareAboveThreshold = "Must be declared if present above 0.1%."
	declareOverLimits     = "Must be declared if it exceeds defined threshold limits."
	prohibitedLead        = "is classified as Prohibited, meaning it is banned for automotive use in at least one region or market."
)

// entries holds the texts for exact (classification, reason key) matches.
// Each text follows the "<name> (CAS RN: <cas>)" subject.
var entries = map[entryKey]string{
	{DeclarableProhibited, "FA&FI&LR"}: "is classified as Declarable/Prohibited (D/P). The substance has mixed classification, meaning it can be declared or prohibited depending on the application. It is tracked for information, legally regulated, and under assessment. " + declareAboveThreshold,
	{DeclarableProhibited, "FA&LR"}:    "is classified as Declarable/Prohibited (D/P). Declared or prohibited, under assessment and legally restricted. " + declareAboveThreshold,
	{DeclarableProhibited, "FI&LR"}:    "is classified as Declarable/Prohibited (D/P). Both declarable and prohibited, tracked for information and legally regulated. " + declareAboveThreshold,
	{DeclarableProhibited, "FA"}:       "is classified as Declarable/Prohibited (D/P). Either declarable or prohibited, with ongoing assessment for stricter regulation. " + declareAboveThreshold,
	{DeclarableProhibited, "LR"}:       "is classified as Declarable/Prohibited (D/P). The substance has both allowed and prohibited uses, requiring careful evaluation. It is also legally regulated. " + declareAboveThreshold,

	{Prohibited, "LR"}: prohibitedLead + " Legally Regulated status, indicating restrictions due to health and environmental risks.",
	{Prohibited, "FA"}: prohibitedLead + " It is also For Assessment (FA), meaning it is under review for possible regulation adjustments.",

	{Declarable, "FA&FI&LR"}: "is classified as Declarable (D). Declared, tracked for information, legally regulated, and under assessment. " + declareOverLimits,
	{Declarable, "FA&FI"}:    "is classified as Declarable (D). Declared for information, but also under assessment for regulation. " + declareOverLimits,
	{Declarable, "FI&LR"}:    "is classified as Declarable (D). Declared for information and legally regulated in at least one market. " + declareOverLimits,
	{Declarable, "FA&LR"}:    "is classified as Declarable (D). Declared, legally regulated, and under assessment for stricter control. " + declareOverLimits,
	{Declarable, "FA"}:       "is classified as Declarable (D). Must be declared and is under review for potential future regulation. " + declareOverLimits,
	{Declarable, "LR"}:       "is classified as Declarable (D). Must be declared and is legally restricted due to environmental or health risks. " + declareOverLimits,
	{Declarable, "FI"}:       "is classified as Declarable (D). Must be declared if above threshold but tracked only for information, without current regulatory restrictions. " + declareOverLimits,
}

// defaults holds the per-classification text used when no reason key matches.
// FI has no entries, so every FI record resolves here.
var defaults = map[Classification]string{
	DeclarableProhibited: "is classified as Declarable/Prohibited (D/P). This substance has both allowed and prohibited uses in at least one region/market. Evaluate the substance entry to determine if individual substances are declarable or prohibited. " + declareAboveThreshold,
	Prohibited:           prohibitedLead,
	Declarable:           "is classified as Declarable (D). This substance must be declared if it exceeds defined threshold limits.",
	ForInformation:       "is classified as For Information (FI). This substance is tracked for informational purposes; no current regulatory prohibition or de-selection based solely on GADSL listing.",
}

const fallbackFormat = "is classified as %s. Reason Code: %s. (Definition not explicitly available in this tool. Refer to official GADSL documentation.)"

// Resolve returns the summary text for a classification and canonical reason
// key, and whether the global fallback had to be used. Tiers are tried in
// order: exact entry, classification default, fallback.
func Resolve(class Classification, reasonKey string) (string, bool) {
	if text, ok := entries[entryKey{class, reasonKey}]; ok {
		return text, false
	}
	if text, ok := defaults[class]; ok {
		return text, false
	}
	return "", true
}
