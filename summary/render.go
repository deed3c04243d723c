// Package summary turns GADSL records into display fragments with a
// compliance summary chosen from a fixed classification table.
package summary

import (
	"fmt"
	"strings"

	"github.com/Ezhil1K/ChemSure/model"
	"github.com/samber/lo"
)

const (
	notAvailable     = "N/A"
	defaultThreshold = "0.1%"
)

// Detail is one labelled line under a summary
type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Fragment is the display form of one record
type Fragment struct {
	Summary  string   `json:"summary"`
	Fallback bool     `json:"fallback"`
	Details  []Detail `json:"details"`
}

type detailField struct {
	label string
	value func(model.SubstanceRecord) string
}

var detailFields = []detailField{
	{"Substance Name", func(r model.SubstanceRecord) string { return r.SubstanceName }},
	{"CAS RN", func(r model.SubstanceRecord) string { return r.CASRN }},
	{"Source", func(r model.SubstanceRecord) string { return r.Source }},
	{"Reporting Threshold", func(r model.SubstanceRecord) string { return threshold(r.ReportingThreshold) }},
	{"First Added", func(r model.SubstanceRecord) string { return r.FirstAdded }},
	{"Last Revised", func(r model.SubstanceRecord) string { return r.LastRevised }},
	{"Generic Examples", func(r model.SubstanceRecord) string { return r.GenericExamples }},
}

// Render produces one fragment per record, in input order
func Render(records []model.SubstanceRecord) []Fragment {
	return lo.Map(records, func(r model.SubstanceRecord, _ int) Fragment {
		return RenderRecord(r)
	})
}

// RenderRecord builds the fragment for a single record
func RenderRecord(r model.SubstanceRecord) Fragment {
	class := Classification(strings.TrimSpace(r.Classification))
	rawReason := strings.ToUpper(strings.TrimSpace(r.ReasonCode))

	subject := fmt.Sprintf("%s (CAS RN: %s)", orNA(r.SubstanceName), orNA(r.CASRN))

	text, fallback := Resolve(class, ReasonKey(r.ReasonCode))
	if fallback {
		text = fmt.Sprintf(fallbackFormat, orNA(string(class)), orNA(rawReason))
	}

	details := make([]Detail, 0, len(detailFields)+2)
	if fallback {
		details = append(details,
			Detail{Label: "Classification", Value: orNA(string(class))},
			Detail{Label: "Reason Code", Value: orNA(rawReason)},
		)
	}
	for _, f := range detailFields {
		details = append(details, Detail{Label: f.label, Value: orNA(f.value(r))})
	}

	return Fragment{
		Summary:  subject + " " + text,
		Fallback: fallback,
		Details:  details,
	}
}

func threshold(v string) string {
	if t := strings.TrimSpace(v); t == "" || t == notAvailable {
		return defaultThreshold
	}
	return v
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return notAvailable
	}
	return v
}
