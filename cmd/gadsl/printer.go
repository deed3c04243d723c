package main

import (
	"fmt"
	"io"

	"github.com/Ezhil1K/ChemSure/model"
	"github.com/Ezhil1K/ChemSure/summary"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

type printer struct {
	out     io.Writer
	colours bool
}

func (p *printer) style(s color.Style, text string) string {
	if !p.colours {
		return text
	}
	return s.Render(text)
}

func (p *printer) records(records []model.SubstanceRecord) {
	for i, f := range summary.Render(records) {
		if i > 0 {
			fmt.Fprintln(p.out)
		}
		label := p.style(color.New(color.FgGreen, color.OpBold), "Summary:")
		if f.Fallback {
			label = p.style(color.New(color.FgYellow, color.OpBold), "Summary:")
		}
		fmt.Fprintf(p.out, "%s %s\n", label, f.Summary)
		p.details(f.Details)
	}
}

func (p *printer) details(details []summary.Detail) {
	table := tablewriter.NewWriter(p.out)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.AppendBulk(lo.Map(details, func(d summary.Detail, _ int) []string {
		return []string{d.Label + ":", d.Value}
	}))
	table.Render()
}

func (p *printer) notListed() {
	fmt.Fprintln(p.out, p.style(color.New(color.FgCyan, color.OpBold), "Substance Not Listed in GADSL"))
	fmt.Fprint(p.out, `If a substance is not listed in GADSL, it generally means:
  - Not a Known Concern: It isn't classified as regulated, restricted, or declarable.
  - No Compliance Requirement: No legal or voluntary reporting obligations apply.
  - New or Unclassified: It may be newly introduced or not yet reviewed.
  - Application-Specific: Its use in automotive products doesn't pose a known risk.
However, absence from GADSL doesn't guarantee safety or unrestricted use. Manufacturers should still check local regulations (REACH, TSCA), environmental impact, and occupational health risks.
`)
}

func (p *printer) noneInDocument() {
	fmt.Fprintln(p.out, p.style(color.New(color.FgCyan, color.OpBold), "No GADSL Substances Found in PDF"))
	fmt.Fprint(p.out, `Our analysis of the uploaded PDF did not identify any substances listed in the Global Automotive Declarable Substance List (GADSL).
  - This might be due to the PDF format (e.g., poor scan quality or image-based content).
  - The substances in your document might genuinely not be present in the current GADSL.
  - Always cross-check manually with the official GADSL if in doubt.
`)
}
