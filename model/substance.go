package model

import (
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SubstanceRecord is a GADSL entry as returned by the lookup backend.
// Every field is optional.
type SubstanceRecord struct {
	GADSLHash          string `json:"gadsl_hash,omitempty"`
	RefHash            string `json:"ref_hash,omitempty"`
	SubstanceName      string `json:"substance_name,omitempty"`
	CASRN              string `json:"cas_rn,omitempty"`
	Classification     string `json:"classification,omitempty"`
	ReasonCode         string `json:"reason_code,omitempty"`
	Source             string `json:"source,omitempty"`
	ReportingThreshold string `json:"reporting_threshold,omitempty"`
	FirstAdded         string `json:"first_added,omitempty"`
	LastRevised        string `json:"last_revised,omitempty"`
	GenericExamples    string `json:"generic_examples,omitempty"`
}

// SearchKind selects the lookup endpoint
type SearchKind string

const (
	SearchByCAS  SearchKind = "cas"
	SearchByName SearchKind = "name"
)

// SearchQuery is a single search submission
type SearchQuery struct {
	Kind  SearchKind `json:"kind" validate:"required,oneof=cas name"`
	Value string     `json:"value" validate:"required"`
}

// Normalized returns the query with its value trimmed and NFKC-normalized
func (q SearchQuery) Normalized() SearchQuery {
	return SearchQuery{
		Kind:  SearchKind(strings.ToLower(strings.TrimSpace(string(q.Kind)))),
		Value: strings.TrimSpace(norm.NFKC.String(q.Value)),
	}
}

// MaxUploadBytes is the largest MSDS PDF accepted (5 MiB)
const MaxUploadBytes int64 = 5 * 1024 * 1024

// MediaTypePDF is the only accepted upload media type
const MediaTypePDF = "application/pdf"

// UploadFile is an MSDS document selected for upload
type UploadFile struct {
	Filename    string
	ContentType string    `validate:"eq=application/pdf"`
	Size        int64     `validate:"max=5242880"`
	Content     io.Reader `validate:"-"`
}

// CASRequest is the body of POST /lookup_by_cas_rn
type CASRequest struct {
	CASRN string `json:"cas_rn"`
}

// NameRequest is the body of POST /lookup_by_substance_name
type NameRequest struct {
	SubstanceName string `json:"substance_name"`
}

// LookupResponse is the backend success and error payload
type LookupResponse struct {
	Results []SubstanceRecord `json:"results"`
	Error   string            `json:"error,omitempty"`
}
