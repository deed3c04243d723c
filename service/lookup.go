package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/Ezhil1K/ChemSure/config"
	"github.com/Ezhil1K/ChemSure/model"
	"github.com/Ezhil1K/ChemSure/pkg/logger"
	"github.com/go-playground/validator/v10"
)

// Backend endpoints
const (
	PathLookupByCAS  = "/lookup_by_cas_rn"
	PathLookupByName = "/lookup_by_substance_name"
	PathUploadMSDS   = "/upload_msds_pdf"

	UploadField = "msds_pdf"
)

// LookupClient dispatches searches and MSDS uploads to the GADSL lookup backend
type LookupClient struct {
	config     *config.LookupConfig
	httpClient *http.Client
	validate   *validator.Validate
}

func NewLookupClient(cfg *config.LookupConfig) *LookupClient {
	return &LookupClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		validate: validator.New(),
	}
}

// Search looks a substance up by CAS RN or by name.
// Invalid input is rejected before any request is made.
func (s *LookupClient) Search(ctx context.Context, query model.SearchQuery) ([]model.SubstanceRecord, error) {
	query = query.Normalized()
	if err := s.validateQuery(query); err != nil {
		return nil, err
	}

	var path string
	var body any
	switch query.Kind {
	case model.SearchByCAS:
		path, body = PathLookupByCAS, model.CASRequest{CASRN: query.Value}
	default:
		path, body = PathLookupByName, model.NameRequest{SubstanceName: query.Value}
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url(path), bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug(ctx, "dispatching search", "kind", query.Kind, "value", query.Value)
	return s.do(req, "search")
}

// Upload sends an MSDS PDF to be scanned for listed substances.
// Missing, non-PDF and oversized files are rejected before any request is made.
func (s *LookupClient) Upload(ctx context.Context, file model.UploadFile) ([]model.SubstanceRecord, error) {
	if err := s.validateUpload(file); err != nil {
		return nil, err
	}

	filename := file.Filename
	if filename == "" {
		filename = "msds.pdf"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, UploadField, escapeQuotes(filename)))
	header.Set("Content-Type", model.MediaTypePDF)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create form part: %w", err)
	}

	n, err := io.Copy(part, io.LimitReader(file.Content, model.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if n > model.MaxUploadBytes {
		return nil, ErrFileTooLarge
	}
	if n == 0 {
		return nil, ErrNoFile
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url(PathUploadMSDS), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	logger.Debug(ctx, "dispatching upload", "filename", filename, "size", n)
	return s.do(req, "upload")
}

func (s *LookupClient) validateQuery(query model.SearchQuery) error {
	err := s.validate.Struct(query)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate query: %w", err)
	}
	// Kind is checked first: an unknown action never reaches the value check.
	for _, fe := range fieldErrs {
		if fe.Field() == "Kind" {
			return ErrInvalidSearch
		}
	}
	return ErrEmptyInput
}

func (s *LookupClient) validateUpload(file model.UploadFile) error {
	if file.Content == nil || file.Size <= 0 {
		return ErrNoFile
	}

	err := s.validate.Struct(file)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate upload: %w", err)
	}
	for _, fe := range fieldErrs {
		if fe.Field() == "ContentType" {
			return ErrInvalidFileType
		}
	}
	return ErrFileTooLarge
}

func (s *LookupClient) do(req *http.Request, op string) ([]model.SubstanceRecord, error) {
	if s.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	var result model.LookupResponse
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if err := json.Unmarshal(body, &result); err == nil && result.Error != "" {
			message = result.Error
		}
		logger.Warn(req.Context(), "lookup backend error", "op", op, "status", resp.StatusCode, "error", message)
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: message}
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	logger.Debug(req.Context(), "lookup completed", "op", op, "results", len(result.Results))
	if result.Results == nil {
		return []model.SubstanceRecord{}, nil
	}
	return result.Results, nil
}

func (s *LookupClient) url(path string) string {
	return strings.TrimRight(s.config.BaseURL, "/") + path
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
