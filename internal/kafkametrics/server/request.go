package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/G-Research/kafkametrics/internal/kafkametrics/catalog"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/model"
)

const maxRequestBytes = 1 << 20

// metricsRequest is the body accepted by every POST endpoint. Page and PageSize only matter for table data.
type metricsRequest struct {
	Filters  model.Filter `json:"filters"`
	Page     *int         `json:"page"`
	PageSize *int         `json:"pageSize"`
}

// badRequestError marks a failure caused by the client's input.
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string {
	return e.err.Error()
}

func (e *badRequestError) Unwrap() error {
	return e.err
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterStructValidation(dateRangeValidation, model.DateRange{})
	return validate
}

func dateRangeValidation(sl validator.StructLevel) {
	dateRange := sl.Current().Interface().(model.DateRange)
	if dateRange.Start.IsSet() && dateRange.End.IsSet() && dateRange.Start.After(dateRange.End.Time) {
		sl.ReportError(dateRange.End, "End", "end", "gtefield", "Start")
	}
}

// decodeRequest reads and validates the request body. An empty body is the same as {}.
func (s *Server) decodeRequest(r *http.Request) (*metricsRequest, error) {
	req := &metricsRequest{}
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := decoder.Decode(req); err != nil && !errors.Is(err, io.EOF) {
		return nil, &badRequestError{errors.Wrap(err, "invalid request body")}
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, &badRequestError{describeValidationErrors(err)}
	}
	if req.Page != nil && *req.Page < 1 {
		return nil, &badRequestError{errors.Errorf("page must be at least 1, got %d", *req.Page)}
	}
	if req.PageSize != nil && (*req.PageSize < 1 || *req.PageSize > s.maxPageSize) {
		return nil, &badRequestError{errors.Errorf("pageSize must be between 1 and %d, got %d", s.maxPageSize, *req.PageSize)}
	}
	return req, nil
}

func (s *Server) page(req *metricsRequest) catalog.Page {
	page := catalog.Page{Page: catalog.DefaultPage, PageSize: s.defaultPageSize}
	if req.Page != nil {
		page.Page = *req.Page
	}
	if req.PageSize != nil {
		page.PageSize = *req.PageSize
	}
	return page
}

func describeValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		field := stripPrefix(fieldErr.Namespace())
		switch fieldErr.Tag() {
		case "gtefield":
			messages = append(messages, fmt.Sprintf("%s must not be before %s", field, fieldErr.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid (%s)", field, fieldErr.Tag()))
		}
	}
	return errors.New(strings.Join(messages, "; "))
}

func stripPrefix(s string) string {
	if idx := strings.Index(s, "."); idx != -1 {
		return s[idx+1:]
	}
	return s
}
