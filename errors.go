package geosearch

import (
	"errors"
	"fmt"

	"github.com/hupe1980/geosearch/analysis"
	"github.com/hupe1980/geosearch/search"
	"github.com/hupe1980/geosearch/segment"
)

var (
	// ErrInvalidConfig is returned for unusable index or field configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInvalidQuery is returned for filters that cannot be prepared.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrUnknownField is returned for fields the index does not define.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidDocument is returned for documents that are not JSON objects.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrNotFound is returned by First when nothing matches.
	ErrNotFound = errors.New("not found")
)

// ErrInvalidAnalyzer indicates a field whose analyzer configuration was
// rejected. It matches ErrInvalidConfig with errors.Is.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrInvalidAnalyzer struct {
	Kind  analysis.Kind
	cause error
}

func (e *ErrInvalidAnalyzer) Error() string {
	return fmt.Sprintf("invalid %s analyzer: %v", e.Kind, e.cause)
}

func (e *ErrInvalidAnalyzer) Unwrap() error { return e.cause }

func (e *ErrInvalidAnalyzer) Is(target error) bool { return target == ErrInvalidConfig }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, segment.ErrUnknownField) {
		return fmt.Errorf("%w: %w", ErrUnknownField, err)
	}

	var ce *analysis.ConfigError
	if errors.As(err, &ce) {
		return &ErrInvalidAnalyzer{Kind: ce.Kind, cause: err}
	}
	if errors.Is(err, segment.ErrInvalidField) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if errors.Is(err, search.ErrInvalidFilter) {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	if errors.Is(err, segment.ErrInvalidDocument) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return err
}
