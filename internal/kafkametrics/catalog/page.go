package catalog

import (
	"math"

	"github.com/pkg/errors"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 25
)

// Page is a 1-based page request.
type Page struct {
	Page     int
	PageSize int
}

func (p Page) Validate() error {
	if p.Page < 1 {
		return errors.Errorf("page must be at least 1, got %d", p.Page)
	}
	if p.PageSize < 1 {
		return errors.Errorf("pageSize must be at least 1, got %d", p.PageSize)
	}
	return nil
}

// Offset is the number of rows before the page, saturating at math.MaxInt64.
func (p Page) Offset() int64 {
	skipped, size := int64(p.Page-1), int64(p.PageSize)
	if skipped <= 0 || size <= 0 {
		return 0
	}
	if skipped > math.MaxInt64/size {
		return math.MaxInt64
	}
	return skipped * size
}

// BeyondEnd reports whether the page starts after the last of total rows.
func (p Page) BeyondEnd(total int64) bool {
	return p.Offset() >= total
}

// TotalPages is ceil(total / PageSize).
func (p Page) TotalPages(total int64) int64 {
	if total <= 0 || p.PageSize <= 0 {
		return 0
	}
	size := int64(p.PageSize)
	return (total + size - 1) / size
}
