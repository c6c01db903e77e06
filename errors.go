package reporting

import "errors"

var (
	// Configuration errors.
	ErrNoStore     = errors.New("reporting: no store configured")
	ErrNoSubmitter = errors.New("reporting: no submitter configured")

	// Store errors.
	ErrReportNotFound = errors.New("reporting: report not found")
	ErrReportExists   = errors.New("reporting: report already exists")

	// Event construction errors.
	ErrEmptyInstanceID = errors.New("reporting: instance id must not be empty")
)
