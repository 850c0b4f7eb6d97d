package config

import "errors"

// Errors returned by [Load] for fatal resolution failures.
var (
	// ErrMalformedFile indicates the local configuration file exists but
	// cannot be parsed. Always fatal.
	ErrMalformedFile = errors.New("malformed configuration file")

	// ErrMandatorySection indicates a section the caller designated
	// mandatory via [WithMandatory] resolved absent or was omitted after a
	// validation failure.
	ErrMandatorySection = errors.New("mandatory configuration section unresolved")

	// ErrUnknownSection indicates a section name passed to [WithMandatory]
	// that the engine does not recognize.
	ErrUnknownSection = errors.New("unknown configuration section")
)
