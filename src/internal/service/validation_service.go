package service

import (
	"github.com/zyrohq/zyro/src/internal/config"
	"github.com/zyrohq/zyro/src/internal/errors"
	"github.com/zyrohq/zyro/src/internal/log"
)

// ValidationOutcome is the result of a successful validation. Duplicates
// that did not fail validation are reported as warnings.
type ValidationOutcome struct {
	Warnings   []string   `json:"warnings"`
	Duplicates []RouteKey `json:"duplicates"`

	// Config is the validated configuration.
	Config *config.RootConfig `json:"-"`
}

// ValidationService validates raw configuration documents.
//
// Schema violations always fail. Duplicate routes fail only in strict mode.
type ValidationService struct {
	logger *log.Logger
}

// NewValidationService creates a new validation service.
func NewValidationService() *ValidationService {
	return &ValidationService{
		logger: log.Named("ConfigValidator"),
	}
}

// Validate builds a RootConfig from raw and checks it for duplicate routes.
//
// A schema failure is returned as SCHEMA_VALIDATION_ERROR carrying every
// violated field. With strict set, any duplicate is returned as
// DUPLICATE_ROUTE_ERROR listing each repeated occurrence.
func (v *ValidationService) Validate(raw map[string]interface{}, strict bool) (*ValidationOutcome, error) {
	cfg, err := config.FromMap(raw)
	if err != nil {
		ve := err.(config.ValidationErrors)
		v.logger.Debugf("Schema validation failed with %d error(s)", len(ve))
		return nil, errors.NewSchemaError(ve.Details(), ve)
	}

	warnings, duplicates := DetectConflicts(cfg)

	if strict && len(duplicates) > 0 {
		details := make([]string, len(duplicates))
		for i, key := range duplicates {
			details[i] = key.String()
		}
		return nil, errors.NewDuplicateRouteError(details)
	}

	for _, warning := range warnings {
		v.logger.Warnf("%s", warning)
	}

	return &ValidationOutcome{
		Warnings:   warnings,
		Duplicates: duplicates,
		Config:     cfg,
	}, nil
}

// ValidateFile loads path and validates its content.
func (v *ValidationService) ValidateFile(path string, strict bool) (*ValidationOutcome, error) {
	raw, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return v.Validate(raw, strict)
}
