package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aristath/reinsim/internal/domain"
)

// SimulationRequest is the body of POST /api/simulations
type SimulationRequest struct {
	Portfolio      string  `json:"portfolio" validate:"required,portfolio"`
	PolicyCount    int     `json:"policy_count" validate:"min=100,max=10000"`
	MeanLoss       float64 `json:"mean_loss" validate:"min=1000,max=20000"`
	StdDev         float64 `json:"std_dev" validate:"min=500,max=10000"`
	SimulatedYears int     `json:"simulated_years" validate:"min=1,max=50"`
	Seed           *uint64 `json:"seed,omitempty"`
}

// ToConfig converts a validated request into a portfolio config
func (r SimulationRequest) ToConfig() (domain.PortfolioConfig, error) {
	kind, err := domain.ParsePortfolioKind(r.Portfolio)
	if err != nil {
		return domain.PortfolioConfig{}, err
	}
	return domain.PortfolioConfig{
		Kind: kind,
		LossParams: domain.LossParams{
			PolicyCount:    r.PolicyCount,
			MeanLoss:       r.MeanLoss,
			StdDev:         r.StdDev,
			SimulatedYears: r.SimulatedYears,
		},
	}, nil
}

// ValidationError lists the offending request fields
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

// requestValidator wraps validator with JSON field names
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("portfolio", func(fl validator.FieldLevel) bool {
		_, err := domain.ParsePortfolioKind(fl.Field().String())
		return err == nil
	})

	return &requestValidator{validate: v}
}

// Validate checks i and returns a *ValidationError describing every failed field
func (v *requestValidator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fe.Field()] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "portfolio":
		return "must be one of Life, Health, Combined"
	default:
		return "is invalid"
	}
}
