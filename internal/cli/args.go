package cli

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"fitexport/internal/fitbit"
)

// ExportArgs are the positional arguments and flags of the export command.
type ExportArgs struct {
	BaseDate    string `arg:"base_date" validate:"required,basedate"`
	DetailLevel string `arg:"detail_level" validate:"required,oneof=1sec 1min"`
	OutputFile  string `arg:"output_file" validate:"required"`
	StartTime   string `arg:"--start_time" validate:"required_with=EndTime,omitempty,clocktime"`
	EndTime     string `arg:"--end_time" validate:"required_with=StartTime,omitempty,clocktime"`
}

func newArgsValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("arg")
	})
	_ = validate.RegisterValidation("basedate", func(fl validator.FieldLevel) bool {
		return fitbit.IsBaseDate(fl.Field().String())
	})
	_ = validate.RegisterValidation("clocktime", func(fl validator.FieldLevel) bool {
		return fitbit.IsClockTime(fl.Field().String())
	})
	return validate
}

// Validate checks the arguments and returns one readable error listing every
// problem found.
func (a *ExportArgs) Validate() error {
	err := newArgsValidator().Struct(a)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("invalid arguments:\n  - %s", strings.Join(msgs, "\n  - "))
}

func describeFieldError(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "basedate":
		return fmt.Sprintf("%s %q must be a date in yyyy-MM-dd format or \"today\"", name, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s %q must be one of: %s", name, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "clocktime":
		return fmt.Sprintf("%s %q must be a time in HH:mm format", name, fe.Value())
	case "required_with":
		return "--start_time and --end_time must be given together"
	default:
		return fmt.Sprintf("%s is invalid (%s)", name, fe.Tag())
	}
}

// Params converts the arguments into an intraday request for heart rate.
func (a *ExportArgs) Params() fitbit.IntradayParams {
	return fitbit.IntradayParams{
		Resource:    fitbit.ResourceHeart,
		BaseDate:    a.BaseDate,
		DetailLevel: fitbit.DetailLevel(a.DetailLevel),
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
	}
}
