package otfbenchmark

import (
	"github.com/go-playground/validator/v10"
	"github.com/nsip/otf-benchmark/benchmark"
	"github.com/pkg/errors"
)

//
// requestValidator plugs go-playground/validator into echo
// so handlers can call c.Validate on bound requests.
//
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() (*requestValidator, error) {
	v := validator.New()
	// grade labels must parse into the canonical K..12 domain
	if err := v.RegisterValidation("grade", validGrade); err != nil {
		return nil, errors.Wrap(err, "cannot register grade validation")
	}
	return &requestValidator{v: v}, nil
}

func validGrade(fl validator.FieldLevel) bool {
	_, err := benchmark.ParseGrade(fl.Field().String())
	return err == nil
}

func (rv *requestValidator) Validate(i interface{}) error {
	return rv.v.Struct(i)
}
