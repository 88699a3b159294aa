// Package validators builds the format validators from local schema files.
package validators

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/abdidvp/dataval/internal/adapters/outbound/csvval"
	"github.com/abdidvp/dataval/internal/adapters/outbound/jsonval"
	"github.com/abdidvp/dataval/internal/adapters/outbound/xmlval"
	"github.com/abdidvp/dataval/internal/domain"
)

// Factory implements domain.ValidatorFactory.
type Factory struct {
	log *logrus.Logger
}

// NewFactory returns a factory that hands log to the validators it builds.
func NewFactory(log *logrus.Logger) *Factory {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Factory{log: log}
}

// XML compiles the XSD and, when schematronPath is set, loads the ruleset.
func (f *Factory) XML(xsdPath, schematronPath string) (domain.Validator, error) {
	opts := []xmlval.Option{xmlval.WithLogger(f.log)}
	if schematronPath != "" {
		sch, err := xmlval.LoadSchematron(schematronPath)
		if err != nil {
			return nil, err
		}
		f.log.WithField("path", schematronPath).WithField("rules", sch.RuleCount()).Debug("loaded schematron")
		opts = append(opts, xmlval.WithSchematron(sch))
	}
	v, err := xmlval.New(xsdPath, opts...)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (f *Factory) JSON(schemaPath string) (domain.Validator, error) {
	v, err := jsonval.New(schemaPath)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (f *Factory) CSV(specPath string) (domain.Validator, error) {
	v, err := csvval.NewFromFile(specPath)
	if err != nil {
		return nil, err
	}
	return v, nil
}
