package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/abdidvp/dataval/internal/domain"
)

// ErrSchematronWithoutXSD is returned when a Schematron ruleset is configured
// with no XSD to pair it with.
var ErrSchematronWithoutXSD = errors.New("schematron requires an xsd")

// BuildValidators resolves every configured schema and constructs the
// kind -> validator map. Any failure aborts before a file is processed.
func BuildValidators(
	ctx context.Context,
	schemas domain.SchemaSet,
	resolver domain.SchemaResolver,
	factory domain.ValidatorFactory,
	log *logrus.Logger,
) (_ map[domain.Kind]domain.Validator, err error) {
	if log == nil {
		log = discardLogger()
	}
	if schemas.Schematron != "" && schemas.XSD == "" {
		return nil, ErrSchematronWithoutXSD
	}

	validators := make(map[domain.Kind]domain.Validator)
	defer func() {
		if err != nil {
			CloseValidators(validators)
		}
	}()

	if schemas.XSD != "" {
		xsdPath, err := resolver.Resolve(ctx, schemas.XSD)
		if err != nil {
			return nil, fmt.Errorf("resolving xsd: %w", err)
		}
		var schPath string
		if schemas.Schematron != "" {
			if schPath, err = resolver.Resolve(ctx, schemas.Schematron); err != nil {
				return nil, fmt.Errorf("resolving schematron: %w", err)
			}
		}
		v, err := factory.XML(xsdPath, schPath)
		if err != nil {
			return nil, fmt.Errorf("building xml validator: %w", err)
		}
		validators[domain.KindXML] = v
		log.WithField("path", xsdPath).Debug("xml validator ready")
	}

	if schemas.JSONSchema != "" {
		p, err := resolver.Resolve(ctx, schemas.JSONSchema)
		if err != nil {
			return nil, fmt.Errorf("resolving json schema: %w", err)
		}
		v, err := factory.JSON(p)
		if err != nil {
			return nil, fmt.Errorf("building json validator: %w", err)
		}
		validators[domain.KindJSON] = v
		log.WithField("path", p).Debug("json validator ready")
	}

	if schemas.CSVSchema != "" {
		p, err := resolver.Resolve(ctx, schemas.CSVSchema)
		if err != nil {
			return nil, fmt.Errorf("resolving csv rules: %w", err)
		}
		v, err := factory.CSV(p)
		if err != nil {
			return nil, fmt.Errorf("building csv validator: %w", err)
		}
		validators[domain.KindCSV] = v
		log.WithField("path", p).Debug("csv validator ready")
	}

	return validators, nil
}

// CloseValidators releases validators that hold native resources.
func CloseValidators(validators map[domain.Kind]domain.Validator) {
	for _, v := range validators {
		if c, ok := v.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
