package registry

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	en2 "github.com/go-playground/validator/translations/en"
	validator "gopkg.in/go-playground/validator.v9"

	"github.com/Valstan/MatricaRMZ-sub006/common/constant"
	apperrors "github.com/Valstan/MatricaRMZ-sub006/common/errors"
)

// TableDef is one registered replicated table.
type TableDef struct {
	SyncName        string
	Fields          []Field
	ConflictTarget  []string
	DependencyOrder int
	wireType        reflect.Type
}

// Validate decodes a wire row into the table's typed wire struct and runs
// validator tags against it, replacing per-table hand-written validation.
func (t TableDef) Validate(wire map[string]any) error {
	raw, err := json.Marshal(wire)
	if err != nil {
		return apperrors.ValidationError{EntityType: t.SyncName, Code: constant.CodeMalformed, Message: "row is not valid JSON", Err: err}
	}

	target := reflect.New(t.wireType).Interface()
	if err := json.Unmarshal(raw, target); err != nil {
		return apperrors.ValidationError{EntityType: t.SyncName, Code: constant.CodeMalformed, Message: err.Error(), Err: err}
	}

	if err := structValidator.Struct(target); err != nil {
		fields := make(map[string]string)

		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Translate(translator)
			}
		}

		return apperrors.ValidationError{
			EntityType: t.SyncName,
			Code:       constant.CodeSchema,
			Message:    "row failed schema validation",
			Fields:     fields,
			Err:        err,
		}
	}

	return nil
}

// ToDbRow converts a snake_case wire row into storage-column values keyed
// by each field's DB name.
func (t TableDef) ToDbRow(wire map[string]any) (map[string]any, error) {
	db := make(map[string]any, len(t.Fields))

	for _, f := range t.Fields {
		v, err := fromWireValue(f, wire[f.DTO])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.DTO, err)
		}

		db[f.DB] = v
	}

	return db, nil
}

// ToWireRow converts a storage row back into a snake_case wire row.
func (t TableDef) ToWireRow(db map[string]any) (map[string]any, error) {
	wire := make(map[string]any, len(t.Fields))

	for _, f := range t.Fields {
		v, err := toWireValue(f, db[f.DB])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.DB, err)
		}

		wire[f.DTO] = v
	}

	return wire, nil
}

var (
	structValidator *validator.Validate
	translator      ut.Translator
)

func init() {
	locale := en.New()
	uni := ut.New(locale, locale)
	translator, _ = uni.GetTranslator("en")

	structValidator = validator.New()

	if err := en2.RegisterDefaultTranslations(structValidator, translator); err != nil {
		panic(err)
	}

	structValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})
}
