package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	playground "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"questaroo.app/lightson/internal/domain"
)

// ErrValidation is the cause of a ValidationError built from struct tags.
var ErrValidation = errors.New("validation failed")

// FieldError is used to indicate an error with a specific field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError carries per-field messages for the caller.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return ""
	}
	if len(e.Fields) == 0 {
		return e.Err.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error)
	}
	return e.Err.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

// FieldMap flattens Fields into field -> message.
func (e *ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		m[f.Field] = f.Error
	}
	return m
}

// Validator checks params, boards, moves and request structs.
type Validator struct {
	validate   *playground.Validate
	translator ut.Translator
}

func New() *Validator {
	validate := playground.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: validate, translator: translator}
}

// ValidateStruct runs the `validate` struct tags on s.
func (v *Validator) ValidateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Error: fe.Translate(v.translator)})
	}
	return &ValidationError{Err: ErrValidation, Fields: fields}
}

// ValidateParams checks the generation parameter ranges.
func (v *Validator) ValidateParams(p domain.Params) error {
	err := v.ValidateStruct(p)
	var verr *ValidationError
	if errors.As(err, &verr) {
		verr.Err = domain.ErrInvalidParams
	}
	return err
}

// ValidateBoard checks that b is square and of a supported size.
func (v *Validator) ValidateBoard(b domain.Board) error {
	if !b.Square() {
		return &ValidationError{
			Err:    domain.ErrNotSquare,
			Fields: []FieldError{{Field: "board", Error: "board must have as many cells per row as it has rows"}},
		}
	}
	if n := b.Size(); n < domain.MinBoardSize || n > domain.MaxBoardSize {
		return &ValidationError{
			Err: domain.ErrInvalidParams,
			Fields: []FieldError{{
				Field: "board",
				Error: fmt.Sprintf("board size must be between %d and %d, got %d", domain.MinBoardSize, domain.MaxBoardSize, n),
			}},
		}
	}
	return nil
}

// ValidateMove checks that at lies on b.
func (v *Validator) ValidateMove(b domain.Board, at domain.Coord) error {
	if b.InBounds(at) {
		return nil
	}
	n := b.Size()
	var fields []FieldError
	if at.Row < 0 || at.Row >= n {
		fields = append(fields, FieldError{Field: "row", Error: fmt.Sprintf("row must be between 0 and %d", n-1)})
	}
	if at.Col < 0 || at.Col >= n {
		fields = append(fields, FieldError{Field: "col", Error: fmt.Sprintf("col must be between 0 and %d", n-1)})
	}
	return &ValidationError{Err: domain.ErrOutOfBounds, Fields: fields}
}
