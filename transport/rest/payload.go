package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var jsonNull = []byte("null")

// createGameRequest fields are declared in the order their problems are reported.
type createGameRequest struct {
	Players []string `json:"players" validate:"len=2,unique,dive,required"`
	Columns int      `json:"columns" validate:"gt=0"`
	Rows    int      `json:"rows" validate:"gt=0"`
}

var createGameFields = []string{"players", "columns", "rows"}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, *validationError) {
	var body map[string]json.RawMessage

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, &validationError{
			Loc:  []string{"body"},
			Msg:  "invalid JSON body",
			Type: "value_error.jsondecode",
		}
	}

	return body, nil
}

// decodeCreateGame reads every field of a create game payload and checks its rules.
// A field that cannot be decoded reports only the decoding problem.
func decodeCreateGame(body map[string]json.RawMessage) (createGameRequest, []validationError) {
	var req createGameRequest
	problems := make(map[string]validationError)

	var fieldErr *validationError
	if req.Players, fieldErr = stringListField(body, "players"); fieldErr != nil {
		problems["players"] = *fieldErr
	}
	if req.Columns, fieldErr = intField(body, "columns"); fieldErr != nil {
		problems["columns"] = *fieldErr
	}
	if req.Rows, fieldErr = intField(body, "rows"); fieldErr != nil {
		problems["rows"] = *fieldErr
	}

	for _, ruleErr := range ruleErrors(validate.Struct(req)) {
		field := ruleErr.Loc[len(ruleErr.Loc)-1]
		if _, ok := problems[field]; !ok {
			problems[field] = ruleErr
		}
	}

	var errs []validationError
	for _, field := range createGameFields {
		if problem, ok := problems[field]; ok {
			errs = append(errs, problem)
		}
	}

	return req, errs
}

// ruleErrors turns validator failures into body entries, one per top level field.
func ruleErrors(err error) []validationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	errs := make([]validationError, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		field, _, _ := strings.Cut(fieldErr.Field(), "[")
		errs = append(errs, validationError{
			Loc:  []string{"body", field},
			Msg:  ruleMessage(fieldErr),
			Type: "value_error",
		})
	}

	return errs
}

func ruleMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "len":
		return "must be length " + fieldErr.Param()
	case "unique":
		return "all entries must be distinct"
	case "gt":
		return "must be greater than " + fieldErr.Param()
	case "required":
		return "entries must not be empty"
	default:
		return fieldErr.Error()
	}
}

func rawField(body map[string]json.RawMessage, name string) (json.RawMessage, *validationError) {
	raw, ok := body[name]
	if !ok {
		return nil, &validationError{Loc: []string{"body", name}, Msg: "field required", Type: "value_error.missing"}
	}

	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return nil, &validationError{
			Loc:  []string{"body", name},
			Msg:  "none is not an allowed value",
			Type: "type_error.none.not_allowed",
		}
	}

	return raw, nil
}

func intField(body map[string]json.RawMessage, name string) (int, *validationError) {
	raw, fieldErr := rawField(body, name)
	if fieldErr != nil {
		return 0, fieldErr
	}

	value, ok := wholeNumber(raw)
	if !ok {
		notInt := notAnInteger("body", name)
		return 0, &notInt
	}

	return value, nil
}

// wholeNumber accepts JSON integers, whole floats such as 2.0 and numeric strings such as "2".
// Fractions and values outside the int range are refused.
func wholeNumber(raw json.RawMessage) (int, bool) {
	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil {
		return 0, false
	}

	if value, err := strconv.ParseInt(number.String(), 10, 0); err == nil {
		return int(value), true
	}

	value, err := number.Float64()
	if err != nil || value != math.Trunc(value) || value <= math.MinInt || value >= math.MaxInt {
		return 0, false
	}

	return int(value), true
}

func stringListField(body map[string]json.RawMessage, name string) ([]string, *validationError) {
	raw, fieldErr := rawField(body, name)
	if fieldErr != nil {
		return nil, fieldErr
	}

	var value []string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, &validationError{
			Loc:  []string{"body", name},
			Msg:  "value is not a valid list of strings",
			Type: "type_error.list",
		}
	}

	return value, nil
}

func notAnInteger(location, name string) validationError {
	return validationError{
		Loc:  []string{location, name},
		Msg:  "value is not a valid integer",
		Type: "type_error.integer",
	}
}

// optionalIntQuery returns nil when the parameter is absent.
func optionalIntQuery(r *http.Request, name string) (*int, *validationError) {
	query := r.URL.Query()
	if !query.Has(name) {
		return nil, nil
	}

	value, err := strconv.Atoi(query.Get(name))
	if err != nil {
		notInt := notAnInteger("query", name)
		return nil, &notInt
	}

	return &value, nil
}
