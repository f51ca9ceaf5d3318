package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/bakehouse-pos/api/internal/report"
	"github.com/bakehouse-pos/api/internal/service"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("locationid", func(fl validator.FieldLevel) bool {
		_, err := store.NormalizeLocationID(fl.Field().String())
		return err == nil
	})
	return v
}

// decodeJSON reads a single JSON object into v, rejecting unknown fields,
// then runs struct validation. The returned error is safe to show clients.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("request body is required")
		case errors.As(err, &syntaxErr):
			return errors.New("invalid JSON")
		case errors.As(err, &typeErr):
			return fmt.Errorf("%s has the wrong type", typeErr.Field)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return fmt.Errorf("unknown field %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		default:
			return errors.New("invalid request body")
		}
	}
	if dec.More() {
		return errors.New("request body must be a single JSON object")
	}
	return validateStruct(v)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.New("invalid request")
	}
	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "locationid":
		return fmt.Errorf("%s must match ^[A-Z0-9_]+$", field)
	case "min":
		return fmt.Errorf("%s must have at least %s entries", field, fe.Param())
	case "gt", "gte":
		return fmt.Errorf("%s must be %s %s", field, tagSymbol(fe.Tag()), fe.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", field, fe.Param())
	case "datetime":
		return fmt.Errorf("%s must be a YYYY-MM-DD date", field)
	default:
		return fmt.Errorf("%s is invalid", field)
	}
}

func tagSymbol(tag string) string {
	if tag == "gt" {
		return ">"
	}
	return ">="
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors to 4xx and logs anything else as a
// backend failure behind a generic 500.
func writeServiceError(w http.ResponseWriter, log logrus.FieldLogger, err error, op string) {
	switch {
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrLocationExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrProductNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.WithError(err).Error(op)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		service.ErrMissingLocation, service.ErrEmptyItems, service.ErrMissingPayment,
		service.ErrMissingTotal, service.ErrInvalidQuantity, service.ErrMissingName,
		service.ErrNegativeAmount, service.ErrNoMovements, service.ErrNoUpdates,
		service.ErrInvalidProductID, service.ErrZeroDelta, service.ErrInvalidSnapshot,
		store.ErrInvalidLocationID, store.ErrReservedLocation, report.ErrInvalidPeriod,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// queryLocation reads and normalizes ?location=. The error is client-safe.
func queryLocation(r *http.Request) (string, error) {
	raw := r.URL.Query().Get("location")
	if strings.TrimSpace(raw) == "" {
		return "", errors.New("location is required")
	}
	return store.NormalizeLocationID(raw)
}

func setDownload(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
}
