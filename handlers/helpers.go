package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/compete-app/compete-backend/services"
)

const maxRequestBodyBytes = 1 << 20

type envelope map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", slog.Any("error", err))
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown field %s", field)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		default:
			return err
		}
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func errorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"error": message})
}

func badRequest(w http.ResponseWriter, err error) {
	errorJSON(w, http.StatusBadRequest, err.Error())
}

// mapServiceError translates service sentinels to HTTP responses; anything
// unrecognized is a 500 with a generic message, the detail stays in logs.
func mapServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrVenueNotFound),
		errors.Is(err, services.ErrAlertNotFound),
		errors.Is(err, services.ErrSupportMessageNotFound),
		errors.Is(err, services.ErrUserNotFound):
		errorJSON(w, http.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrTournamentNameRequired),
		errors.Is(err, services.ErrTournamentDateRequired),
		errors.Is(err, services.ErrTournamentInvalidFee),
		errors.Is(err, services.ErrTournamentInvalidStatus),
		errors.Is(err, services.ErrVenueNameRequired),
		errors.Is(err, services.ErrAlertZipRequired),
		errors.Is(err, services.ErrSupportSubjectRequired),
		errors.Is(err, services.ErrSupportMessageRequired),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrOriginUnresolvable):
		errorJSON(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, services.ErrAuthInvalidCredentials):
		errorJSON(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, services.ErrForbiddenOperation):
		errorJSON(w, http.StatusForbidden, err.Error())

	case errors.Is(err, services.ErrAuthEmailTaken),
		errors.Is(err, services.ErrTournamentNumberConflict):
		errorJSON(w, http.StatusConflict, err.Error())

	case errors.Is(err, services.ErrRecurringCreationFailed):
		errorJSON(w, http.StatusUnprocessableEntity, err.Error())

	default:
		slog.Error("unhandled service error", slog.Any("error", err))
		errorJSON(w, http.StatusInternalServerError, "internal server error")
	}
}

// Query parameter parsing helpers. Absent parameters yield nil pointers so
// downstream filters can distinguish "unset" from zero values.

func queryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func queryFloatPtr(r *http.Request, key string) (*float64, error) {
	raw := queryString(r, key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("query parameter %q must be a number", key)
	}
	return &v, nil
}

func queryIntPtr(r *http.Request, key string) (*int, error) {
	raw := queryString(r, key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("query parameter %q must be an integer", key)
	}
	return &v, nil
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	v, err := queryIntPtr(r, key)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return fallback, nil
	}
	return *v, nil
}

func queryBoolPtr(r *http.Request, key string) (*bool, error) {
	raw := queryString(r, key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("query parameter %q must be a boolean", key)
	}
	return &v, nil
}

func queryDatePtr(r *http.Request, key string) (*time.Time, error) {
	raw := queryString(r, key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("query parameter %q must be a date in YYYY-MM-DD form", key)
	}
	return &t, nil
}

// queryIntList parses a comma-separated integer list (e.g. days_of_week=0,2,5).
func queryIntList(r *http.Request, key string) ([]int, error) {
	raw := queryString(r, key)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("query parameter %q must be a comma-separated integer list", key)
		}
		out = append(out, v)
	}
	return out, nil
}
