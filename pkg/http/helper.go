package http

import (
	"fmt"
	"net/http"

	apperrors "roombook/pkg/errors"
	"roombook/pkg/timeutil"
)

func RequiredQuery(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", apperrors.InvalidInput(fmt.Sprintf("missing '%s' query parameter", name))
	}
	return v, nil
}

// QueryDate parses a yyyy-MM-dd query parameter.
func QueryDate(r *http.Request, name string) (timeutil.Date, error) {
	v, err := RequiredQuery(r, name)
	if err != nil {
		return timeutil.Date{}, err
	}
	d, err := timeutil.ParseDate(v)
	if err != nil {
		return timeutil.Date{}, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter, must be %s: %s", name, timeutil.DateLayout, v))
	}
	return d, nil
}

// QueryTime parses an HH:mm query parameter.
func QueryTime(r *http.Request, name string) (timeutil.TimeOfDay, error) {
	v, err := RequiredQuery(r, name)
	if err != nil {
		return 0, err
	}
	t, err := timeutil.ParseTimeOfDay(v)
	if err != nil {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter, must be %s: %s", name, timeutil.TimeLayout, v))
	}
	return t, nil
}
