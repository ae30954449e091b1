package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/casavia/dealerdesk-backend/api/responses"
	"github.com/casavia/dealerdesk-backend/internal/settings"
	pkgerrors "github.com/casavia/dealerdesk-backend/pkg/errors"
	"github.com/casavia/dealerdesk-backend/pkg/logger"
)

const maxSettingValueBytes = 64 << 10

// SettingsList serves every site setting.
func SettingsList(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// SettingsGet serves one setting by key.
func SettingsGet(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(chi.URLParam(r, "key"))
		setting, err := svc.Get(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, setting)
	}
}

// SettingsPut stores a raw JSON value under the key. The body IS the value,
// not a wrapper object.
func SettingsPut(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(chi.URLParam(r, "key"))

		body, err := io.ReadAll(io.LimitReader(r.Body, maxSettingValueBytes+1))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading request body"))
			return
		}
		if len(body) > maxSettingValueBytes {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "setting value too large"))
			return
		}
		if !json.Valid(body) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "setting value must be valid JSON"))
			return
		}

		setting, err := svc.Put(r.Context(), key, string(body))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, setting)
	}
}
