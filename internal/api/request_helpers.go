package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Morty67/kollectiv-api/internal/api/shared"
)

// validate is the shared validator instance for request payloads.
var validate = validator.New()

// decodeAndValidate decodes the request body into dst and runs struct
// validation. On failure it writes an error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request data", err)
		return false
	}
	return true
}

// getPathID extracts a positive integer ID from the URL path.
// On failure it writes an error response and returns false.
func getPathID(w http.ResponseWriter, r *http.Request, paramName string) (int64, bool) {
	pathParam := chi.URLParam(r, paramName)

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, paramName+" must be a positive integer")
		return 0, false
	}

	return id, true
}
