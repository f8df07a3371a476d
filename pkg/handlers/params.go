package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// MaxListLimit caps the limit query parameter.
const MaxListLimit = 1000

// DatacenterParam reads the datacenter query parameter. It returns nil when the
// parameter is absent (all datacenters) and a pointer to the trimmed value when
// present, so ?datacenter= selects the unscoped datacenter.
func DatacenterParam(r *http.Request) *string {
	q := r.URL.Query()
	if !q.Has("datacenter") {
		return nil
	}
	dc := strings.TrimSpace(q.Get("datacenter"))
	return &dc
}

// ParseLimit reads the limit query parameter, defaulting to def. Values must be
// positive and are capped at MaxListLimit. Writes a 400 and returns false when invalid.
func ParseLimit(w http.ResponseWriter, r *http.Request, def int, logger *zap.Logger) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		writeError(w, logger, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
		return 0, false
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return limit, true
}

// ParseMSF extracts the MSF path parameter. Writes a 400 and returns false when blank.
// Expects path parameter: msf
func ParseMSF(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	return parseRequiredPathValue(w, r, "msf", "invalid_msf", "MSF is required", logger)
}

// ParseDatacenterID extracts the datacenter id path parameter.
// Expects path parameter: id
func ParseDatacenterID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	return parseRequiredPathValue(w, r, "id", "invalid_datacenter_id", "Datacenter ID is required", logger)
}

func parseRequiredPathValue(w http.ResponseWriter, r *http.Request, pathParam, errorCode, errorMessage string, logger *zap.Logger) (string, bool) {
	value := strings.TrimSpace(r.PathValue(pathParam))
	if value == "" {
		writeError(w, logger, http.StatusBadRequest, errorCode, errorMessage)
		return "", false
	}
	return value, true
}
