package httpx

import "net/http"

// Invalid reports a request validation failure.
func Invalid(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusBadRequest, "Validation Failed", detail)
}

// Internal reports an unexpected server error without leaking details.
func Internal(w http.ResponseWriter) {
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
