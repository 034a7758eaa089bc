package gateway

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	statusCode, code, msg := httpStatusFromGRPC(toStatus(err))
	writeJSON(w, statusCode, struct {
		Error errorBody `json:"error"`
	}{Error: errorBody{Code: code, Message: msg}})
}
