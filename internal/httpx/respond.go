package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-marketplace/internal/logx"
	"github.com/ariefcatur/go-marketplace/internal/market"
)

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError: domain error -> status + body terstruktur. Error internal
// di-log lengkap; di production message-nya diganti generik.
func writeError(w http.ResponseWriter, err error, production bool) {
	var me *market.Error
	if !errors.As(err, &me) {
		me = market.WrapInternal(err, "unexpected error")
	}
	status := me.HTTPStatus()
	msg := me.Message
	if status >= 500 {
		logx.Error().Err(err).Msg("request failed")
		if production {
			msg = "internal server error"
		}
	}
	writeJSON(w, status, errorBody{Error: msg, Details: me.Details})
}
