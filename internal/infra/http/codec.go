package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	mimeJSON    = "application/json"
	mimeMsgpack = "application/msgpack"

	maxBodyBytes = 1 << 20
)

func isMsgpack(header string) bool {
	return strings.Contains(header, "msgpack")
}

// writeData JSON по умолчанию, msgpack если клиент просит его в Accept.
func writeData(w http.ResponseWriter, r *http.Request, status int, v any) error {
	if isMsgpack(r.Header.Get("Accept")) {
		b, err := msgpack.Marshal(v)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", mimeMsgpack)
		w.WriteHeader(status)
		_, err = w.Write(b)
		return err
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", mimeJSON)
	w.WriteHeader(status)
	_, err = w.Write(append(b, '\n'))
	return err
}

func readData(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if isMsgpack(r.Header.Get("Content-Type")) {
		return msgpack.NewDecoder(body).Decode(v)
	}
	return json.NewDecoder(body).Decode(v)
}

type errorBody struct {
	Error string `json:"error" msgpack:"error"`
}
