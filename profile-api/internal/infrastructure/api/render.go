package api

import (
	"encoding/json"
	"net/http"
)

// jsonLD renders schema.org structured data with its own media type.
type jsonLD struct {
	data interface{}
}

func (r jsonLD) Render(w http.ResponseWriter) error {
	r.WriteContentType(w)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(r.data)
}

func (r jsonLD) WriteContentType(w http.ResponseWriter) {
	w.Header()["Content-Type"] = []string{"application/ld+json; charset=utf-8"}
}
