package param

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/gorilla/schema"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.SetAliasTag("json")
	decoder.IgnoreUnknownKeys(true)
}

// Binding binds query string and route parameters into v by json tag.
func Binding(r *http.Request, v interface{}) error {
	values := r.URL.Query()

	if c := chi.RouteContext(r.Context()); c != nil {
		for idx, key := range c.URLParams.Keys {
			values.Set(key, c.URLParams.Values[idx])
		}
	}

	return decoder.Decode(v, values)
}
