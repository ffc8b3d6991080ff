package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	readOnly(mux, "/{$}", handler, handler.Welcome)
	readOnly(mux, "/healthz", handler, handler.Healthz)
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler) {
	for _, prefix := range []string{"", "/v1"} {
		readOnly(mux, prefix+"/players", handler, handler.ListPlayers)
		readOnly(mux, prefix+"/players/{playerID}", handler, handler.GetPlayer)
	}
}

// readOnly binds fn to GET (and HEAD) on path; every other method on the same
// path gets a JSON 405.
func readOnly(mux *http.ServeMux, path string, handler *Handler, fn http.HandlerFunc) {
	mux.HandleFunc("GET "+path, fn)
	mux.HandleFunc(path, handler.MethodNotAllowed)
}
