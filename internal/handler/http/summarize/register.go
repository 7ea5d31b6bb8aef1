package summarize

import "net/http"

// Route is the pattern Register mounts the handler on.
const Route = "POST /api/summarize"

// Register mounts h on mux. mws wrap the handler, outermost first.
func Register(mux *http.ServeMux, h Handler, mws ...func(http.Handler) http.Handler) {
	var handler http.Handler = h
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	mux.Handle(Route, handler)
}
