package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Headers exchanged with htmx.
const (
	hxRequest        = "Hx-Request"
	hxHistoryRestore = "Hx-History-Restore-Request"
	hxRedirect       = "Hx-Redirect"
	hxTrigger        = "Hx-Trigger"
)

// Client-side events handled by static/js/app.js.
const (
	eventShowToast   = "showToast"
	eventNavActivate = "nav:activate"
)

// IsHTMX reports whether htmx issued the request.
func IsHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get(hxRequest), "true")
}

// WantsPartial reports whether only the content block should be rendered.
// History restores need the full page because htmx swaps the whole body.
func WantsPartial(r *http.Request) bool {
	return IsHTMX(r) && !strings.EqualFold(r.Header.Get(hxHistoryRestore), "true")
}

// trigger fires event in the browser once the response is swapped in.
func trigger(w http.ResponseWriter, event string, detail map[string]string) {
	b, err := json.Marshal(map[string]map[string]string{event: detail})
	if err != nil {
		return
	}
	w.Header().Set(hxTrigger, string(b))
}

// triggerToast shows a toast of kind ("success" or "error"). Blank messages
// are dropped.
func triggerToast(w http.ResponseWriter, message, kind string) {
	if strings.TrimSpace(message) == "" {
		return
	}
	trigger(w, eventShowToast, map[string]string{"message": message, "type": kind})
}

// Redirect sends the browser to url after a form post. htmx requests get an
// Hx-Redirect so the whole page navigates instead of swapping a fragment.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if IsHTMX(r) {
		w.Header().Set(hxRedirect, url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
