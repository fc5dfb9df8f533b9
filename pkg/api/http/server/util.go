package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/voidshard/torque/pkg/api/http/common"
	"github.com/voidshard/torque/pkg/structs"
)

const (
	// maxBody is the largest request body we'll accept for a task
	maxBody = 1 << 20
)

// writeError writes err with the status code it maps to.
func writeError(w http.ResponseWriter, err error) {
	code := common.MapError(err)
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="torque"`)
	}
	http.Error(w, err.Error(), code)
}

// apiKey returns the key given as a bearer token, or in HEADER_API_KEY.
func apiKey(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return strings.TrimSpace(r.Header.Get(common.HEADER_API_KEY))
}

// taskID reads the {id} path variable. Writes an error & returns it if the
// id isn't a positive integer.
func taskID(w http.ResponseWriter, r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "bad task id", http.StatusBadRequest)
		return 0, fmt.Errorf("bad task id: %q", raw)
	}
	return id, nil
}

// passthroughHeaders returns headers carrying HEADER_PREFIX, without it.
func passthroughHeaders(h http.Header) map[string]string {
	out := map[string]string{}
	for k, v := range h {
		if len(v) == 0 {
			continue
		}
		key := http.CanonicalHeaderKey(k)
		if !strings.HasPrefix(key, common.HEADER_PREFIX) || len(key) == len(common.HEADER_PREFIX) {
			continue
		}
		out[key[len(common.HEADER_PREFIX):]] = v[0]
	}
	return out
}

// unmarshalCreateTask reads a task creation request.
// This function writes an error to the writer if an error occurs, and returns the error.
func unmarshalCreateTask(w http.ResponseWriter, r *http.Request) (*structs.CreateTaskRequest, error) {
	q := r.URL.Query()
	req := &structs.CreateTaskRequest{
		URL:         q.Get(common.PARAM_URL),
		ContentType: r.Header.Get("Content-Type"),
		Headers:     passthroughHeaders(r.Header),
		APIKey:      apiKey(r),
	}

	if q.Has(common.PARAM_TIMEOUT) {
		timeout, err := strconv.ParseInt(q.Get(common.PARAM_TIMEOUT), 10, 64)
		if err != nil {
			http.Error(w, "bad timeout", http.StatusBadRequest)
			return nil, fmt.Errorf("bad timeout: %v", err)
		}
		req.Timeout = &timeout
	}

	if r.Body != nil {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return nil, fmt.Errorf("bad body: %v", err)
		}
		req.Body = body
	}

	return req, nil
}
