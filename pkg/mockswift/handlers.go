package mockswift

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/opencafe/saiokit/pkg/httputil"
	"github.com/opencafe/saiokit/pkg/tempurl"
)

// listingLimit mirrors the deployment's container_listing_limit
const listingLimit = 10000

func filterFromQuery(r *http.Request) listingFilter {
	f := listingFilter{
		marker:    r.URL.Query().Get("marker"),
		endMarker: r.URL.Query().Get("end_marker"),
		prefix:    r.URL.Query().Get("prefix"),
		limit:     listingLimit,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < listingLimit {
			f.limit = n
		}
	}
	return f
}

// applyMeta merges request metadata headers into a metadata map, removing
// entries posted with an empty value.
func applyMeta(meta map[string]string, h http.Header, prefix string) {
	for name, values := range h {
		if !strings.HasPrefix(name, prefix) || len(values) == 0 {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, prefix))
		if values[0] == "" {
			delete(meta, key)
			continue
		}
		meta[key] = values[0]
	}
}

func writeMeta(w http.ResponseWriter, meta map[string]string, prefix string) {
	for name, value := range meta {
		w.Header().Set(prefix+name, value)
	}
}

// handleAccount serves GET/HEAD/POST on /v1/{account}
func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	httputil.SetStorageHeaders(w)

	acctName := mux.Vars(r)["account"]
	if !s.authorized(r, acctName) {
		httputil.WriteUnauthorized(w)
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	acct := s.store.ensureAccount(acctName)

	switch r.Method {
	case http.MethodPost:
		applyMeta(acct.meta, r.Header, "X-Account-Meta-")
		httputil.WriteNoContent(w)

	case http.MethodHead, http.MethodGet:
		var objects, bytes int64
		for _, cont := range acct.containers {
			objects += int64(len(cont.objects))
			bytes += cont.bytesUsed()
		}
		w.Header().Set("X-Account-Container-Count", strconv.Itoa(len(acct.containers)))
		w.Header().Set("X-Account-Object-Count", strconv.FormatInt(objects, 10))
		w.Header().Set("X-Account-Bytes-Used", strconv.FormatInt(bytes, 10))
		writeMeta(w, acct.meta, "X-Account-Meta-")

		if r.Method == http.MethodHead {
			httputil.WriteNoContent(w)
			return
		}

		names := make([]string, 0, len(acct.containers))
		for name := range acct.containers {
			names = append(names, name)
		}
		type entry struct {
			Name  string `json:"name"`
			Count int64  `json:"count"`
			Bytes int64  `json:"bytes"`
		}
		entries := make([]entry, 0)
		for _, name := range filterFromQuery(r).apply(names) {
			cont := acct.containers[name]
			entries = append(entries, entry{
				Name:  name,
				Count: int64(len(cont.objects)),
				Bytes: cont.bytesUsed(),
			})
		}
		_ = httputil.WriteJSON(w, http.StatusOK, entries)
	}
}

// handleContainer serves /v1/{account}/{container}
func (s *Server) handleContainer(w http.ResponseWriter, r *http.Request) {
	httputil.SetStorageHeaders(w)

	vars := mux.Vars(r)
	acctName, contName := vars["account"], vars["container"]
	if !s.authorized(r, acctName) {
		httputil.WriteUnauthorized(w)
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	acct := s.store.ensureAccount(acctName)
	cont, exists := acct.containers[contName]

	switch r.Method {
	case http.MethodPut:
		if exists {
			applyMeta(cont.meta, r.Header, "X-Container-Meta-")
			w.WriteHeader(http.StatusAccepted)
			return
		}
		cont = &container{
			meta:    make(map[string]string),
			objects: make(map[string]*object),
		}
		applyMeta(cont.meta, r.Header, "X-Container-Meta-")
		acct.containers[contName] = cont
		w.WriteHeader(http.StatusCreated)

	case http.MethodDelete:
		if !exists {
			httputil.WriteNotFound(w)
			return
		}
		s.dropExpiredLocked(cont)
		if len(cont.objects) > 0 {
			httputil.WriteConflict(w, "There was a conflict when trying to complete your request.")
			return
		}
		delete(acct.containers, contName)
		httputil.WriteNoContent(w)

	case http.MethodPost:
		if !exists {
			httputil.WriteNotFound(w)
			return
		}
		applyMeta(cont.meta, r.Header, "X-Container-Meta-")
		httputil.WriteNoContent(w)

	case http.MethodHead, http.MethodGet:
		if !exists {
			httputil.WriteNotFound(w)
			return
		}
		s.dropExpiredLocked(cont)

		w.Header().Set("X-Container-Object-Count", strconv.Itoa(len(cont.objects)))
		w.Header().Set("X-Container-Bytes-Used", strconv.FormatInt(cont.bytesUsed(), 10))
		writeMeta(w, cont.meta, "X-Container-Meta-")

		if r.Method == http.MethodHead {
			httputil.WriteNoContent(w)
			return
		}

		names := make([]string, 0, len(cont.objects))
		for name := range cont.objects {
			names = append(names, name)
		}
		type entry struct {
			Name         string `json:"name"`
			Hash         string `json:"hash"`
			Bytes        int64  `json:"bytes"`
			ContentType  string `json:"content_type"`
			LastModified string `json:"last_modified"`
		}
		entries := make([]entry, 0)
		for _, name := range filterFromQuery(r).apply(names) {
			obj := cont.objects[name]
			entries = append(entries, entry{
				Name:         name,
				Hash:         obj.etag,
				Bytes:        int64(len(obj.data)),
				ContentType:  obj.contentType,
				LastModified: obj.lastModified.Format("2006-01-02T15:04:05.000000"),
			})
		}
		_ = httputil.WriteJSON(w, http.StatusOK, entries)
	}
}

// handleObject serves /v1/{account}/{container}/{object}
func (s *Server) handleObject(w http.ResponseWriter, r *http.Request) {
	httputil.SetStorageHeaders(w)

	vars := mux.Vars(r)
	acctName, contName, objName := vars["account"], vars["container"], vars["object"]

	if !s.authorized(r, acctName) && !s.tempURLAuthorized(r, acctName) {
		httputil.WriteUnauthorized(w)
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	acct := s.store.ensureAccount(acctName)
	cont, contExists := acct.containers[contName]
	if !contExists {
		httputil.WriteNotFound(w)
		return
	}

	obj, objExists := cont.objects[objName]
	if objExists && obj.expired(time.Now()) {
		delete(cont.objects, objName)
		obj, objExists = nil, false
	}

	switch r.Method {
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "could not read request body")
			return
		}

		deleteAt, err := expiryFromHeaders(r.Header)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		sum := md5.Sum(data)
		etag := hex.EncodeToString(sum[:])
		if sent := strings.Trim(r.Header.Get("ETag"), `"`); sent != "" && sent != etag {
			httputil.WriteError(w, http.StatusUnprocessableEntity, "ETag mismatch")
			return
		}

		meta := make(map[string]string)
		applyMeta(meta, r.Header, "X-Object-Meta-")

		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		stored := cont.putObject(objName, data, contentType, meta, deleteAt)
		w.Header().Set("Etag", stored.etag)
		w.WriteHeader(http.StatusCreated)

	case http.MethodGet, http.MethodHead:
		if !objExists {
			httputil.WriteNotFound(w)
			return
		}
		w.Header().Set("Etag", obj.etag)
		w.Header().Set("Content-Type", obj.contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(obj.data)))
		w.Header().Set("Last-Modified", obj.lastModified.Format(http.TimeFormat))
		if !obj.deleteAt.IsZero() {
			w.Header().Set("X-Delete-At", strconv.FormatInt(obj.deleteAt.Unix(), 10))
		}
		writeMeta(w, obj.meta, "X-Object-Meta-")

		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(obj.data)

	case http.MethodPost:
		if !objExists {
			httputil.WriteNotFound(w)
			return
		}
		// POST replaces user metadata wholesale, matching the API.
		obj.meta = make(map[string]string)
		applyMeta(obj.meta, r.Header, "X-Object-Meta-")
		w.WriteHeader(http.StatusAccepted)

	case http.MethodDelete:
		if !objExists {
			httputil.WriteNotFound(w)
			return
		}
		delete(cont.objects, objName)
		httputil.WriteNoContent(w)
	}
}

// dropExpiredLocked lazily removes expired objects; callers hold the store
// lock.
func (s *Server) dropExpiredLocked(cont *container) {
	now := time.Now()
	for name, obj := range cont.objects {
		if obj.expired(now) {
			delete(cont.objects, name)
		}
	}
}

// expiryFromHeaders resolves X-Delete-At / X-Delete-After
func expiryFromHeaders(h http.Header) (time.Time, error) {
	if raw := h.Get("X-Delete-At"); raw != "" {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("X-Delete-At must be a Unix timestamp, got %q", raw)
		}
		return time.Unix(secs, 0), nil
	}
	if raw := h.Get("X-Delete-After"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return time.Time{}, fmt.Errorf("X-Delete-After must be a positive number of seconds, got %q", raw)
		}
		return time.Now().Add(time.Duration(secs) * time.Second), nil
	}
	return time.Time{}, nil
}

// tempURLAuthorized validates a signed object URL against the account's
// signing keys.
func (s *Server) tempURLAuthorized(r *http.Request, acctName string) bool {
	if r.URL.Query().Get(tempurl.ParamSig) == "" {
		return false
	}

	s.store.mu.Lock()
	acct := s.store.ensureAccount(acctName)
	var keys [][]byte
	if k := acct.meta["temp-url-key"]; k != "" {
		keys = append(keys, []byte(k))
	}
	if k := acct.meta["temp-url-key-2"]; k != "" {
		keys = append(keys, []byte(k))
	}
	s.store.mu.Unlock()

	if len(keys) == 0 {
		return false
	}

	method := r.Method
	if method == http.MethodHead {
		// HEAD is allowed with a GET-signed URL.
		if tempurl.Validate(keys, http.MethodGet, r.URL, time.Now()) == nil {
			return true
		}
	}
	return tempurl.Validate(keys, method, r.URL, time.Now()) == nil
}
