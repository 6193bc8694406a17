// Package api is a typed client for the school API resources.
//
// A Resource[T] wraps the five calls every resource endpoint supports and
// classifies failures into ErrTransport, ErrNotFound and ErrValidation. The
// stored credential, when there is one, is attached to every request.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/dmitrijs2005/schooladmin/internal/logging"
	"github.com/dmitrijs2005/schooladmin/internal/models"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-Id"

	// bodies larger than this are not read into error messages
	maxErrorBody = 4 << 10
)

// CredentialSource yields the encoded credential for the Authorization
// header. ok is false when nobody is logged in.
type CredentialSource interface {
	Credential() (credential string, ok bool)
}

// Options configure a Resource.
type Options struct {
	HTTPClient  *http.Client
	Credentials CredentialSource
	Logger      logging.Logger
	Timeout     time.Duration
}

// Resource is the client for one resource path, e.g. "/alunos".
type Resource[T models.Entity] struct {
	baseURL string
	path    string
	http    *http.Client
	creds   CredentialSource
	log     logging.Logger
}

// NewResource builds a client for path below baseURL.
func NewResource[T models.Entity](baseURL, path string, opts Options) *Resource[T] {
	hc := opts.HTTPClient
	if hc == nil {
		hc = cleanhttp.DefaultPooledClient()
		if opts.Timeout > 0 {
			hc.Timeout = opts.Timeout
		}
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Resource[T]{
		baseURL: strings.TrimRight(baseURL, "/"),
		path:    "/" + strings.Trim(path, "/"),
		http:    hc,
		creds:   opts.Credentials,
		log:     log.With("resource", path),
	}
}

// Path returns the resource path this client talks to.
func (r *Resource[T]) Path() string { return r.path }

// List fetches every entity, in server order.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if _, err := r.do(ctx, http.MethodGet, r.path+"/", nil, &out); err != nil {
		return nil, r.classify(err, http.MethodGet, r.path+"/", nil)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Get fetches one entity. A 404 yields ErrNotFound.
func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	p := r.itemPath(id)
	if _, err := r.do(ctx, http.MethodGet, p, nil, &out); err != nil {
		var zero T
		return zero, r.classify(err, http.MethodGet, p, map[int]error{http.StatusNotFound: ErrNotFound})
	}
	return out, nil
}

// Create posts a draft; the returned entity carries the server-assigned id.
// Any id present on the draft is not sent.
func (r *Resource[T]) Create(ctx context.Context, draft T) (T, error) {
	payload, err := withoutID(draft)
	if err != nil {
		var zero T
		return zero, &Error{Kind: ErrValidation, Method: http.MethodPost, Path: r.path + "/", Err: err}
	}
	var out T
	if _, err := r.do(ctx, http.MethodPost, r.path+"/", payload, &out); err != nil {
		var zero T
		return zero, r.classify(err, http.MethodPost, r.path+"/", validationStatuses)
	}
	return out, nil
}

// Update replaces the entity identified by entity's id.
func (r *Resource[T]) Update(ctx context.Context, entity T) (T, error) {
	var out T
	if entity.EntityID() == 0 {
		return out, &Error{Kind: ErrValidation, Method: http.MethodPut, Path: r.path + "/", Message: "entity has no id"}
	}
	status, err := r.do(ctx, http.MethodPut, r.path+"/", entity, &out)
	if err != nil {
		var zero T
		return zero, r.classify(err, http.MethodPut, r.path+"/", validationStatuses)
	}
	// some servers answer 204 to a PUT; the sent entity is then the result
	if status == http.StatusNoContent {
		return entity, nil
	}
	return out, nil
}

// Remove deletes an entity. An entity that is already gone counts as
// removed.
func (r *Resource[T]) Remove(ctx context.Context, id int64) error {
	p := r.itemPath(id)
	_, err := r.do(ctx, http.MethodDelete, p, nil, nil)
	if err == nil {
		return nil
	}
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		r.log.Debug(ctx, "entity already removed", "id", id)
		return nil
	}
	return r.classify(err, http.MethodDelete, p, nil)
}

var validationStatuses = map[int]error{
	http.StatusBadRequest:          ErrValidation,
	http.StatusConflict:            ErrValidation,
	http.StatusUnprocessableEntity: ErrValidation,
}

func (r *Resource[T]) itemPath(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

// statusError is the internal form of a non-2xx response before it is
// classified for the caller.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func (r *Resource[T]) do(ctx context.Context, method, path string, in any, out any) (int, error) {
	var body io.Reader
	if in != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.creds != nil {
		if cred, ok := r.creds.Credential(); ok {
			req.Header.Set(headerAuthorization, "Basic "+cred)
		}
	}
	requestID := uuid.NewString()
	req.Header.Set(headerRequestID, requestID)

	started := time.Now()
	resp, err := r.http.Do(req)
	if err != nil {
		r.log.Warn(ctx, "request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	r.log.Debug(ctx, "request done", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, &statusError{code: resp.StatusCode, message: errorMessage(payload)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// classify turns an internal error into an *Error. Statuses listed in kinds
// map to the given kind; everything else is a transport error.
func (r *Resource[T]) classify(err error, method, path string, kinds map[int]error) error {
	e := &Error{Kind: ErrTransport, Method: method, Path: path}
	var se *statusError
	if errors.As(err, &se) {
		e.StatusCode = se.code
		e.Message = se.message
		if kind, ok := kinds[se.code]; ok {
			e.Kind = kind
		}
		return e
	}
	e.Err = err
	return e
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from an error
// body, falling back to the trimmed text.
func errorMessage(payload []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(payload, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(payload))
}

// withoutID encodes draft as a JSON object with any "id" key removed.
func withoutID(draft any) (map[string]json.RawMessage, error) {
	b, err := json.Marshal(draft)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	delete(m, "id")
	return m, nil
}
