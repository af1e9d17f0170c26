package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/vango-dev/urlkit/internal/errors"
	"github.com/vango-dev/urlkit/pkg/middleware"
	"github.com/vango-dev/urlkit/pkg/urlcodec"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func payloadOf(err error) errorPayload {
	var ue *errors.UrlkitError
	if !stderrors.As(err, &ue) {
		return errorPayload{Message: err.Error()}
	}
	p := errorPayload{
		Code:       ue.Code,
		Message:    ue.Message,
		Detail:     ue.Detail,
		Suggestion: ue.Suggestion,
	}
	if ue.Wrapped != nil && p.Detail == "" {
		p.Detail = ue.Wrapped.Error()
	}
	return p
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.CodeOf(err) == "U060":
		return http.StatusNotFound
	case errors.IsCategory(err, errors.CategoryUsage):
		return http.StatusBadRequest
	case errors.CodeOf(err) == "U041", errors.CodeOf(err) == "U042":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// writeError records err for metrics and tracing and writes it as JSON.
// A zero status is derived from the error.
func writeError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	middleware.RecordError(r, err)
	writeJSON(w, status, errorBody{Error: payloadOf(err)})
}

func badRequest(detail string) error {
	return errors.New("U041").WithDetail(detail)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.SessionCount(),
	})
}

type parseRequest struct {
	Input         json.RawMessage `json:"input"`
	Delimiter     string          `json:"delimiter,omitempty"`
	ListSeparator string          `json:"listSeparator,omitempty"`
}

// parseResponse holds exactly one of Params and Query.
type parseResponse struct {
	Params *urlcodec.QueryParamMap `json:"params,omitempty"`
	Query  *string                 `json:"query,omitempty"`
}

func responseOf(out urlcodec.Output) parseResponse {
	if out.IsQuery() {
		return parseResponse{Query: &out.Query}
	}
	return parseResponse{Params: out.Params}
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	body := http.MaxBytesReader(w, r.Body, s.config.MaxMessageSize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, r, badRequest("request body must be a JSON object: "+err.Error()), 0)
		return
	}

	in, err := decodeInput(req.Input)
	if err != nil {
		writeError(w, r, err, 0)
		return
	}

	opts := s.codecOptions(req.Delimiter, req.ListSeparator)
	opts = append(opts, urlcodec.WithLocation(urlcodec.RequestLocation{Request: r}))
	out, err := urlcodec.ParseQueryParams(in, opts...)
	if err != nil {
		writeError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, responseOf(out))
}

// decodeInput turns the "input" member into a codec Input. Objects keep
// their key order; a missing or null input reads the request location.
func decodeInput(raw json.RawMessage) (urlcodec.Input, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, badRequest(err.Error())
		}
		return urlcodec.StringInput(s), nil
	case '{':
		m := urlcodec.NewQueryParamMap()
		if err := json.Unmarshal(raw, m); err != nil {
			if errors.CodeOf(err) != "" {
				return nil, err
			}
			return nil, badRequest(err.Error())
		}
		return urlcodec.MapInput{Params: m}, nil
	default:
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, badRequest(err.Error())
		}
		return urlcodec.FromAny(v)
	}
}

func (s *Server) codecOptions(delimiter, listSeparator string) []urlcodec.Option {
	opts := slices.Clone(s.config.Codec)
	if delimiter != "" {
		opts = append(opts, urlcodec.WithDelimiter(delimiter))
	}
	if listSeparator != "" {
		opts = append(opts, urlcodec.WithListSeparator(listSeparator))
	}
	return opts
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	opts := append(s.codecOptions("", ""), urlcodec.WithLocation(urlcodec.RequestLocation{Request: r}))
	out, err := urlcodec.ParseQueryParams(nil, opts...)
	if err != nil {
		writeError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, responseOf(out))
}

func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("url") {
		writeError(w, r, badRequest("missing url query parameter"), 0)
		return
	}
	segs := urlcodec.GetURLSegments(q.Get("url"), s.codecOptions(q.Get("delimiter"), q.Get("listSeparator"))...)
	writeJSON(w, http.StatusOK, segs)
}

type checkResponse struct {
	IsIPAddress bool `json:"isIpAddress"`
	IsURL       bool `json:"isUrl"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("url") {
		writeError(w, r, badRequest("missing url query parameter"), 0)
		return
	}

	onlyLocalhost, err := boolParam(q.Get("onlyLocalhost"), false)
	if err != nil {
		writeError(w, r, badRequest("onlyLocalhost: "+err.Error()), 0)
		return
	}
	includeLocalhost, err := boolParam(q.Get("includeLocalhostDomain"), s.config.IncludeLocalhostDomain)
	if err != nil {
		writeError(w, r, badRequest("includeLocalhostDomain: "+err.Error()), 0)
		return
	}
	allowPathname, err := boolParam(q.Get("allowOnlyPathname"), s.config.AllowOnlyPathname)
	if err != nil {
		writeError(w, r, badRequest("allowOnlyPathname: "+err.Error()), 0)
		return
	}

	raw := q.Get("url")
	writeJSON(w, http.StatusOK, checkResponse{
		IsIPAddress: urlcodec.IsIPAddress(raw,
			urlcodec.OnlyLocalhost(onlyLocalhost),
			urlcodec.IncludeLocalhostDomain(includeLocalhost),
		),
		IsURL: urlcodec.IsURL(raw, urlcodec.AllowOnlyPathname(allowPathname)),
	})
}

func boolParam(v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}
