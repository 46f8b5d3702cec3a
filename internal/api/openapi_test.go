// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/oapi-codegen/v2/pkg/codegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allowedOperationTags = map[string]struct{}{
	"playlist": {},
	"sessions": {},
	"system":   {},
}

func loadOpenAPIDoc(t *testing.T) *openapi3.T {
	t.Helper()
	doc, err := loadOpenAPI()
	require.NoError(t, err, "openapi load failed")
	return doc
}

func TestOpenAPIOperationsHaveIDsAndTags(t *testing.T) {
	doc := loadOpenAPIDoc(t)

	var problems []string
	for path, item := range doc.Paths.Map() {
		for method, op := range item.Operations() {
			if op.OperationID == "" {
				problems = append(problems, fmt.Sprintf("%s %s: missing operationId", method, path))
			}
			if len(op.Tags) == 0 {
				problems = append(problems, fmt.Sprintf("%s %s: missing tags", method, path))
			}
			for _, tag := range op.Tags {
				if _, ok := allowedOperationTags[tag]; !ok {
					problems = append(problems, fmt.Sprintf("%s %s: unknown tag %s", method, path, tag))
				}
			}
		}
	}
	sort.Strings(problems)
	assert.Empty(t, problems)
}

func TestOpenAPIRouterParity(t *testing.T) {
	doc := loadOpenAPIDoc(t)
	router, ok := New(Deps{}).Handler().(chi.Routes)
	require.True(t, ok)

	var undocumented []string
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !strings.HasPrefix(route, "/api/v1/") {
			return nil
		}
		path := strings.TrimSuffix(route, "/")
		item := doc.Paths.Value(path)
		if item == nil || item.GetOperation(method) == nil {
			undocumented = append(undocumented, method+" "+path)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, undocumented, "routes missing from the openapi document")
}

func TestOpenAPI_GeneratesChiServer(t *testing.T) {
	doc := loadOpenAPIDoc(t)
	code, err := codegen.Generate(doc, codegen.Configuration{
		PackageName: "apigen",
		Generate: codegen.GenerateOptions{
			ChiServer: true,
			Models:    true,
		},
	})
	require.NoError(t, err)
	assert.Contains(t, code, "type ServerInterface interface")
	assert.Contains(t, code, "ApplyAction(w http.ResponseWriter, r *http.Request, id string)")
	assert.Contains(t, code, "ReportMedia(w http.ResponseWriter, r *http.Request, id string)")
	assert.Contains(t, code, "type MediaReport struct")
}

func TestGetOpenAPIJSON(t *testing.T) {
	f := newFixture(t, nil)
	resp := f.do(t, http.MethodGet, "/api/v1/openapi.json", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
	assert.Contains(t, doc["paths"], "/api/v1/sessions/{id}/media")
}

// serve runs req against the handler and checks the response against the
// document.
func (f *fixture) serve(t *testing.T, req *http.Request, opts *openapi3filter.Options) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	doc := loadOpenAPIDoc(t)
	router, err := legacy.NewRouter(doc)
	require.NoError(t, err, "openapi router init")
	check := httptest.NewRequest(req.Method, req.URL.String(), nil)
	route, pathParams, err := router.FindRoute(check)
	require.NoError(t, err, "openapi route lookup")

	if opts == nil {
		opts = &openapi3filter.Options{IncludeResponseStatus: true}
	}
	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    check,
			PathParams: pathParams,
			Route:      route,
		},
		Status:  rr.Code,
		Header:  rr.Header(),
		Options: opts,
	}
	input.SetBodyBytes(rr.Body.Bytes())
	require.NoError(t, openapi3filter.ValidateResponse(context.Background(), input), "openapi response validation")
	return rr
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func TestOpenAPI_ResponsesMatchDocument(t *testing.T) {
	f := newFixture(t, nil)

	rr := f.serve(t, jsonRequest(t, http.MethodPost, "/api/v1/sessions", map[string]any{"hlsSupported": true}), nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created SessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	base := "/api/v1/sessions/" + created.ID

	rr = f.serve(t, jsonRequest(t, http.MethodGet, base, nil), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.serve(t, jsonRequest(t, http.MethodPost, base+"/actions", map[string]any{"type": "start"}), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.serve(t, jsonRequest(t, http.MethodPost, base+"/media",
		map[string]any{"type": "ended", "load": created.Load, "currentTime": 4}), nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = f.serve(t, jsonRequest(t, http.MethodGet, base, nil), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"choices"`)

	rr = f.serve(t, jsonRequest(t, http.MethodGet, "/api/v1/playlist", nil), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.serve(t, jsonRequest(t, http.MethodGet, "/api/v1/sessions", nil), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.serve(t, jsonRequest(t, http.MethodDelete, "/api/v1/sessions/nope", nil),
		&openapi3filter.Options{IncludeResponseStatus: true, ExcludeResponseBody: true})
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestValidateRequests(t *testing.T) {
	f := newFixture(t, nil)
	id := f.create(t).ID
	base := "/api/v1/sessions/" + id

	tests := []struct {
		name string
		path string
		body any
		code string
	}{
		{"action without type", base + "/actions", map[string]any{"index": 1}, "INVALID_BODY"},
		{"action index not a number", base + "/actions", map[string]any{"type": "choice", "index": "one"}, "INVALID_BODY"},
		{"media without type", base + "/media", map[string]any{"load": 3}, "INVALID_BODY"},
		{"negative load", base + "/media", map[string]any{"type": "ended", "load": -1}, "INVALID_BODY"},
		{"create with unknown field", "/api/v1/sessions", map[string]any{"hls": true}, "INVALID_BODY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.code, decode[Problem](t, resp).Code)
		})
	}

	resp := f.do(t, http.MethodPost, base+"/actions", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, "actions need a body")
}
