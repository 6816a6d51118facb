package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorgomez09/healthflow/internal/auth/database"
	authmodels "github.com/victorgomez09/healthflow/internal/auth/models"
	"github.com/victorgomez09/healthflow/internal/cerr"
	"github.com/victorgomez09/healthflow/internal/config"
	"github.com/victorgomez09/healthflow/internal/models"
	"github.com/victorgomez09/healthflow/internal/obs"
	"github.com/victorgomez09/healthflow/pkg/trace"
)

func newTestClient(t *testing.T, h http.Handler, store database.TokenStore) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(config.API{BaseURL: srv.URL + "/api", Pool: config.DefaultPool}, store, obs.NewMetrics(), nil)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestBuildQuery(t *testing.T) {
	var nilPtr *string
	empty := models.FacilityType("")

	tests := []struct {
		name   string
		params map[string]any
		want   string
	}{
		{
			name:   "omits nil and empty, json-encodes objects",
			params: map[string]any{"a": "x", "b": nil, "c": "", "d": map[string]int{"k": 1}},
			want:   "a=x&d=%7B%22k%22%3A1%7D",
		},
		{
			name:   "typed nil and empty named string",
			params: map[string]any{"p": nilPtr, "t": empty, "s": []string(nil)},
			want:   "",
		},
		{
			name:   "scalars",
			params: map[string]any{"page": 2, "ok": true, "ratio": 94.2},
			want:   "ok=true&page=2&ratio=94.2",
		},
		{
			name:   "slices are json arrays",
			params: map[string]any{"metrics": []string{"stockouts", "completeness"}},
			want:   "metrics=%5B%22stockouts%22%2C%22completeness%22%5D",
		},
		{
			name:   "spaces and named types",
			params: map[string]any{"lga": "Lagos Island", "type": models.FacilitySecondary},
			want:   "lga=Lagos+Island&type=secondary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQuery(tt.params))
		})
	}
}

func TestBuildQuery_OrderInsensitive(t *testing.T) {
	got, err := url.ParseQuery(BuildQuery(map[string]any{"d": map[string]int{"k": 1}, "a": "x"}))
	require.NoError(t, err)
	assert.Equal(t, url.Values{"a": {"x"}, "d": {`{"k":1}`}}, got)
}

func TestClient_Facilities(t *testing.T) {
	var gotQuery url.Values
	var gotAuth, gotRequestID string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/facilities", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(trace.Header)
		writeJSON(w, http.StatusOK, map[string]any{
			"data":    []map[string]any{{"id": "1", "name": "General Hospital Lagos", "state": "Lagos"}},
			"success": true,
			"meta":    map[string]int{"page": 1, "limit": 10, "total": 1, "totalPages": 1},
		})
	})

	c := newTestClient(t, mux, database.NewMemoryStore("tok-1"))
	resp, err := c.Facilities(context.Background(), models.FacilityQuery{
		State:      "Lagos",
		Pagination: models.Pagination{Page: 1, Limit: 10},
	})
	require.NoError(t, err)

	require.Len(t, resp.Data, 1)
	assert.Equal(t, "General Hospital Lagos", resp.Data[0].Name)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.TotalPages)
	assert.Equal(t, url.Values{"state": {"Lagos"}, "page": {"1"}, "limit": {"10"}}, gotQuery)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth atomic.Value
	gotAuth.Store("unset")
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}, "success": true})
	})

	c := newTestClient(t, h, database.NewMemoryStore(""))
	_, err := c.States(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", gotAuth.Load())
}

func TestClient_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
		kind    cerr.Kind
	}{
		{
			name: "message from body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid state"})
			},
			want: "Invalid state",
			kind: cerr.KindHTTP,
		},
		{
			name: "non json body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = io.WriteString(w, "<html>bad gateway</html>")
			},
			want: "HTTP 502: Bad Gateway",
			kind: cerr.KindHTTP,
		},
		{
			name: "json without message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false})
			},
			want: "HTTP 401: Unauthorized",
			kind: cerr.KindUnauthorized,
		},
		{
			name: "2xx without data fails closed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"success": true})
			},
			want: "invalid response from server: response has no data",
			kind: cerr.KindDecode,
		},
		{
			name: "2xx malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, "{not json")
			},
			kind: cerr.KindDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler, nil)
			_, err := c.Alerts(context.Background(), models.AlertQuery{})
			require.Error(t, err)

			var re *cerr.RequestError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.kind, re.Kind)
			if tt.want != "" {
				assert.Equal(t, tt.want, err.Error())
			}
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(config.API{BaseURL: base, Pool: config.DefaultPool}, nil, nil, nil)
	require.NoError(t, err)

	_, err = c.Commodities(context.Background())
	require.Error(t, err)
	assert.True(t, cerr.IsNetwork(err))
}

func TestClient_CurrentUserValidates(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"firstName": "No", "lastName": "Id"}, "success": true})
	})
	c := newTestClient(t, h, database.NewMemoryStore("tok"))

	_, err := c.CurrentUser(context.Background())
	var re *cerr.RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, cerr.KindDecode, re.Kind)
}

func TestClient_SetTokenPersists(t *testing.T) {
	store := database.NewMemoryStore("")
	c := newTestClient(t, http.NotFoundHandler(), store)

	require.NoError(t, c.SetToken("abc"))
	stored, _ := store.LoadToken()
	assert.Equal(t, "abc", stored)
	assert.Equal(t, "abc", c.Token())

	require.NoError(t, c.SetToken(""))
	stored, _ = store.LoadToken()
	assert.Empty(t, stored)
	assert.Empty(t, c.Token())
}

func TestClient_TokenCapturedAtRequestBuild(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler(), database.NewMemoryStore("first"))

	req, err := c.newRequest(context.Background(), http.MethodGet, "/stock", nil)
	require.NoError(t, err)
	require.NoError(t, c.SetToken(""))

	assert.Equal(t, "Bearer first", req.Header.Get("Authorization"))
}

func TestClient_LoginAndUpdateAlert(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds authmodels.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "password" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"user":  map[string]any{"id": "1", "email": creds.Email, "role": "admin", "isActive": true},
				"token": "jwt-token",
			},
		})
	})
	mux.HandleFunc("/api/alerts/1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"status": "resolved"}, body)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"id": "1", "status": "resolved"}})
	})

	c := newTestClient(t, mux, nil)

	resp, err := c.Login(context.Background(), authmodels.Credentials{Email: "admin@example.com", Password: "password"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", resp.Data.Token)
	assert.Equal(t, authmodels.RoleAdmin, resp.Data.User.Role)

	_, err = c.Login(context.Background(), authmodels.Credentials{Email: "admin@example.com", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.True(t, cerr.IsUnauthorized(err))

	status := models.AlertResolved
	updated, err := c.UpdateAlert(context.Background(), "1", models.AlertUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.AlertResolved, updated.Data.Status)
}

func TestClient_LogoutAcceptsEmptyBody(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, h, database.NewMemoryStore("tok"))
	assert.NoError(t, c.Logout(context.Background()))
}

type handlerTransport struct{ h http.Handler }

func (t handlerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	t.h.ServeHTTP(rec, r)
	return rec.Result(), nil
}

func TestNewClientWithTransport_InProcess(t *testing.T) {
	var gotPath, gotQuery string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    []map[string]string{{"code": "IKE", "name": "Ikeja", "state": "Lagos"}},
		})
	})

	c, err := NewClientWithTransport(config.API{BaseURL: "http://healthflow.test/api/"}, nil, handlerTransport{h}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://healthflow.test/api", c.BaseURL())

	resp, err := c.LGAs(context.Background(), "Lagos")
	require.NoError(t, err)
	assert.Equal(t, "/api/geography/lgas", gotPath)
	assert.Equal(t, "state=Lagos", gotQuery)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Ikeja", resp.Data[0].Name)
}
