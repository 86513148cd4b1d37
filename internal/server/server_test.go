package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/offices/internal/auth"
	"github.com/wolfeidau/offices/internal/models"
	"github.com/wolfeidau/offices/internal/office"
	"github.com/wolfeidau/offices/internal/store/memory"
)

const validOffice = `{"company":"Acme Widgets","city":"Portland","state":"OR","general_manager":"Jane Doe","phone_number":"(503) 555-0100"}`

type testServer struct {
	*httptest.Server
	employees  *memory.EmployeeStore
	signingKey string
}

func newTestServer(t *testing.T, baseURL string) *testServer {
	t.Helper()

	privPEM, pubPEM, err := auth.GenerateSigningKey()
	require.NoError(t, err)

	verifier, err := auth.NewJWTVerifierFromPEM(pubPEM, auth.DefaultIssuer)
	require.NoError(t, err)

	employees := memory.NewEmployeeStore()
	svc := office.NewService(memory.NewOfficeStore(), employees)
	srv := httptest.NewServer(NewServer(svc, verifier, baseURL).Handler(zerolog.Nop()))
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, employees: employees, signingKey: privPEM}
}

func (ts *testServer) token(t *testing.T, subject string) string {
	t.Helper()
	token, err := auth.IssueToken(ts.signingKey, subject, time.Hour)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, subject, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token(t, subject))
	}

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (ts *testServer) seedEmployee(t *testing.T, owner, first string) *models.Employee {
	t.Helper()
	e := &models.Employee{FirstName: first, LastName: "Smith", Owner: owner}
	require.NoError(t, ts.employees.Create(context.Background(), e))
	return e
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func errorMessage(t *testing.T, resp *http.Response) string {
	return decode[errorResponse](t, resp).Error
}

func (ts *testServer) createOffice(t *testing.T, subject, body string) *models.Office {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/offices", subject, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[*models.Office](t, resp)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, "")

	resp := ts.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", decode[map[string]string](t, resp)["status"])
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t, "")

	t.Run("missing token", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/offices", "", "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, msgUnauthorized, errorMessage(t, resp))
	})

	t.Run("garbage token", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/offices", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer not-a-jwt")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("auth runs before content type check", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/offices", strings.NewReader(validOffice))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "text/plain")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestCreateOffice(t *testing.T) {
	ts := newTestServer(t, "")

	t.Run("created", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/offices", "alice", validOffice)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		o := decode[*models.Office](t, resp)
		require.NotEmpty(t, o.ID)
		require.Equal(t, "alice", o.Owner)
		require.Equal(t, ts.URL+"/offices/"+o.ID, o.Self)
		require.Equal(t, o.Self, resp.Header.Get("Location"))
		require.NotNil(t, o.Employees)
		require.Empty(t, o.Employees)
	})

	t.Run("duplicate", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/offices", "alice", validOffice)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, msgConflict, errorMessage(t, resp))
	})

	t.Run("same identity for another owner", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/offices", "bob", validOffice)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	tests := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{
			name:   "invalid json",
			body:   `{"company":`,
			status: http.StatusBadRequest,
			msg:    msgInvalidJSON,
		},
		{
			name:   "json array",
			body:   `[]`,
			status: http.StatusBadRequest,
			msg:    msgInvalidJSON,
		},
		{
			name:   "unknown attribute",
			body:   `{"company":"Acme","city":"Portland","state":"OR","general_manager":"Jane Doe","phone_number":"(503) 555-0100","owner":"mallory"}`,
			status: http.StatusBadRequest,
			msg:    msgInvalidAttribute,
		},
		{
			name:   "missing attribute",
			body:   `{"company":"Acme","city":"Portland","state":"OR"}`,
			status: http.StatusBadRequest,
			msg:    msgMissingAttributes,
		},
		{
			name:   "invalid general manager",
			body:   `{"company":"Initech","city":"Austin","state":"TX","general_manager":"B1ll","phone_number":"(512) 555-0100"}`,
			status: http.StatusBadRequest,
			msg:    "The request object's general manager attribute is not valid",
		},
		{
			name:   "invalid phone number",
			body:   `{"company":"Initech","city":"Austin","state":"TX","general_manager":"Bill Lumbergh","phone_number":"555"}`,
			status: http.StatusBadRequest,
			msg:    "The request object's phone number attribute is not valid",
		},
		{
			name:   "invalid state",
			body:   `{"company":"Initech","city":"Austin","state":"XX","general_manager":"Bill Lumbergh","phone_number":"(512) 555-0100"}`,
			status: http.StatusBadRequest,
			msg:    "The request object's state attribute is not valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, http.MethodPost, "/offices", "carol", tt.body)
			require.Equal(t, tt.status, resp.StatusCode)
			require.Equal(t, tt.msg, errorMessage(t, resp))
		})
	}

	t.Run("content type with charset", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/offices",
			strings.NewReader(`{"company":"Globex","city":"Springfield","state":"IL","general_manager":"Hank Scorpio","phone_number":"(217) 555-0100"}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		req.Header.Set("Authorization", "Bearer "+ts.token(t, "carol"))

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("wrong content type", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/offices", strings.NewReader(validOffice))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "text/plain")
		req.Header.Set("Authorization", "Bearer "+ts.token(t, "carol"))

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusNotAcceptable, resp.StatusCode)
		require.Equal(t, msgNotAcceptable, errorMessage(t, resp))
	})
}

func TestConfiguredBaseURL(t *testing.T) {
	ts := newTestServer(t, "https://api.example.com/")

	o := ts.createOffice(t, "alice", validOffice)
	require.Equal(t, "https://api.example.com/offices/"+o.ID, o.Self)
}

func TestGetOffice(t *testing.T) {
	ts := newTestServer(t, "")
	created := ts.createOffice(t, "alice", validOffice)

	t.Run("owner", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/offices/"+created.ID, "alice", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotEmpty(t, resp.Header.Get("ETag"))

		o := decode[*models.Office](t, resp)
		require.Equal(t, created.ID, o.ID)
	})

	t.Run("if none match", func(t *testing.T) {
		first := ts.do(t, http.MethodGet, "/offices/"+created.ID, "alice", "")
		etag := first.Header.Get("ETag")

		req, err := http.NewRequest(http.MethodGet, ts.URL+"/offices/"+created.ID, nil)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+ts.token(t, "alice"))
		req.Header.Set("If-None-Match", etag)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusNotModified, resp.StatusCode)
	})

	t.Run("other owner", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/offices/"+created.ID, "bob", "")
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, msgForbidden, errorMessage(t, resp))
	})

	t.Run("missing", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/offices/does-not-exist", "alice", "")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, msgOfficeNotFound, errorMessage(t, resp))
	})
}

func TestListOffices(t *testing.T) {
	ts := newTestServer(t, "")

	for _, company := range []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf"} {
		ts.createOffice(t, "alice", `{"company":"`+company+`","city":"Portland","state":"OR","general_manager":"Jane Doe","phone_number":"(503) 555-0100"}`)
	}
	ts.createOffice(t, "bob", validOffice)

	resp := ts.do(t, http.MethodGet, "/offices", "alice", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	first := decode[office.Page](t, resp)
	require.Len(t, first.Offices, office.PageSize)
	require.NotEmpty(t, first.Cursor)
	require.Equal(t, ts.URL+"/offices?cursor="+first.Cursor, first.Next)

	resp = ts.do(t, http.MethodGet, strings.TrimPrefix(first.Next, ts.URL), "alice", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	second := decode[office.Page](t, resp)
	require.Len(t, second.Offices, 2)
	require.Empty(t, second.Next)
	require.Empty(t, second.Cursor)

	seen := map[string]bool{}
	for _, o := range append(first.Offices, second.Offices...) {
		require.Equal(t, "alice", o.Owner)
		require.False(t, seen[o.ID])
		seen[o.ID] = true
	}

	t.Run("empty", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/offices", "nobody", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.JSONEq(t, `[]`, string(body["offices"]))
		require.NotContains(t, body, "next")
	})

	t.Run("invalid cursor", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/offices?cursor=0OIl", "alice", "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, msgInvalidCursor, errorMessage(t, resp))
	})
}

func TestReplaceAndPatchOffice(t *testing.T) {
	ts := newTestServer(t, "")
	created := ts.createOffice(t, "alice", validOffice)

	t.Run("replace", func(t *testing.T) {
		resp := ts.do(t, http.MethodPut, "/offices/"+created.ID, "alice",
			`{"company":"Acme Gadgets","city":"Seattle","state":"WA","general_manager":"John Roe","phone_number":"(206) 555-0100"}`)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, created.Self, resp.Header.Get("Location"))

		o := decode[*models.Office](t, resp)
		require.Equal(t, "Seattle", o.City)
		require.Equal(t, created.ID, o.ID)
	})

	t.Run("replace with current identity conflicts", func(t *testing.T) {
		resp := ts.do(t, http.MethodPut, "/offices/"+created.ID, "alice",
			`{"company":"Acme Gadgets","city":"Seattle","state":"WA","general_manager":"John Roe","phone_number":"(206) 555-0100"}`)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, msgConflict, errorMessage(t, resp))
	})

	t.Run("patch", func(t *testing.T) {
		resp := ts.do(t, http.MethodPatch, "/offices/"+created.ID, "alice", `{"general_manager":"Sam Poe"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		o := decode[*models.Office](t, resp)
		require.Equal(t, "Sam Poe", o.GeneralManager)
		require.Equal(t, "Seattle", o.City)
	})

	t.Run("patch empty body leaves office unchanged", func(t *testing.T) {
		before := decode[*models.Office](t, ts.do(t, http.MethodGet, "/offices/"+created.ID, "alice", ""))

		resp := ts.do(t, http.MethodPatch, "/offices/"+created.ID, "alice", `{}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, before, decode[*models.Office](t, resp))
	})

	t.Run("patch by other owner", func(t *testing.T) {
		resp := ts.do(t, http.MethodPatch, "/offices/"+created.ID, "bob", `{"city":"Boise"}`)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("replace missing", func(t *testing.T) {
		resp := ts.do(t, http.MethodPut, "/offices/missing", "alice", validOffice)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, msgOfficeNotFound, errorMessage(t, resp))
	})
}

func TestCollectionMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, "")

	for _, method := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			resp := ts.do(t, method, "/offices", "alice", "")
			require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
			require.Equal(t, "GET, POST", resp.Header.Get("Allow"))
			require.Equal(t, msgMethodNotAllowed, errorMessage(t, resp))
		})

		t.Run(method+" without token", func(t *testing.T) {
			resp := ts.do(t, method, "/offices", "", "")
			require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
			require.Equal(t, "GET, POST", resp.Header.Get("Allow"))
			require.Equal(t, msgMethodNotAllowed, errorMessage(t, resp))
		})
	}
}

func TestEmployeeAssignment(t *testing.T) {
	ts := newTestServer(t, "")
	o := ts.createOffice(t, "alice", validOffice)
	alice := ts.seedEmployee(t, "alice", "Ann")
	bobs := ts.seedEmployee(t, "bob", "Ben")

	path := "/offices/" + o.ID + "/employees/" + alice.ID

	t.Run("assign", func(t *testing.T) {
		resp := ts.do(t, http.MethodPut, path, "alice", "")
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		got := decode[*models.Office](t, ts.do(t, http.MethodGet, "/offices/"+o.ID, "alice", ""))
		require.Len(t, got.Employees, 1)
		require.Equal(t, alice.ID, got.Employees[0].ID)

		e, err := ts.employees.Get(context.Background(), alice.ID)
		require.NoError(t, err)
		require.NotNil(t, e.Employer)
		require.Equal(t, o.ID, e.Employer.ID)
	})

	t.Run("assign twice", func(t *testing.T) {
		resp := ts.do(t, http.MethodPut, path, "alice", "")
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, msgAlreadyAssigned, errorMessage(t, resp))
	})

	t.Run("assign other owners employee", func(t *testing.T) {
		resp := ts.do(t, http.MethodPut, "/offices/"+o.ID+"/employees/"+bobs.ID, "alice", "")
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, msgForbidden, errorMessage(t, resp))
	})

	t.Run("assign missing employee", func(t *testing.T) {
		resp := ts.do(t, http.MethodPut, "/offices/"+o.ID+"/employees/missing", "alice", "")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, msgLinkNotFound, errorMessage(t, resp))
	})

	t.Run("unassign", func(t *testing.T) {
		resp := ts.do(t, http.MethodDelete, path, "alice", "")
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		e, err := ts.employees.Get(context.Background(), alice.ID)
		require.NoError(t, err)
		require.Nil(t, e.Employer)
	})

	t.Run("unassign again", func(t *testing.T) {
		resp := ts.do(t, http.MethodDelete, path, "alice", "")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, msgNotAssigned, errorMessage(t, resp))
	})
}

func TestDeleteOffice(t *testing.T) {
	ts := newTestServer(t, "")
	o := ts.createOffice(t, "alice", validOffice)
	e := ts.seedEmployee(t, "alice", "Ann")

	resp := ts.do(t, http.MethodPut, "/offices/"+o.ID+"/employees/"+e.ID, "alice", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	t.Run("other owner", func(t *testing.T) {
		resp := ts.do(t, http.MethodDelete, "/offices/"+o.ID, "bob", "")
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("owner", func(t *testing.T) {
		resp := ts.do(t, http.MethodDelete, "/offices/"+o.ID, "alice", "")
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		got, err := ts.employees.Get(context.Background(), e.ID)
		require.NoError(t, err)
		require.Nil(t, got.Employer)
	})

	t.Run("gone", func(t *testing.T) {
		resp := ts.do(t, http.MethodDelete, "/offices/"+o.ID, "alice", "")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, msgOfficeNotFound, errorMessage(t, resp))
	})
}

func TestRawQueryValue(t *testing.T) {
	require.Equal(t, "abc%2B", rawQueryValue("x=1&cursor=abc%2B", "cursor"))
	require.Equal(t, "", rawQueryValue("x=1", "cursor"))
	require.Equal(t, "", rawQueryValue("", "cursor"))
}
