package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityMiddleware_ParsesHeaders(t *testing.T) {
	var gotUserID int64
	var gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = getUserIDFromContext(r.Context())
		gotRole, _ = r.Context().Value("user_role").(string)
	})

	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("X-User-ID", "42")
	request.Header.Set("X-User-Role", "ADMIN")

	IdentityMiddleware(next).ServeHTTP(httptest.NewRecorder(), request)

	assert.Equal(t, int64(42), gotUserID)
	assert.Equal(t, "ADMIN", gotRole)
}

func TestIdentityMiddleware_MalformedIDIsAnonymous(t *testing.T) {
	var gotUserID int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = getUserIDFromContext(r.Context())
	})

	for _, raw := range []string{"abc", "-1", "0", ""} {
		request := httptest.NewRequest("GET", "/", nil)
		if raw != "" {
			request.Header.Set("X-User-ID", raw)
		}
		IdentityMiddleware(next).ServeHTTP(httptest.NewRecorder(), request)
		assert.Zero(t, gotUserID, "header %q must not authenticate", raw)
	}
}

func TestAdminOnly_RejectsAnonymous(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	recorder := httptest.NewRecorder()
	AdminOnly(next).ServeHTTP(recorder, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAdminOnly_RejectsNonAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("X-User-ID", "42")
	request.Header.Set("X-User-Role", "CUSTOMER")

	recorder := httptest.NewRecorder()
	IdentityMiddleware(AdminOnly(next)).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestAdminOnly_AllowsAdmin(t *testing.T) {
	ran := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran = true
	})

	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("X-User-ID", "42")
	request.Header.Set("X-User-Role", "ADMIN")

	IdentityMiddleware(AdminOnly(next)).ServeHTTP(httptest.NewRecorder(), request)

	assert.True(t, ran)
}
