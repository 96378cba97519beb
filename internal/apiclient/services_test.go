package apiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-admin/internal/apiclient"
	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/logging"
	"marketplace-admin/internal/repository/memory"
	"marketplace-admin/internal/token"
)

func TestNewValidatesOptions(t *testing.T) {
	_, err := apiclient.New(apiclient.Options{Sessions: memory.NewSessionRepository()})
	assert.Error(t, err)

	_, err = apiclient.New(apiclient.Options{BaseURL: "http://localhost:4000/api"})
	assert.Error(t, err)

	_, err = apiclient.New(apiclient.Options{BaseURL: "::not a url", Sessions: memory.NewSessionRepository()})
	assert.Error(t, err)
}

func TestLoginStoresSessionFromData(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "admin@example.com", in["email"])
		writeJSON(w, http.StatusOK, `{"status":200,"message":"Login successful","success":true,"data":{"accessToken":"a1","refreshToken":"r1","user":{"_id":"u1","full_name":"Root","email":"admin@example.com"}}}`)
	})
	h := newHarness(t, mux, domain.Session{})

	session, err := h.client.Auth.Login(context.Background(), " admin@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a1", session.AccessToken)
	assert.Equal(t, "Root", session.User.FullName)

	stored := h.session(t)
	assert.Equal(t, "r1", stored.RefreshToken)
	require.NotNil(t, stored.User)
	assert.Equal(t, "u1", stored.User.ID)
}

func TestLoginFallsBackToTopLevelTokensAndClaims(t *testing.T) {
	issuer := token.NewIssuer("test-secret", time.Minute, time.Hour)
	pair, err := issuer.Issue(token.Subject{ID: "u7", Email: "ops@example.com", FullName: "Ops"})
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/admin/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"message":"ok","accessToken":"`+pair.AccessToken+`","refreshToken":"`+pair.RefreshToken+`"}`)
	})
	h := newHarness(t, mux, domain.Session{})

	session, err := h.client.Auth.Login(context.Background(), "ops@example.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, session.User)
	assert.Equal(t, "u7", session.User.ID)
	assert.Equal(t, "ops@example.com", session.User.Email)
	assert.Equal(t, pair.RefreshToken, session.RefreshToken)
}

func TestLoginFailureUsesServerMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"status":401,"message":"Invalid email or password","success":false}`)
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "old", RefreshToken: "old-r"})

	_, err := h.client.Auth.Login(context.Background(), "x@example.com", "nope123")
	require.Error(t, err)
	assert.EqualError(t, err, "Invalid email or password")
	assert.True(t, apiclient.IsUnauthorized(err))
	// a failed login never goes through the refresh pipeline
	assert.Equal(t, "old", h.session(t).AccessToken)
	assert.Zero(t, h.expired.Load())
}

func TestLogoutClearsSession(t *testing.T) {
	h := newHarness(t, http.NewServeMux(), domain.Session{AccessToken: "a", RefreshToken: "r"})
	require.NoError(t, h.client.Auth.Logout(context.Background()))

	s, err := h.client.Auth.Current(context.Background())
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
}

func TestPasswordRecoveryMessages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":200,"success":true,"data":null}`)
	})
	mux.HandleFunc("/auth/reset-password", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"errors":[{"message":"Invalid or expired OTP"}]}`)
	})
	h := newHarness(t, mux, domain.Session{})

	msg, err := h.client.Auth.ForgotPassword(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "OTP sent successfully to your email", msg)

	_, err = h.client.Auth.ResetPassword(context.Background(), "a@example.com", "1234", "newpass")
	assert.EqualError(t, err, "Invalid or expired OTP")
}

func TestErrorFallbackMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/category", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "a"})

	_, err := h.client.Categories.List(context.Background(), apiclient.CategoryListParams{})
	assert.EqualError(t, err, "Failed to fetch categories")
	assert.False(t, apiclient.IsNotFound(err))
}

func TestErrorMessageWithStringErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/location/l1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, `{"status":409,"message":"Location already exists","success":false,"errors":"duplicate key"}`)
	})
	mux.HandleFunc("/location/l2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"status":400,"success":false,"errors":"name is required"}`)
	})
	mux.HandleFunc("/location/l3", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"status":400,"success":false,"errors":[{"message":"State is required"}]}`)
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "a"})

	tests := []struct {
		id   string
		want string
	}{
		{"l1", "Location already exists"},
		{"l2", "name is required"},
		{"l3", "State is required"},
	}
	for _, tt := range tests {
		_, err := h.client.Locations.Get(context.Background(), tt.id)
		assert.EqualError(t, err, tt.want, tt.id)
	}
}

func TestCategoryListEncodesParams(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/category", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "plumb", q.Get("search"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "desc", q.Get("sortOrder"))
		assert.False(t, q.Has("limit"))
		assert.False(t, q.Has("sortBy"))
		writeJSON(w, http.StatusOK, `{"status":200,"success":true,"data":{"categories":[{"_id":"c1","name":"Plumbing"}],"total":11,"page":2,"limit":10,"totalPages":2}}`)
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "a"})

	list, err := h.client.Categories.List(context.Background(), apiclient.CategoryListParams{
		ListParams: apiclient.ListParams{Search: "plumb", Page: 2, SortOrder: domain.SortDesc},
	})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Plumbing", list.Items[0].Name)
	assert.Equal(t, domain.Page{Page: 2, Limit: 10, Total: 11, TotalPages: 2}, list.Page)
	assert.False(t, list.Page.HasNext())
}

func TestCategoryCreateSendsMultipart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/category", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Electrical", r.FormValue("name"))
		assert.Equal(t, "Wiring", r.FormValue("description"))

		file, header, err := r.FormFile("icon")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "bolt.png", header.Filename)
		assert.Equal(t, "png-bytes", string(content))

		writeJSON(w, http.StatusCreated, `{"status":201,"success":true,"data":{"_id":"c9","name":"Electrical","icon":"https://cdn/bolt.png"}}`)
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "a"})

	category, err := h.client.Categories.Create(context.Background(), apiclient.CategoryInput{
		Name:        "Electrical",
		Description: "Wiring",
		Icon:        &apiclient.Upload{Filename: "bolt.png", Content: strings.NewReader("png-bytes")},
	})
	require.NoError(t, err)
	assert.Equal(t, "c9", category.ID)
}

func TestCategoryCreateRequiresIcon(t *testing.T) {
	h := newHarness(t, http.NewServeMux(), domain.Session{AccessToken: "a"})
	_, err := h.client.Categories.Create(context.Background(), apiclient.CategoryInput{Name: "Electrical"})
	assert.Error(t, err)
}

func TestCategoryDeleteAndNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/category/c1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		writeJSON(w, http.StatusOK, `{"status":200,"message":"Category deleted","success":true,"data":null}`)
	})
	mux.HandleFunc("/category/missing", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"status":404,"message":"Category not found","success":false}`)
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "a"})

	require.NoError(t, h.client.Categories.Delete(context.Background(), "c1"))

	_, err := h.client.Categories.Get(context.Background(), "missing")
	assert.True(t, apiclient.IsNotFound(err))
	assert.Error(t, h.client.Categories.Delete(context.Background(), " "))
}

func TestLocationListAcceptsBareArray(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/location", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":200,"success":true,"data":[{"_id":"l1","name":"Ikeja"},{"_id":"l2","name":"Lekki"}]}`)
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "a"})

	list, err := h.client.Locations.List(context.Background(), apiclient.LocationListParams{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 1, list.Page.TotalPages)
	assert.Equal(t, 2, list.Page.Total)
}

func TestLocationAllWalksPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/location", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		assert.Equal(t, "Lagos", r.URL.Query().Get("state"))
		id := "l" + strconv.Itoa(page)
		writeJSON(w, http.StatusOK, `{"status":200,"success":true,"data":{"locations":[{"_id":"`+id+`"}],"total":3,"page":`+strconv.Itoa(page)+`,"limit":1,"totalPages":3}}`)
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "a"})

	all, err := h.client.Locations.All(context.Background(), apiclient.LocationListParams{State: "Lagos"})
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, l := range all {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"l1", "l2", "l3"}, ids)
}

func TestUserListNormalizesPagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "contractor", r.URL.Query().Get("role"))
		writeJSON(w, http.StatusOK, `{"status":200,"success":true,"data":{"users":[{"_id":"u1","role":"contractor","full_name":"Bo"}],"pagination":{"currentPage":1,"totalPages":4,"totalUsers":37,"limit":10,"hasNextPage":true,"hasPrevPage":false}}}`)
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "a"})

	list, err := h.client.Users.List(context.Background(), apiclient.UserListParams{Role: domain.UserRoleContractor})
	require.NoError(t, err)
	assert.Equal(t, domain.Page{Page: 1, Limit: 10, Total: 37, TotalPages: 4}, list.Page)
	assert.True(t, list.Page.HasNext())
	assert.Equal(t, domain.UserRoleContractor, list.Items[0].Role)
}

func TestUserUpdateMeSendsOnlySetFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/me", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, map[string]any{"bio": "hello"}, in)
		writeJSON(w, http.StatusOK, `{"status":200,"success":true,"data":{"_id":"u1","bio":"hello"}}`)
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "a"})

	bio := "hello"
	user, err := h.client.Users.UpdateMe(context.Background(), apiclient.UserUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "hello", user.Bio)
}

func TestTransactionListDecodesAmounts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wallet/transactions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "platform_fee", r.URL.Query().Get("type"))
		writeJSON(w, http.StatusOK, `{"status":200,"success":true,"data":{"transactions":[{"_id":"t1","type":"platform_fee","amount":12.35,"status":"completed"}],"pagination":{"page":1,"limit":20,"total":1,"totalPages":1}}}`)
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "a"})

	list, err := h.client.Transactions.List(context.Background(), apiclient.TransactionListParams{Type: domain.TransactionTypePlatformFee})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "12.35", list.Items[0].Amount.String())
	assert.Equal(t, 1, list.Page.Total)
}

func TestJobCreateAndGet(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/job", func(w http.ResponseWriter, r *http.Request) {
		var in apiclient.JobInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Fix sink", in.Title)
		writeJSON(w, http.StatusCreated, `{"status":201,"success":true,"data":{"_id":"j1","title":"Fix sink","status":"open"}}`)
	})
	mux.HandleFunc("/job/j1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":200,"success":true,"data":{"_id":"j1","title":"Fix sink","status":"open"}}`)
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "a"})

	job, err := h.client.Jobs.Create(context.Background(), apiclient.JobInput{Title: "Fix sink", Budget: 50})
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusOpen, job.Status)

	got, err := h.client.Jobs.Get(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, "Fix sink", got.Title)
}

func TestRequestCarriesRequestID(t *testing.T) {
	var id string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = r.Header.Get("X-Request-ID")
		writeJSON(w, http.StatusOK, meBody("Ada"))
	}))
	t.Cleanup(srv.Close)

	client, err := apiclient.New(apiclient.Options{BaseURL: srv.URL + "/", Sessions: memory.NewSessionRepository(), Logger: logging.Discard()})
	require.NoError(t, err)
	_, err = client.Users.Me(context.Background())
	require.NoError(t, err)
	assert.Len(t, id, 36)
}
