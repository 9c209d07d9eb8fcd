package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"house-rent/internal/apiserver/authz"
	"house-rent/internal/shared/apperr"
	"house-rent/internal/shared/model"
	"house-rent/internal/shared/storage/fixture"
	"house-rent/internal/shared/storage/repository"
	"house-rent/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type approvalCounter struct{ n int }

func (c *approvalCounter) OwnerApproved() { c.n++ }

func newTestService(t *testing.T) (*Service, *repository.Store) {
	t.Helper()
	store, err := fixture.NewEmptyStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewService(store, logging.Discard()), store
}

func seedUser(t *testing.T, store *repository.Store, id string, role model.UserRole, approved bool, at time.Time) *model.User {
	t.Helper()
	u := &model.User{
		ID: id, Name: "User " + id, Email: id + "@example.com", PasswordHash: "hash",
		Role: role, IsApproved: approved, CreatedAt: at, UpdatedAt: at,
	}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func TestApproveOwner(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	rec := &approvalCounter{}
	svc.SetMetrics(rec)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	admin := authz.IdentityOf(seedUser(t, store, "usr-admin", model.UserRoleAdmin, true, base))
	renter := seedUser(t, store, "usr-renter", model.UserRoleRenter, true, base)
	pending := seedUser(t, store, "usr-pending", model.UserRoleOwner, false, base)

	tests := []struct {
		name    string
		id      *authz.Identity
		userID  string
		wantErr error
	}{
		{"未登录", nil, pending.ID, apperr.ErrUnauthenticated},
		{"非 admin", authz.IdentityOf(renter), pending.ID, apperr.ErrForbidden},
		{"用户不存在", admin, "usr-missing", apperr.ErrNotFound},
		{"不是 owner", admin, renter.ID, apperr.ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ApproveOwner(ctx, tt.id, tt.userID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	u, err := svc.ApproveOwner(ctx, admin, pending.ID)
	require.NoError(t, err)
	assert.True(t, u.IsApproved)
	assert.Equal(t, model.UserRoleOwner, u.Role)
	assert.Equal(t, 1, rec.n)

	// 审批不可重复
	_, err = svc.ApproveOwner(ctx, admin, pending.ID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyApproved)
	assert.Equal(t, "Owner is already approved", err.Error())
	assert.Equal(t, 1, rec.n)
}

func TestListings(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	admin := authz.IdentityOf(seedUser(t, store, "usr-admin", model.UserRoleAdmin, true, base))
	seedUser(t, store, "usr-old", model.UserRoleOwner, false, base.Add(time.Hour))
	seedUser(t, store, "usr-new", model.UserRoleOwner, false, base.Add(2*time.Hour))
	seedUser(t, store, "usr-ok", model.UserRoleOwner, true, base.Add(3*time.Hour))
	renter := seedUser(t, store, "usr-renter", model.UserRoleRenter, true, base.Add(4*time.Hour))

	pending, err := svc.ListPendingOwners(ctx, admin)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "usr-new", pending[0].ID)
	assert.Equal(t, "usr-old", pending[1].ID)

	all, err := svc.ListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	_, err = svc.ListUsers(ctx, authz.IdentityOf(renter))
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestAdminRoutes(t *testing.T) {
	svc, store := newTestService(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	admin := authz.IdentityOf(seedUser(t, store, "usr-admin", model.UserRoleAdmin, true, base))
	renter := authz.IdentityOf(seedUser(t, store, "usr-renter", model.UserRoleRenter, true, base))
	seedUser(t, store, "usr-pending", model.UserRoleOwner, false, base)

	// 测试用认证中间件：X-Test-User 指定当前身份
	identities := map[string]*authz.Identity{admin.ID: admin, renter.ID: renter}
	protect := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id := identities[r.Header.Get("X-Test-User")]
			next(w, r.WithContext(authz.WithIdentity(r.Context(), id)))
		}
	}
	mux := http.NewServeMux()
	NewHandler(svc).RegisterRoutes(mux, protect)

	do := func(method, path, user string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(method, path, nil)
		r.Header.Set("X-Test-User", user)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, r)
		return rec
	}

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		status int
	}{
		{"待审批列表", http.MethodGet, "/api/admin/pending-owners", admin.ID, http.StatusOK},
		{"renter 被拒绝", http.MethodGet, "/api/admin/users", renter.ID, http.StatusForbidden},
		{"未登录", http.MethodGet, "/api/admin/users", "", http.StatusUnauthorized},
		{"审批不存在的用户", http.MethodPatch, "/api/admin/approve-owner/usr-missing", admin.ID, http.StatusNotFound},
		{"审批 owner", http.MethodPatch, "/api/admin/approve-owner/usr-pending", admin.ID, http.StatusOK},
		{"重复审批", http.MethodPatch, "/api/admin/approve-owner/usr-pending", admin.ID, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(tt.method, tt.path, tt.user)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.status == http.StatusOK, body["success"])
		})
	}

	rec := do(http.MethodGet, "/api/admin/users", admin.ID)
	var list struct {
		Count int                 `json:"count"`
		Data  []*model.PublicUser `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 3, list.Count)
	for _, u := range list.Data {
		assert.NotEmpty(t, u.Email)
	}
	assert.NotContains(t, rec.Body.String(), "password")
}
