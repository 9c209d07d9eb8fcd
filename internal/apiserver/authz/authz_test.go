package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"house-rent/internal/shared/apperr"
	"house-rent/internal/shared/model"

	"github.com/stretchr/testify/assert"
)

var (
	renter       = &Identity{ID: "usr-r", Role: model.UserRoleRenter, IsApproved: true}
	owner        = &Identity{ID: "usr-o", Role: model.UserRoleOwner, IsApproved: true}
	pendingOwner = &Identity{ID: "usr-p", Role: model.UserRoleOwner, IsApproved: false}
	admin        = &Identity{ID: "usr-a", Role: model.UserRoleAdmin, IsApproved: true}
	ownerOrAdmin = []model.UserRole{model.UserRoleOwner, model.UserRoleAdmin}
)

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		id      *Identity
		wantErr error
	}{
		{"owner 允许", owner, nil},
		{"admin 允许", admin, nil},
		{"renter 拒绝", renter, apperr.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireRole(ownerOrAdmin...)(tt.id)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, "User role renter is not authorized to access this route", err.Error())
		})
	}
}

func TestRequireOwnerApproved(t *testing.T) {
	assert.NoError(t, RequireOwnerApproved()(owner))
	assert.NoError(t, RequireOwnerApproved()(admin))
	assert.NoError(t, RequireOwnerApproved()(renter))
	assert.ErrorIs(t, RequireOwnerApproved()(pendingOwner), apperr.ErrOwnerPending)
}

func TestRequireResourceOwnership(t *testing.T) {
	tests := []struct {
		name    string
		id      *Identity
		ownerID string
		allowed bool
	}{
		{"所有者本人", owner, "usr-o", true},
		{"admin 任意资源", admin, "usr-o", true},
		{"其他 owner", owner, "usr-x", false},
		{"renter", renter, "usr-o", false},
		{"空 ownerID 不匹配", owner, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireResourceOwnership(tt.ownerID)(tt.id)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperr.ErrForbidden)
			}
		})
	}
}

func TestCheckShortCircuit(t *testing.T) {
	called := false
	spy := func(*Identity) error {
		called = true
		return nil
	}

	err := Check(renter, RequireRole(ownerOrAdmin...), spy)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.False(t, called)

	// 未审批 owner：角色通过，审批检查失败
	err = Check(pendingOwner, RequireRole(ownerOrAdmin...), RequireOwnerApproved(), spy)
	assert.ErrorIs(t, err, apperr.ErrOwnerPending)
	assert.False(t, called)

	assert.NoError(t, Check(owner, RequireRole(ownerOrAdmin...), RequireOwnerApproved(), spy))
	assert.True(t, called)

	assert.ErrorIs(t, Check(nil), apperr.ErrUnauthenticated)
}

func TestRequireMiddleware(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }
	h := Require(RequireRole(model.UserRoleAdmin))(ok)

	tests := []struct {
		name   string
		id     *Identity
		status int
	}{
		{"未认证", nil, http.StatusUnauthorized},
		{"非 admin", owner, http.StatusForbidden},
		{"admin", admin, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			if tt.id != nil {
				r = r.WithContext(WithIdentity(r.Context(), tt.id))
			}
			rec := httptest.NewRecorder()
			h(rec, r)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
