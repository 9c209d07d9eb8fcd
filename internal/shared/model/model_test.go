package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPubliclyVisible(t *testing.T) {
	statuses := []PropertyStatus{
		PropertyStatusPending,
		PropertyStatusAvailable,
		PropertyStatusRented,
		PropertyStatusMaintenance,
	}

	for _, status := range statuses {
		for _, approved := range []bool{true, false} {
			p := &Property{Status: status, IsApproved: approved}
			want := approved && status == PropertyStatusAvailable
			assert.Equal(t, want, IsPubliclyVisible(p), "status=%s approved=%v", status, approved)
		}
	}

	assert.False(t, IsPubliclyVisible(nil))
}

func TestUserRole(t *testing.T) {
	tests := []struct {
		role        UserRole
		valid       bool
		registrable bool
	}{
		{UserRoleRenter, true, true},
		{UserRoleOwner, true, true},
		{UserRoleAdmin, true, false},
		{"landlord", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.role.Valid())
			assert.Equal(t, tt.registrable, tt.role.Registrable())
		})
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	assert.False(t, BookingStatusPending.Terminal())
	assert.True(t, BookingStatusApproved.Terminal())
	assert.True(t, BookingStatusRejected.Terminal())
	assert.True(t, BookingStatusCancelled.Terminal())
}

func TestParseTimeSlot(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  TimeSlot
		ok    bool
	}{
		{"完整标签", "Morning (9AM - 12PM)", TimeSlotMorning, true},
		{"关键字", "afternoon", TimeSlotAfternoon, true},
		{"大小写与空白", "  EVENING ", TimeSlotEvening, true},
		{"未知时段", "midnight", "", false},
		{"空字符串", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimeSlot(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserPasswordHashHidden(t *testing.T) {
	u := &User{ID: "usr-1", Name: "Jo", Email: "jo@x.com", PasswordHash: "secret-hash", Role: UserRoleRenter}
	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-hash")
	assert.NotContains(t, string(data), "password")
}

func TestNewID(t *testing.T) {
	id := NewID(IDPrefixBooking)
	assert.True(t, strings.HasPrefix(id, "bk-"))
	assert.Len(t, id, len("bk-")+12)

	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID("test")
		require.False(t, ids[id], "duplicate id %s", id)
		ids[id] = true
	}
}

func TestSummaries(t *testing.T) {
	var nilUser *User
	var nilProp *Property
	assert.Nil(t, nilUser.Summary())
	assert.Nil(t, nilProp.Summary())

	p := &Property{ID: "prop-1", Title: "Loft", Address: "1 Main", Price: 1200, Location: Location{City: "Austin"}}
	s := p.Summary()
	assert.Equal(t, "Loft", s.Title)
	assert.Equal(t, "Austin", s.Location.City)
}
