package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_ObserveDeliversCurrentStateImmediately(t *testing.T) {
	h := NewHub()

	var got []*User
	unsub := h.Observe(func(u *User) { got = append(got, u) })
	defer unsub()

	require.Len(t, got, 1)
	assert.Nil(t, got[0])
}

func TestHub_SetNotifiesObservers(t *testing.T) {
	h := NewHub()

	var got []*User
	unsub := h.Observe(func(u *User) { got = append(got, u) })
	defer unsub()

	user := &User{ID: "uid-1", Email: "user@example.com", ProviderID: "password"}
	h.Set(user)

	require.Len(t, got, 2)
	require.NotNil(t, got[1])
	assert.Equal(t, "uid-1", got[1].ID)

	h.Set(nil) // sign-out
	require.Len(t, got, 3)
	assert.Nil(t, got[2])
}

func TestHub_UnsubscribeStopsDeliveries(t *testing.T) {
	h := NewHub()

	count := 0
	unsub := h.Observe(func(u *User) { count++ })
	require.Equal(t, 1, count)

	unsub()
	h.Set(&User{ID: "uid-1"})
	assert.Equal(t, 1, count)
}

func TestHub_ObserversReceiveCopies(t *testing.T) {
	h := NewHub()
	h.Set(&User{ID: "uid-1", Email: "user@example.com"})

	var seen *User
	unsub := h.Observe(func(u *User) { seen = u })
	defer unsub()

	require.NotNil(t, seen)
	seen.Email = "mutated@example.com"

	assert.Equal(t, "user@example.com", h.Current().Email)
}

func TestHub_CurrentReflectsLastSet(t *testing.T) {
	h := NewHub()
	assert.Nil(t, h.Current())

	now := time.Now()
	h.Set(&User{ID: "uid-2", LastSignInAt: now})
	cur := h.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "uid-2", cur.ID)
	assert.WithinDuration(t, now, cur.LastSignInAt, time.Second)
}
