package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignOnlyTouchesProvidedKeys(t *testing.T) {
	name := "Alice"
	u := &User{Email: "a@example.com", Name: &name, IsActive: true}

	require.NoError(t, Assign(u, map[string]any{"is_superuser": true, "unknown": 1}))

	assert.Equal(t, "a@example.com", u.Email)
	require.NotNil(t, u.Name)
	assert.Equal(t, "Alice", *u.Name)
	assert.True(t, u.IsActive)
	assert.True(t, u.IsSuperuser)
}

func TestAssignConvertsTypedValues(t *testing.T) {
	id := uuid.New()
	ev := &Event{}

	require.NoError(t, Assign(ev, map[string]any{"user_id": id, "message": "hello"}))
	assert.Equal(t, id, ev.UserID)
	assert.Equal(t, "hello", ev.Message)

	require.NoError(t, Assign(ev, map[string]any{"user_id": id.String()}))
	assert.Equal(t, id, ev.UserID)
}

func TestAssignNullClearsPointer(t *testing.T) {
	name := "Bob"
	u := &User{Name: &name}

	require.NoError(t, Assign(u, map[string]any{"name": nil}))
	assert.Nil(t, u.Name)
}

func TestAssignRejectsWrongType(t *testing.T) {
	kv := &KVStore{}
	assert.Error(t, Assign(kv, map[string]any{"key": 12}))
}

func TestBeforeCreateAssignsID(t *testing.T) {
	kv := &KVStore{Key: "k"}
	require.NoError(t, kv.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, kv.ID)

	fixed := uuid.New()
	ev := &Event{ID: fixed}
	require.NoError(t, ev.BeforeCreate(nil))
	assert.Equal(t, fixed, ev.ID)
}
