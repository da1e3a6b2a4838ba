package model

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDList_AddRemove(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	var l IDList

	assert.True(t, l.Add(a))
	assert.True(t, l.Add(b))
	assert.False(t, l.Add(a))
	assert.True(t, l.Add(c))
	assert.Equal(t, IDList{a, b, c}, l)

	assert.True(t, l.Remove(b))
	assert.False(t, l.Remove(b))
	assert.Equal(t, IDList{a, c}, l)
	assert.Equal(t, 2, l.Len())
}

func TestIDList_RemoveDoesNotAliasOriginal(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	orig := IDList{a, b}
	l := orig
	l.Remove(a)
	assert.Equal(t, IDList{a, b}, orig)
}

func TestIDList_ColumnRoundTrip(t *testing.T) {
	l := IDList{uuid.New(), uuid.New()}
	v, err := l.Value()
	require.NoError(t, err)

	var got IDList
	require.NoError(t, got.Scan(v))
	assert.Equal(t, l, got)

	require.NoError(t, got.Scan([]byte(v.(string))))
	assert.Equal(t, l, got)
}

func TestIDList_EmptyForms(t *testing.T) {
	var l IDList
	v, err := l.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	b, err := json.Marshal(struct {
		Likes IDList `json:"likes"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"likes":[]}`, string(b))

	require.NoError(t, l.Scan(nil))
	assert.NotNil(t, l)
	assert.Empty(t, l)

	assert.Error(t, l.Scan(42))
	assert.Error(t, l.Scan("not json"))
}

func TestStringList_Remove(t *testing.T) {
	l := StringList{"a", "b", "a", "c"}
	assert.True(t, l.Remove("a"))
	assert.Equal(t, StringList{"b", "c"}, l)
	assert.False(t, l.Remove("zzz"))
	assert.True(t, l.Contains("c"))
}
