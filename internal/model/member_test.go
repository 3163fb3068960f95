package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberUnmarshalMixedShapes(t *testing.T) {
	raw := `["u-1", {"id": "u-2", "email": "two@example.com"}, {"id": "u-3"}]`

	var members []Member
	require.NoError(t, json.Unmarshal([]byte(raw), &members))

	assert.Equal(t, []Member{
		{ID: "u-1"},
		{ID: "u-2", Email: "two@example.com"},
		{ID: "u-3"},
	}, members)
}

func TestMemberUnmarshalRejectsGarbage(t *testing.T) {
	var m Member
	err := json.Unmarshal([]byte(`42`), &m)
	assert.Error(t, err)
}

func TestMemberIDs(t *testing.T) {
	members := []Member{{ID: "a"}, {ID: "b", Email: "b@example.com"}}
	assert.Equal(t, []string{"a", "b"}, MemberIDs(members))
	assert.Empty(t, MemberIDs(nil))
}

func TestContainsMember(t *testing.T) {
	members := []Member{{ID: "a"}, {ID: "b"}}
	assert.True(t, ContainsMember(members, "a"))
	assert.False(t, ContainsMember(members, "c"))
	assert.False(t, ContainsMember(nil, "a"))
}
