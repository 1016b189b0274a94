package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testContact struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func TestMemory_CRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	id, err := m.Create(ctx, "skills", testSkill{Name: "Go", Level: 80})
	require.NoError(t, err)

	snap, err := m.Get(ctx, "skills", id)
	require.NoError(t, err)
	var got testSkill
	require.NoError(t, snap.DataTo(&got))
	assert.Equal(t, testSkill{Name: "Go", Level: 80}, got)

	require.NoError(t, m.Replace(ctx, "skills", id, testSkill{Name: "Go", Level: 95}))
	snap, err = m.Get(ctx, "skills", id)
	require.NoError(t, err)
	require.NoError(t, snap.DataTo(&got))
	assert.Equal(t, 95, got.Level)

	require.NoError(t, m.Delete(ctx, "skills", id))
	_, err = m.Get(ctx, "skills", id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_MissingDocuments(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_, err := m.Create(ctx, "skills", testSkill{Name: "Go"})
	require.NoError(t, err)

	assert.ErrorIs(t, m.Delete(ctx, "skills", "nope"), ErrNotFound)
	assert.ErrorIs(t, m.Replace(ctx, "skills", "nope", testSkill{}), ErrNotFound)
	assert.Equal(t, 1, m.Len("skills"))
}

func TestMemory_ListOrdering(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	// "10:00:01Z" sorts after "10:00:01.5Z" as plain text
	inputs := []testContact{
		{Name: "first", SubmittedAt: base.Add(time.Second)},
		{Name: "third", SubmittedAt: base.Add(2 * time.Second)},
		{Name: "second", SubmittedAt: base.Add(1500 * time.Millisecond)},
	}
	for _, c := range inputs {
		_, err := m.Create(ctx, "contacts", c)
		require.NoError(t, err)
	}

	snaps, err := m.List(ctx, "contacts", Query{OrderBy: "submittedAt", Dir: Desc})
	require.NoError(t, err)

	var names []string
	for _, s := range snaps {
		var c testContact
		require.NoError(t, s.DataTo(&c))
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"third", "second", "first"}, names)

	snaps, err = m.List(ctx, "contacts", Query{})
	require.NoError(t, err)
	var c testContact
	require.NoError(t, snaps[0].DataTo(&c))
	assert.Equal(t, "first", c.Name, "insertion order without OrderBy")
}

func TestMemory_ListWhereAndLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, name := range []string{"b", "a", "c", "a"} {
		_, err := m.Create(ctx, "skills", testSkill{Name: name, Level: 10})
		require.NoError(t, err)
	}

	snaps, err := m.List(ctx, "skills", Query{Where: []Filter{{Field: "name", Value: "a"}}})
	require.NoError(t, err)
	assert.Len(t, snaps, 2)

	snaps, err = m.List(ctx, "skills", Query{OrderBy: "name", Limit: 2})
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	var s testSkill
	require.NoError(t, snaps[1].DataTo(&s))
	assert.Equal(t, "a", s.Name)
}

func TestCompareValues(t *testing.T) {
	assert.Negative(t, compareValues(nil, "a"))
	assert.Negative(t, compareValues(2.0, 10.0))
	assert.Positive(t, compareValues("b", "a"))
	assert.Negative(t, compareValues("2025-03-01T10:00:01Z", "2025-03-01T10:00:01.5Z"))
	assert.Zero(t, compareValues(true, true))
}
