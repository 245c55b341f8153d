package roster

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_Add(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		add      string
		wantErr  error
		wantName string
	}{
		{name: "simple", add: "Alice", wantName: "Alice"},
		{name: "trims whitespace", add: "  Bob \t", wantName: "Bob"},
		{name: "empty", add: "", wantErr: ErrEmptyName},
		{name: "whitespace only", add: "   ", wantErr: ErrEmptyName},
		{name: "case-insensitive duplicate", existing: []string{"Alice"}, add: "alice", wantErr: ErrDuplicate},
		{name: "duplicate after trimming", existing: []string{"Alice"}, add: " ALICE ", wantErr: ErrDuplicate},
		{name: "unicode case folding", existing: []string{"École"}, add: "éCOLE", wantErr: ErrDuplicate},
		{name: "distinct names", existing: []string{"Alice"}, add: "Alicia", wantName: "Alicia"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewParticipants()
			for _, n := range tt.existing {
				_, err := c.Add(n)
				require.NoError(t, err)
			}
			before := c.Items()

			got, err := c.Add(tt.add)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, c.Items(), "failed add must not change the collection")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			assert.NotEmpty(t, got.ID)
			assert.Empty(t, got.AssignedRole)
			assert.Equal(t, len(tt.existing)+1, c.Len())
		})
	}
}

func TestCollection_DuplicateErrorDetails(t *testing.T) {
	c := NewRoles()
	_, err := c.Add("Lead")
	require.NoError(t, err)

	_, err = c.Add("lead")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ReasonDuplicate, verr.Reason)
	assert.Equal(t, "role", verr.Entity)
	assert.Equal(t, "lead", verr.Name)
	assert.Equal(t, `role "lead" already exists`, err.Error())
}

func TestCollection_PreservesInsertionOrder(t *testing.T) {
	c := NewRoles()
	for _, n := range []string{"Lead", "Dev", "QA"} {
		_, err := c.Add(n)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"Lead", "Dev", "QA"}, RoleNames(c.Items()))
}

func TestCollection_UniqueIDs(t *testing.T) {
	c := NewParticipants()
	a, err := c.Add("A")
	require.NoError(t, err)
	b, err := c.Add("B")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCollection_Remove(t *testing.T) {
	c := NewParticipants()
	alice, _ := c.Add("Alice")
	bob, _ := c.Add("Bob")
	carol, _ := c.Add("Carol")

	assert.True(t, c.Remove(bob.ID))
	assert.Equal(t, []Participant{alice, carol}, c.Items())

	before := c.Items()
	assert.False(t, c.Remove("no-such-id"))
	assert.Equal(t, before, c.Items())

	// A removed name can be added again.
	_, err := c.Add("bob")
	assert.NoError(t, err)
}

func TestCollection_ItemsIsSnapshot(t *testing.T) {
	c := NewParticipants()
	_, _ = c.Add("Alice")

	items := c.Items()
	items[0].Name = "Mallory"

	got := c.Items()
	assert.Equal(t, "Alice", got[0].Name)
}

func TestCollection_Get(t *testing.T) {
	c := NewRoles()
	dev, _ := c.Add("Dev")

	got, ok := c.Get(dev.ID)
	require.True(t, ok)
	assert.Equal(t, dev, got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCollection_ConcurrentAddRejectsDuplicates(t *testing.T) {
	c := NewParticipants()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Add("Alice")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrDuplicate)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, c.Len())
}

func TestFromNames(t *testing.T) {
	ps, err := ParticipantsFromNames([]string{"Alice", " Bob "})
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "Bob", ps[1].Name)

	_, err = RolesFromNames([]string{"Lead", "LEAD"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = RolesFromNames([]string{"Lead", ""})
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestClone(t *testing.T) {
	assert.Nil(t, CloneParticipants(nil))
	assert.Nil(t, CloneRoles(nil))

	orig := []Role{{ID: "1", Name: "Lead"}}
	cp := CloneRoles(orig)
	cp[0].Name = "Changed"
	assert.Equal(t, "Lead", orig[0].Name)
}
