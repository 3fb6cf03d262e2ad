package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetgear/internal/api"
)

func TestRegistryAddGet(t *testing.T) {
	r := NewRegistry(0)
	j, _ := newTestJob(t)

	r.Add(j.Ticket())
	r.Add(j.Ticket())

	got, err := r.Get(j.ID())
	require.NoError(t, err)
	assert.Equal(t, j.ID(), got.ID())
	assert.Len(t, r.List(), 1)

	_, err = r.Get("missing")
	assert.True(t, api.IsNotFound(err))
}

func TestRegistryEvictsOldest(t *testing.T) {
	r := NewRegistry(2)

	var ids []string
	for i := 0; i < 3; i++ {
		j, _ := newTestJob(t)
		ids = append(ids, j.ID())
		r.Add(j.Ticket())
	}

	_, err := r.Get(ids[0])
	assert.Error(t, err)

	infos := r.List()
	require.Len(t, infos, 2)
	assert.Equal(t, ids[1], infos[0].ID)
	assert.Equal(t, ids[2], infos[1].ID)
}
