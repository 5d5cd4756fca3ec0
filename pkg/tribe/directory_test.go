package tribe

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryDedupsAndSplits(t *testing.T) {
	a := common.HexToAddress("0xa")
	b := common.HexToAddress("0xb")
	f := &fakeFactory{
		all:     []common.Address{a, b, a},
		created: map[common.Address][]common.Address{userAddr: {b, b}},
	}
	d := NewDirectory(f)

	view := d.Load(context.Background(), &userAddr)
	all, ok := view.All.Get()
	require.True(t, ok)
	assert.Equal(t, []common.Address{a, b}, all)
	created, ok := view.Created.Get()
	require.True(t, ok)
	assert.Equal(t, []common.Address{b}, created)
	assert.False(t, view.AllEmpty())
}

func TestDirectoryEmptyAndDisconnected(t *testing.T) {
	d := NewDirectory(&fakeFactory{})

	view := d.Load(context.Background(), nil)
	assert.True(t, view.AllEmpty())
	assert.Equal(t, FieldLoading, view.Created.State)
	assert.False(t, view.CreatedEmpty())

	view = d.Load(context.Background(), &userAddr)
	assert.True(t, view.CreatedEmpty())
}

func TestDirectoryReadFailure(t *testing.T) {
	d := NewDirectory(&fakeFactory{err: errors.New("rpc down")})
	view := d.Load(context.Background(), &userAddr)
	assert.Equal(t, FieldFailed, view.All.State)
	assert.Equal(t, FieldFailed, view.Created.State)
	assert.False(t, view.AllEmpty())
}
