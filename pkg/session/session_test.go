package session

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tribe-backend/pkg/config"
	"tribe-backend/pkg/models"
	"tribe-backend/pkg/tribe"
)

// nopBackend satisfies backend; none of its methods are reached here.
type nopBackend struct {
	backend
}

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

var tribeAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")

func TestSessionWithoutKey(t *testing.T) {
	cfg := testConfig()
	s, err := newSession(cfg, nopBackend{}, nil)
	require.NoError(t, err)

	assert.False(t, s.Connected())
	assert.Nil(t, s.User())
	assert.Nil(t, s.Transactor())

	_, err = s.Login(context.Background())
	assert.True(t, errors.Is(err, tribe.ErrNotConnected))

	_, err = tribe.Mint(s.Tribe(tribeAddr), s.Transactor(), models.TierBronze, nil, nil)
	assert.True(t, errors.Is(err, tribe.ErrNotConnected))
}

func TestSessionWithKey(t *testing.T) {
	cfg := testConfig()
	cfg.PrivateKey = "0x" + testKey
	s, err := newSession(cfg, nopBackend{}, nil)
	require.NoError(t, err)

	key, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(key.PublicKey)

	require.True(t, s.Connected())
	require.NotNil(t, s.User())
	assert.Equal(t, want, *s.User())
	require.NotNil(t, s.Transactor())
	assert.Equal(t, want, s.Transactor().From())
	assert.Equal(t, tribeAddr, s.Tribe(tribeAddr).Address())
}

func TestSessionBadKey(t *testing.T) {
	cfg := testConfig()
	cfg.PrivateKey = "not-a-key"
	_, err := newSession(cfg, nopBackend{}, nil)
	assert.Error(t, err)
}

func TestSessionFactory(t *testing.T) {
	cfg := testConfig()
	cfg.FactoryAddress = ""
	s, err := newSession(cfg, nopBackend{}, nil)
	require.NoError(t, err)
	_, err = s.Directory()
	assert.True(t, errors.Is(err, ErrNoFactory))

	cfg.FactoryAddress = "0x00000000000000000000000000000000000000fa"
	s, err = newSession(cfg, nopBackend{}, nil)
	require.NoError(t, err)
	f, err := s.Factory()
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(cfg.FactoryAddress), f.Address())
}

func TestResolve(t *testing.T) {
	cfg := testConfig()
	cfg.PrivateKey = testKey
	s, err := newSession(cfg, nopBackend{}, nil)
	require.NoError(t, err)

	self, err := s.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, s.User(), self)

	other, err := s.Resolve("0x00000000000000000000000000000000000000bb")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xbb"), *other)

	_, err = s.Resolve("bb")
	assert.Error(t, err)
}

func testConfig() config.ClientConfig {
	return config.DefaultClientConfig()
}
