package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	assert.True(t, m.Enabled("a", 1))
	assert.True(t, m.Enabled("c", 1))
	assert.True(t, m.Enabled("e", 1))
	assert.False(t, m.Enabled("b", 1))
	assert.False(t, m.Enabled("d", 1))
	assert.False(t, m.Enabled("f", 1))
	assert.False(t, m.Enabled("missing", 1))
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,garbage=x%")

	assert.True(t, m.Enabled("always", 1))
	assert.False(t, m.Enabled("never", 1))
	assert.False(t, m.Enabled("garbage", 1))

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42), "rollout evaluation must be deterministic per user")
	}

	assert.False(t, m.Enabled("canary", 0), "percentage rollout requires non-zero userID")
}

func TestCanonicalDefaults(t *testing.T) {
	m := NewManager("")

	assert.True(t, m.Enabled(ShareModal, 1))
	assert.True(t, m.Enabled(PrivacyModal, 1))
	assert.False(t, m.Enabled(InlineComments, 1))
	assert.Equal(t, []string{InlineComments, PrivacyModal, ShareModal}, m.Names())
}

func TestConfigOverridesCanonical(t *testing.T) {
	m := NewManager("INLINE_COMMENTS=on, share_modal = off")

	assert.True(t, m.Enabled(InlineComments, 1))
	assert.False(t, m.Enabled(ShareModal, 1))
	assert.Equal(t, "on", Canonical[ShareModal], "canonical set is not mutated")
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off ")

	raw := m.Raw()
	assert.Len(t, raw, 3+len(Canonical))
	assert.Equal(t, "on", raw["x"])
	assert.Equal(t, "20%", raw["y"])
	assert.Equal(t, "off", raw["z"])

	assert.Len(t, m.Snapshot(123), 3+len(Canonical))
}

func TestNilManager(t *testing.T) {
	var m *Manager

	assert.False(t, m.Enabled(ShareModal, 1))
	assert.Empty(t, m.Raw())
	assert.Empty(t, m.Snapshot(1))
}
