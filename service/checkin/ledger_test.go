package checkin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackSubmitCheckin(t *testing.T) {
	data, err := PackSubmitCheckin("QmHash")
	require.NoError(t, err)
	require.Greater(t, len(data), 4)

	method := parsedLedgerABI.Methods["submitCheckin"]
	assert.Equal(t, method.ID, data[:4])

	values, err := method.Inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "QmHash", values[0])
}

func TestLedgerABIHasAllViews(t *testing.T) {
	for _, name := range []string{
		"isSubscribed", "getSubscriptionExpiry", "isInCooldown", "lastCheckin",
		"getCooldownRemaining", "getDailyCheckinCount", "getRemainingCheckinsToday",
		"getCheckinCount", "getCheckinsUntilReward",
	} {
		_, ok := parsedLedgerABI.Methods[name]
		assert.True(t, ok, "missing %s", name)
	}
}
