package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostsTried(t *testing.T) {
	hostA := "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	hostB := "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"

	logs := []NodeLog{
		{HostID: hostA, Event: NodeLogCreated},
		{HostID: hostA, Event: NodeLogFailed},
		{HostID: hostA, Event: NodeLogCreated},
		{HostID: hostA, Event: NodeLogFailed},
		{HostID: hostB, Event: NodeLogCreated},
		{HostID: hostB, Event: NodeLogSucceeded},
	}

	tried := HostsTried(logs)
	assert.Equal(t, []HostAttempts{
		{HostID: hostA, Attempts: 2},
		{HostID: hostB, Attempts: 1},
	}, tried)

	assert.Equal(t, 1, DeploysTriedOnLastHost(logs))
	assert.Equal(t, 2, DeploysTriedOnLastHost(logs[:4]))
}

func TestHostsTriedEmpty(t *testing.T) {
	assert.Empty(t, HostsTried(nil))
	assert.Zero(t, DeploysTriedOnLastHost(nil))

	// Non-created events alone count no attempts.
	logs := []NodeLog{{HostID: "x", Event: NodeLogCanceled}}
	assert.Empty(t, HostsTried(logs))
	assert.Zero(t, DeploysTriedOnLastHost(logs))
}
