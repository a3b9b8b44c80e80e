package auction

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func hubClient(role Role, userID int) *Client {
	return newClient(Identity{Role: role, UserID: userID, DisplayName: "c", TeamName: "t"})
}

func drainOne(t *testing.T, c *Client) envelope {
	t.Helper()
	select {
	case data, ok := <-c.Receive():
		require.True(t, ok)
		var env envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	default:
		t.Fatal("expected a queued event")
	}
	return envelope{}
}

func TestHubBroadcastReachesAll(t *testing.T) {
	h := newHub(testLogger())
	a, b := hubClient(RoleViewer, 0), hubClient(RoleBidder, 2)
	h.add(a)
	h.add(b)

	h.broadcast(StartedEvent{})

	require.Equal(t, EventAuctionStarted, drainOne(t, a).Type)
	require.Equal(t, EventAuctionStarted, drainOne(t, b).Type)
}

func TestHubBroadcastExceptSkipsIssuer(t *testing.T) {
	h := newHub(testLogger())
	issuer, other := hubClient(RoleBidder, 2), hubClient(RoleViewer, 0)
	h.add(issuer)
	h.add(other)

	h.broadcastExcept(issuer, StartedEvent{})

	require.Equal(t, EventAuctionStarted, drainOne(t, other).Type)
	select {
	case <-issuer.Receive():
		t.Fatal("issuer must not receive the event")
	default:
	}
}

func TestHubSendToTargetsSingleConnection(t *testing.T) {
	h := newHub(testLogger())
	target, other := hubClient(RoleBidder, 2), hubClient(RoleBidder, 3)
	h.add(target)
	h.add(other)

	h.sendTo(target, ApprovalEvent{Approved: true})

	require.Equal(t, EventApprovalStatus, drainOne(t, target).Type)
	select {
	case <-other.Receive():
		t.Fatal("other connection must not receive a targeted event")
	default:
	}
}

func TestHubSendToBidderReachesAllTabsOfThatBidder(t *testing.T) {
	h := newHub(testLogger())
	tabOne := hubClient(RoleBidder, 2)
	tabTwo := hubClient(RoleBidder, 2)
	otherBidder := hubClient(RoleBidder, 3)
	sameIDViewer := hubClient(RoleViewer, 2) // роль не совпадает
	for _, c := range []*Client{tabOne, tabTwo, otherBidder, sameIDViewer} {
		h.add(c)
	}

	h.sendToBidder(2, ApprovalEvent{Approved: true})

	require.Equal(t, EventApprovalStatus, drainOne(t, tabOne).Type)
	require.Equal(t, EventApprovalStatus, drainOne(t, tabTwo).Type)
	for _, c := range []*Client{otherBidder, sameIDViewer} {
		select {
		case <-c.Receive():
			t.Fatal("event leaked to a non-matching connection")
		default:
		}
	}
}

// Медленный потребитель отключается на переполнении своей очереди, не
// задерживая доставку остальным.
func TestHubDisconnectsSlowConsumer(t *testing.T) {
	h := newHub(testLogger())
	slow, healthy := hubClient(RoleViewer, 0), hubClient(RoleViewer, 0)
	h.add(slow)
	h.add(healthy)

	// healthy разгружается по ходу, slow - нет.
	for i := 0; i < sendBufferSize; i++ {
		h.broadcast(StartedEvent{})
		<-healthy.Receive()
	}
	require.Len(t, h.clients, 2)

	h.broadcast(StartedEvent{})
	<-healthy.Receive()

	require.Len(t, h.clients, 1)
	require.NotContains(t, h.clients, slow)

	// Канал отключённого закрыт после осушения буфера.
	count := 0
	for range slow.Receive() {
		count++
	}
	require.Equal(t, sendBufferSize, count)
}

func TestHubCloseAll(t *testing.T) {
	h := newHub(testLogger())
	a, b := hubClient(RoleViewer, 0), hubClient(RoleBidder, 2)
	h.add(a)
	h.add(b)

	h.closeAll()

	require.True(t, h.empty())
	_, ok := <-a.Receive()
	require.False(t, ok)
	_, ok = <-b.Receive()
	require.False(t, ok)
}
