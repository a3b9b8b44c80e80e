package auction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	err error
}

func (v *fakeVerifier) Verify(role Role, auth AuthData) (Identity, error) {
	if v.err != nil {
		return Identity{}, v.err
	}
	return Identity{Role: role, UserID: 2, DisplayName: auth.DisplayName, TeamName: auth.TeamName}, nil
}

func gatewayManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(&fakeLoader{setups: map[int]*Setup{
		5: {ID: 5, Name: "one", DefaultBudget: 100},
	}}, nil, testLogger())
	t.Cleanup(m.Shutdown)
	return m
}

func TestGatewayJoinAttachesClient(t *testing.T) {
	g := NewGateway(&fakeVerifier{}, gatewayManager(t))

	client, room, err := g.Join(context.Background(), 5, RoleBidder, AuthData{DisplayName: "alice", TeamName: "FC Alice"})
	require.NoError(t, err)
	require.Equal(t, RoleBidder, client.Role)
	require.Equal(t, 5, room.ID())

	env := nextEvent(t, client)
	require.Equal(t, EventAuctionState, env.Type)
}

func TestGatewayRejectsUnknownRole(t *testing.T) {
	g := NewGateway(&fakeVerifier{}, gatewayManager(t))

	_, _, err := g.Join(context.Background(), 5, Role("referee"), AuthData{})
	require.ErrorIs(t, err, ErrAuthRejected)
}

func TestGatewayRejectsBadCredentials(t *testing.T) {
	g := NewGateway(&fakeVerifier{err: errors.New("bad token")}, gatewayManager(t))

	_, _, err := g.Join(context.Background(), 5, RoleAdmin, AuthData{Token: "nope"})
	require.ErrorIs(t, err, ErrAuthRejected)
}

func TestGatewayPropagatesRoomLoadFailure(t *testing.T) {
	g := NewGateway(&fakeVerifier{}, gatewayManager(t))

	_, _, err := g.Join(context.Background(), 404, RoleViewer, AuthData{})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrAuthRejected)
}
