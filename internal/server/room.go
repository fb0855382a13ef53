package server

import (
	"github.com/samber/lo"

	"github.com/BioHazard786/coderoom/internal/protocol"
)

// Room is one collaboration session scoping messages to its members.
// Members are kept in join order; that order is what every joined
// broadcast carries as the authoritative roster.
type Room struct {
	ID      string
	Members []*Client
}

// Roster returns the room membership as wire peers, in join order.
func (r *Room) Roster() []protocol.Peer {
	return lo.Map(r.Members, func(c *Client, _ int) protocol.Peer {
		return protocol.Peer{SocketID: c.SocketID, Username: c.Username}
	})
}

// Remove drops the client from the membership, reporting whether it was
// present. Removing an absent client is a no-op.
func (r *Room) Remove(c *Client) bool {
	before := len(r.Members)
	r.Members = lo.Without(r.Members, c)
	return len(r.Members) != before
}

// FindBySocketID returns the member with the given id, or nil.
func (r *Room) FindBySocketID(id string) *Client {
	member, _ := lo.Find(r.Members, func(c *Client) bool {
		return c.SocketID == id
	})
	return member
}

// Empty reports whether the room has no members left.
func (r *Room) Empty() bool {
	return len(r.Members) == 0
}
