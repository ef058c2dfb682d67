package domain

import "time"

// Client is the read-only borrower snapshot.
type Client struct {
	ID             int64
	OfficeID       int64
	Active         bool
	ActivationDate *time.Time
	// OfficeJoiningDate is set when the client was transferred between
	// offices; no loan event may predate it.
	OfficeJoiningDate *time.Time
}

// ActivatedAfter reports whether the client became active only after the
// given date.
func (c *Client) ActivatedAfter(date time.Time) bool {
	return c.ActivationDate != nil && c.ActivationDate.After(date)
}

// Group is the read-only group snapshot.
type Group struct {
	ID             int64
	OfficeID       int64
	Active         bool
	ActivationDate *time.Time
	MemberIDs      []int64
}

// ActivatedAfter reports whether the group became active only after the
// given date.
func (g *Group) ActivatedAfter(date time.Time) bool {
	return g.ActivationDate != nil && g.ActivationDate.After(date)
}

// HasMember reports whether the client belongs to the group.
func (g *Group) HasMember(clientID int64) bool {
	for _, id := range g.MemberIDs {
		if id == clientID {
			return true
		}
	}
	return false
}

// SavingsAccount is the read-only snapshot of a savings account linked to a
// loan for standing-instruction transfers.
type SavingsAccount struct {
	ID       int64
	ClientID int64
	Active   bool
}
