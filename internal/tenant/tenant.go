package tenant

import (
	"fmt"
	"time"
)

// Tier is a tenant's subscription tier
type Tier string

// Subscription tiers
const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// Note limits per tier. UnlimitedNotes is the sentinel for no ceiling.
const (
	FreeNoteLimit  = 3
	UnlimitedNotes = -1
)

// ParseTier validates a stored tier value at the storage boundary
// so invalid values cannot enter the domain model.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierFree, TierPro:
		return Tier(s), nil
	}
	return "", fmt.Errorf("invalid subscription tier: %q", s)
}

// Tenant represents an isolated customer account sharing the database
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Tier      Tier      `json:"subscription"`
	NoteLimit int       `json:"noteLimit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Normalize enforces the tier/limit invariant: pro tenants are unlimited,
// free tenants carry the bounded limit. Applied before every write.
func (t *Tenant) Normalize() {
	switch t.Tier {
	case TierPro:
		t.NoteLimit = UnlimitedNotes
	default:
		t.NoteLimit = FreeNoteLimit
	}
}

// Unlimited reports whether the tenant has no note ceiling
func (t *Tenant) Unlimited() bool {
	return t.Tier == TierPro || t.NoteLimit == UnlimitedNotes
}
