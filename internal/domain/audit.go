package domain

import "time"

// Entity kinds and actions recorded in the audit trail.
const (
	EntityBooking  = "booking"
	EntityPackage  = "package"
	EntityBlog     = "blog"
	EntityCustomer = "customer"
	EntityHero     = "hero"

	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
	ActionStatusChange = "status_change"
	ActionPublish      = "publish"
	ActionBroadcast    = "broadcast"
)

type AuditEntry struct {
	ID        string    `json:"id"`
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Summary   string    `json:"summary"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
