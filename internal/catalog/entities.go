package catalog

import (
	"fmt"

	"github.com/mesh-intelligence/entitykit/pkg/types"
)

// Table names.
const (
	TableCustomers = "customers"
	TableOrders    = "orders"
	TablePosts     = "posts"
	TableTags      = "tags"
	TablePostTags  = "post_tags"
)

// TableNames lists every catalog table in creation order.
var TableNames = []string{
	TableCustomers,
	TableOrders,
	TablePosts,
	TableTags,
	TablePostTags,
}

// Order states.
const (
	OrderStatePending   = "pending"
	OrderStatePaid      = "paid"
	OrderStateShipped   = "shipped"
	OrderStateCancelled = "cancelled"
)

var validOrderStates = map[string]bool{
	OrderStatePending:   true,
	OrderStatePaid:      true,
	OrderStateShipped:   true,
	OrderStateCancelled: true,
}

// Customer places orders.
type Customer struct {
	types.Model
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Order belongs to one customer.
type Order struct {
	types.Model
	CustomerID string `json:"customer_id"`
	TotalCents int64  `json:"total_cents"`
	State      string `json:"state"`
}

// Post is tagged through PostTag.
type Post struct {
	types.Model
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Tag carries only an identifier; tags are never audited.
type Tag struct {
	types.Identity
	Label string `json:"label"`
}

// PostTag is the junction between posts and tags.
type PostTag struct {
	types.Model
	PostID string `json:"post_id"`
	TagID  string `json:"tag_id"`
}

// New returns an empty entity for the named table.
func New(table string) (any, error) {
	switch table {
	case TableCustomers:
		return &Customer{}, nil
	case TableOrders:
		return &Order{}, nil
	case TablePosts:
		return &Post{}, nil
	case TableTags:
		return &Tag{}, nil
	case TablePostTags:
		return &PostTag{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", table, types.ErrTableNotFound)
	}
}
