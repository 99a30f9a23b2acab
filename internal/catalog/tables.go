package catalog

import (
	"fmt"

	"github.com/mesh-intelligence/entitykit/internal/sqlite"
	"github.com/mesh-intelligence/entitykit/pkg/lifecycle"
	"github.com/mesh-intelligence/entitykit/pkg/types"
)

// Tables returns fresh SQLite table definitions for every catalog entity,
// in TableNames order. Each backend needs its own set.
func Tables() []sqlite.TableDef {
	return []sqlite.TableDef{
		sqlite.NewTable(sqlite.Mapping[*Customer]{
			Name:    TableCustomers,
			DDL:     createCustomers,
			Columns: []string{"name", "email"},
			New:     func() *Customer { return &Customer{} },
			Values:  func(c *Customer) []any { return []any{c.Name, c.Email} },
			Fields:  func(c *Customer) []any { return []any{&c.Name, &c.Email} },
			Hook: func(s *lifecycle.Stamper) lifecycle.Hook[*Customer] {
				return lifecycle.Chain[*Customer](validateCustomer, lifecycle.IdentifierAndTimestampHook[*Customer](s))
			},
		}),
		sqlite.NewTable(sqlite.Mapping[*Order]{
			Name:    TableOrders,
			DDL:     createOrders,
			Columns: []string{"customer_id", "total_cents", "state"},
			New:     func() *Order { return &Order{} },
			Values:  func(o *Order) []any { return []any{o.CustomerID, o.TotalCents, o.State} },
			Fields:  func(o *Order) []any { return []any{&o.CustomerID, &o.TotalCents, &o.State} },
			Hook: func(s *lifecycle.Stamper) lifecycle.Hook[*Order] {
				return lifecycle.Chain[*Order](validateOrder, lifecycle.IdentifierAndTimestampHook[*Order](s))
			},
		}),
		sqlite.NewTable(sqlite.Mapping[*Post]{
			Name:    TablePosts,
			DDL:     createPosts,
			Columns: []string{"title", "body"},
			New:     func() *Post { return &Post{} },
			Values:  func(p *Post) []any { return []any{p.Title, p.Body} },
			Fields:  func(p *Post) []any { return []any{&p.Title, &p.Body} },
			Hook: func(s *lifecycle.Stamper) lifecycle.Hook[*Post] {
				return lifecycle.IdentifierAndTimestampHook[*Post](s)
			},
		}),
		sqlite.NewTable(sqlite.Mapping[*Tag]{
			Name:    TableTags,
			DDL:     createTags,
			Columns: []string{"label"},
			New:     func() *Tag { return &Tag{} },
			Values:  func(t *Tag) []any { return []any{t.Label} },
			Fields:  func(t *Tag) []any { return []any{&t.Label} },
			Hook: func(s *lifecycle.Stamper) lifecycle.Hook[*Tag] {
				return lifecycle.IdentifierHook[*Tag](s)
			},
		}),
		sqlite.NewTable(sqlite.Mapping[*PostTag]{
			Name:    TablePostTags,
			DDL:     createPostTags,
			Columns: []string{"post_id", "tag_id"},
			New:     func() *PostTag { return &PostTag{} },
			Values:  func(pt *PostTag) []any { return []any{pt.PostID, pt.TagID} },
			Fields:  func(pt *PostTag) []any { return []any{&pt.PostID, &pt.TagID} },
			Hook: func(s *lifecycle.Stamper) lifecycle.Hook[*PostTag] {
				return lifecycle.IdentifierAndTimestampHook[*PostTag](s)
			},
		}),
	}
}

func validateCustomer(c *Customer, _ bool) (*Customer, error) {
	if c.Name == "" {
		return c, fmt.Errorf("%w: customer name is required", types.ErrInvalidData)
	}
	return c, nil
}

// validateOrder defaults a new order to pending and rejects unknown states.
func validateOrder(o *Order, insert bool) (*Order, error) {
	if o.CustomerID == "" {
		return o, fmt.Errorf("%w: order customer_id is required", types.ErrInvalidData)
	}
	if insert && o.State == "" {
		o.State = OrderStatePending
	}
	if !validOrderStates[o.State] {
		return o, fmt.Errorf("%w: order state %q", types.ErrInvalidData, o.State)
	}
	if o.TotalCents < 0 {
		return o, fmt.Errorf("%w: order total must not be negative", types.ErrInvalidData)
	}
	return o, nil
}
