package catalog

import (
	"fmt"

	"github.com/mesh-intelligence/entitykit/pkg/relation"
	"github.com/mesh-intelligence/entitykit/pkg/types"
)

// Relation names declared on catalog entities.
const (
	RelCustomer = "customer"
	RelOrders   = "orders"
	RelPost     = "post"
	RelTag      = "tag"
	RelPostTags = "post_tags"
)

type declaration struct {
	entity string
	name   string
	def    types.RelationDef
}

var declarations = []declaration{
	{TableOrders, RelCustomer, types.RelationDef{
		FromTable: TableOrders, ToTable: TableCustomers,
		FromColumns: []string{"customer_id"}, ToColumns: []string{"id"},
		Type: types.BelongsTo, IsOwner: true,
		OnDelete: types.ActionRestrict, FKName: "fk_orders_customer",
	}},
	{TableCustomers, RelOrders, types.RelationDef{
		FromTable: TableCustomers, ToTable: TableOrders,
		FromColumns: []string{"id"}, ToColumns: []string{"customer_id"},
		Type: types.HasMany,
	}},
	{TablePostTags, RelPost, types.RelationDef{
		FromTable: TablePostTags, ToTable: TablePosts,
		FromColumns: []string{"post_id"}, ToColumns: []string{"id"},
		Type: types.BelongsTo, IsOwner: true,
		OnDelete: types.ActionCascade, FKName: "fk_post_tags_post",
	}},
	{TablePostTags, RelTag, types.RelationDef{
		FromTable: TablePostTags, ToTable: TableTags,
		FromColumns: []string{"tag_id"}, ToColumns: []string{"id"},
		Type: types.BelongsTo, IsOwner: true,
		OnDelete: types.ActionCascade, FKName: "fk_post_tags_tag",
	}},
	{TablePosts, RelPostTags, types.RelationDef{
		FromTable: TablePosts, ToTable: TablePostTags,
		FromColumns: []string{"id"}, ToColumns: []string{"post_id"},
		Type: types.HasMany,
	}},
	{TableTags, RelPostTags, types.RelationDef{
		FromTable: TableTags, ToTable: TablePostTags,
		FromColumns: []string{"id"}, ToColumns: []string{"tag_id"},
		Type: types.HasMany,
	}},
}

// Declare records every catalog entity and its direct relations on r.
func Declare(r *relation.Registry) error {
	for _, name := range TableNames {
		if err := r.DeclareEntity(name); err != nil {
			return err
		}
	}
	for _, d := range declarations {
		if err := r.Declare(d.entity, d.name, d.def); err != nil {
			return err
		}
	}
	return nil
}

// Specs lists the descriptors the catalog composes at start-up.
func Specs() []relation.Spec {
	return []relation.Spec{
		relation.Direct(TableOrders, TableCustomers),
		relation.Direct(TableCustomers, TableOrders),
		relation.Direct(TablePosts, TablePostTags),
		relation.Direct(TableTags, TablePostTags),
		relation.Direct(TablePostTags, TablePosts),
		relation.Direct(TablePostTags, TableTags),
		relation.Via(RelPost, TablePostTags, TableTags, RelTag),
		relation.Via(RelTag, TablePostTags, TablePosts, RelPost),
	}
}

// NewRegistry declares the catalog, registers Specs, and freezes the
// registry. Any error is a configuration error.
func NewRegistry(opts ...relation.Option) (*relation.Registry, error) {
	r := relation.NewRegistry(opts...)
	if err := Declare(r); err != nil {
		return nil, fmt.Errorf("declaring catalog relations: %w", err)
	}
	if err := r.Register(Specs()...); err != nil {
		return nil, err
	}
	r.Freeze()
	return r, nil
}
