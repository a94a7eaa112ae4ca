package database

import "github.com/uptrace/bun"

// WithProfile adds every relation a public profile shows to a users query.
func WithProfile(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		Relation("Provider").
		Relation("Provider.Specialty").
		Relation("Provider.Addresses", OrderByID("a")).
		Relation("Provider.ProceduralWaitTimes", OrderByID("pwt")).
		Relation("Provider.Languages", OrderByID("lang")).
		Relation("Provider.Designations", OrderByID("des"))
}

// OrderByID orders a relation query by the id column of alias.
func OrderByID(alias string) func(*bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?.id ASC", bun.Ident(alias))
	}
}
