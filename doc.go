/*
SQL helpers: incremental building of parametrized SQL for several dialects,
and reshaping of flat joined rows into one-to-many groups.

# Key Features

• You write plain SQL fragments. `Query.Append` renumerates ordinal parameters
such as $1, $2, so every fragment starts counting at 1.

• `Builder` wraps a `Query` with helpers that skip absent values, which makes
optional filters one-liners. `Dialect.Reify` renders the canonical $N
placeholders as `?` for MySQL and `?N` for SQLite.

• `Extract` and `ExtractFromOrdered` group rows of a join (one row per
parent+child pair, child possibly absent) into parents with their children.
`Combine` rebuilds parent entities; `MergeOneToManies` joins two groupings
computed by separate queries.

• `Pagination`, compact/ISO date parsing and `ScanRows` cover the glue between
requests, queries and grouping.

See the `databases` subpackage for connection pools configured from the
environment.

Example

	var bui sqlh.Builder
	bui.Push(`select t.id, t.name, u.id as user_id from teams t`).
		Push(`left join users u on u.team_id = t.id where true`).
		PushValue(`and t.code =`, req.Code).
		Push(`order by t.id`)

	text, args := bui.Build()
	src, err := db.QueryContext(ctx, text, args...)
	// ...
	rows, err := sqlh.ScanRows[TeamUser](src)
	// ...

	teams := sqlh.Combine(
		sqlh.ExtractFromOrdered(rows, TeamUser.Team, TeamUser.User),
		Team.WithUsers,
	)
*/
package sqlh
