package sqlh

import (
	"errors"
	"math/rand"
	"sort"
)

type TeamUser struct {
	TeamId   int
	TeamName string
	UserId   *int
	Username *string
}

type Team struct {
	Id   int
	Name string
}

type User struct {
	Id       int
	Username string
}

type TeamWithUsers struct {
	Team
	Users []User
}

var errNoUser = errors.New(`column not found: user_id`)

func (self TeamUser) Team() Team { return Team{Id: self.TeamId, Name: self.TeamName} }

func (self TeamUser) TryUser() (User, error) {
	if self.UserId == nil {
		return User{}, errNoUser
	}
	var name string
	if self.Username != nil {
		name = *self.Username
	}
	return User{Id: *self.UserId, Username: name}, nil
}

func (self TeamUser) User() Outcome[User] { return OutcomeOf(self.TryUser()) }

func (self Team) WithUsers(users []User) TeamWithUsers {
	return TeamWithUsers{Team: self, Users: users}
}

func teamUser(team int, user *int) TeamUser {
	out := TeamUser{TeamId: team, TeamName: `team ` + string(rune('A'+team-1)), UserId: user}
	if user != nil {
		out.Username = strPtr(`user`)
	}
	return out
}

func teamUserRows() []TeamUser {
	return []TeamUser{
		teamUser(1, intPtr(10)),
		teamUser(1, intPtr(11)),
		teamUser(2, nil),
		teamUser(3, intPtr(20)),
	}
}

func teamKey(row TeamUser) int { return row.TeamId }

func userId(row TeamUser) Outcome[int] { return OutcomeFromPtr(row.UserId) }

func TestOutcome(t *T) {
	t.Run(`present`, func(t *T) {
		val, ok := Present(10).Get()
		eq(t, 10, val)
		eq(t, true, ok)
		eq(t, true, Present(``).IsPresent())
	})

	t.Run(`missing`, func(t *T) {
		val, ok := Missing[int]().Get()
		eq(t, 0, val)
		eq(t, false, ok)
	})

	t.Run(`of`, func(t *T) {
		eq(t, Present(10), OutcomeOf(10, nil))
		eq(t, Missing[int](), OutcomeOf(10, errNoUser))
	})

	t.Run(`from_ptr`, func(t *T) {
		eq(t, Present(10), OutcomeFromPtr(intPtr(10)))
		eq(t, Missing[int](), OutcomeFromPtr[int](nil))
	})
}

func TestExtract(t *T) {
	t.Run(`empty`, func(t *T) {
		out := Extract[TeamUser](nil, teamKey, userId)
		eq(t, 0, out.Len())
		eq(t, Groups[int, int]{}, out)
	})

	t.Run(`teams_and_users`, func(t *T) {
		out := Extract(teamUserRows(), teamKey, userId).Map()

		eq(t, 3, len(out))
		eq(t, []int{10, 11}, out[1])
		eq(t, []int{}, out[2])
		eq(t, []int{20}, out[3])
	})

	t.Run(`all_missing`, func(t *T) {
		rows := []TeamUser{teamUser(1, nil), teamUser(2, nil), teamUser(1, nil)}
		eq(t,
			Groups[int, int]{{One: 1, Many: []int{}}, {One: 2, Many: []int{}}},
			Extract(rows, teamKey, userId),
		)
	})

	t.Run(`scattered_keys`, func(t *T) {
		rows := []TeamUser{
			teamUser(1, intPtr(10)),
			teamUser(2, intPtr(20)),
			teamUser(1, nil),
			teamUser(2, intPtr(21)),
			teamUser(1, intPtr(11)),
		}
		eq(t,
			Groups[int, int]{
				{One: 1, Many: []int{10, 11}},
				{One: 2, Many: []int{20, 21}},
			},
			Extract(rows, teamKey, userId),
		)
	})

	t.Run(`combine_into_entities`, func(t *T) {
		teams := Combine(Extract(teamUserRows(), TeamUser.Team, TeamUser.User), Team.WithUsers)
		eq(t, 3, len(teams))

		byId := map[int]TeamWithUsers{}
		for _, val := range teams {
			byId[val.Id] = val
		}

		eq(t, []User{{10, `user`}, {11, `user`}}, byId[1].Users)
		eq(t, `team A`, byId[1].Name)
		eq(t, []User{}, byId[2].Users)
		eq(t, []User{{20, `user`}}, byId[3].Users)
	})

	t.Run(`extractors_called_once_per_row`, func(t *T) {
		var ones, manys int
		rows := teamUserRows()

		Extract(rows,
			func(row TeamUser) int { ones++; return row.TeamId },
			func(row TeamUser) Outcome[int] { manys++; return userId(row) },
		)

		eq(t, len(rows), ones)
		eq(t, len(rows), manys)
	})

	t.Run(`rows_not_mutated`, func(t *T) {
		rows := teamUserRows()
		Extract(rows, teamKey, userId)
		eq(t, teamUserRows(), rows)
	})

	t.Run(`extractor_panic_propagates`, func(t *T) {
		panics(t, errNoUser, func() {
			Extract(teamUserRows(), teamKey, func(TeamUser) Outcome[int] { panic(errNoUser) })
		})
	})
}

func TestExtract_properties(t *T) {
	rnd := rand.New(rand.NewSource(1))

	for iter := 0; iter < 50; iter++ {
		rows := randomRows(rnd, 40, 6)

		out := Extract(rows, teamKey, userId)

		distinct := map[int]struct{}{}
		present := 0
		for _, row := range rows {
			distinct[row.TeamId] = struct{}{}
			if row.UserId != nil {
				present++
			}
		}

		eq(t, len(distinct), out.Len())
		eq(t, len(distinct), len(out.Map()))

		total := 0
		for _, group := range out {
			total += len(group.Many)
		}
		eq(t, present, total)

		shuffled := append([]TeamUser(nil), rows...)
		rnd.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		eq(t, sortedGroups(out.Map()), sortedGroups(Extract(shuffled, teamKey, userId).Map()))
	}
}

func TestExtractFromOrdered(t *T) {
	t.Run(`empty`, func(t *T) {
		eq(t, Groups[int, int]{}, ExtractFromOrdered([]TeamUser{}, teamKey, userId))
	})

	t.Run(`contiguous`, func(t *T) {
		rows := []TeamUser{
			teamUser(1, intPtr(10)),
			teamUser(1, intPtr(11)),
			teamUser(2, nil),
		}
		eq(t,
			Groups[int, int]{
				{One: 1, Many: []int{10, 11}},
				{One: 2, Many: []int{}},
			},
			ExtractFromOrdered(rows, teamKey, userId),
		)
	})

	t.Run(`single_missing_row`, func(t *T) {
		eq(t,
			Groups[int, int]{{One: 7, Many: []int{}}},
			ExtractFromOrdered([]TeamUser{teamUser(7, nil)}, teamKey, userId),
		)
	})

	t.Run(`missing_within_run_keeps_children`, func(t *T) {
		rows := []TeamUser{
			teamUser(1, intPtr(10)),
			teamUser(1, nil),
			teamUser(1, intPtr(11)),
			teamUser(2, nil),
			teamUser(2, intPtr(20)),
		}
		eq(t,
			Groups[int, int]{
				{One: 1, Many: []int{10, 11}},
				{One: 2, Many: []int{20}},
			},
			ExtractFromOrdered(rows, teamKey, userId),
		)
	})

	t.Run(`preserves_run_order`, func(t *T) {
		rows := []TeamUser{
			teamUser(3, intPtr(30)),
			teamUser(1, intPtr(10)),
			teamUser(2, intPtr(20)),
			teamUser(2, intPtr(21)),
		}
		eq(t, []int{3, 1, 2}, ExtractFromOrdered(rows, teamKey, userId).Keys())
	})

	t.Run(`non_contiguous_duplicates_runs`, func(t *T) {
		rows := []TeamUser{
			teamUser(1, intPtr(10)),
			teamUser(2, intPtr(20)),
			teamUser(1, intPtr(11)),
		}
		out := ExtractFromOrdered(rows, teamKey, userId)

		eq(t, []int{1, 2, 1}, out.Keys())
		eq(t, []int{10, 11}, out.Map()[1])
	})

	t.Run(`extractors_called_once_per_row`, func(t *T) {
		var ones, manys int
		rows := teamUserRows()

		ExtractFromOrdered(rows,
			func(row TeamUser) int { ones++; return row.TeamId },
			func(row TeamUser) Outcome[int] { manys++; return userId(row) },
		)

		eq(t, len(rows), ones)
		eq(t, len(rows), manys)
	})

	t.Run(`agrees_with_extract_on_sorted_input`, func(t *T) {
		rnd := rand.New(rand.NewSource(2))
		for iter := 0; iter < 50; iter++ {
			rows := randomRows(rnd, 30, 5)
			sort.SliceStable(rows, func(i, j int) bool { return rows[i].TeamId < rows[j].TeamId })

			ordered := ExtractFromOrdered(rows, teamKey, userId)
			unordered := Extract(rows, teamKey, userId)
			eq(t, unordered, ordered)
		}
	})
}

func TestCombine(t *T) {
	groups := Groups[int, int]{
		{One: 2, Many: []int{20, 21}},
		{One: 1, Many: []int{}},
	}

	eq(t,
		[]int{2, 1},
		Combine(groups, func(key int, _ []int) int { return key }),
	)
	eq(t,
		[]int{41, 0},
		Combine(groups, func(_ int, vals []int) (sum int) {
			for _, val := range vals {
				sum += val
			}
			return
		}),
	)
	eq(t, []string{}, Combine(Groups[int, int]{}, func(int, []int) string { return `` }))
}

func TestMergeOneToManies(t *T) {
	users := Groups[int, int]{
		{One: 1, Many: []int{10, 11}},
		{One: 2, Many: []int{}},
		{One: 3, Many: []int{30}},
	}
	tags := Groups[int, string]{
		{One: 3, Many: []string{`c`}},
		{One: 1, Many: []string{`a`, `b`}},
		{One: 4, Many: []string{`orphan`}},
	}

	t.Run(`left_merge`, func(t *T) {
		eq(t,
			[]Triple[int, int, string]{
				{One: 1, Left: []int{10, 11}, Right: []string{`a`, `b`}},
				{One: 2, Left: []int{}, Right: []string{}},
				{One: 3, Left: []int{30}, Right: []string{`c`}},
			},
			MergeOneToManies(users, tags),
		)
	})

	t.Run(`empty_right`, func(t *T) {
		out := MergeOneToManies(users, Groups[int, string]{})
		eq(t, 3, len(out))
		for _, val := range out {
			eq(t, []string{}, val.Right)
		}
	})

	t.Run(`empty_left`, func(t *T) {
		eq(t, []Triple[int, int, string]{}, MergeOneToManies(Groups[int, int]{}, tags))
	})

	t.Run(`repeated_left_key_consumes_once`, func(t *T) {
		left := Groups[int, int]{{One: 1, Many: []int{10}}, {One: 1, Many: []int{11}}}
		eq(t,
			[]Triple[int, int, string]{
				{One: 1, Left: []int{10}, Right: []string{`a`, `b`}},
				{One: 1, Left: []int{11}, Right: []string{}},
			},
			MergeOneToManies(left, tags),
		)
	})

	t.Run(`from_extract`, func(t *T) {
		left := Extract(teamUserRows(), teamKey, userId)
		right := Extract(
			[]TeamUser{teamUser(2, intPtr(99)), teamUser(5, intPtr(50))},
			teamKey,
			userId,
		)

		out := MergeOneToManies(left, right)
		eq(t, []int{1, 2, 3}, left.Keys())
		eq(t, []int{99}, out[1].Right)
		eq(t, []int{}, out[0].Right)
	})
}

func randomRows(rnd *rand.Rand, count, keys int) []TeamUser {
	out := make([]TeamUser, 0, count)
	for i := 0; i < count; i++ {
		var user *int
		if rnd.Intn(3) > 0 {
			user = intPtr(rnd.Intn(1000))
		}
		out = append(out, teamUser(1+rnd.Intn(keys), user))
	}
	return out
}

// Children sorted within each group, for comparison regardless of row order.
func sortedGroups(val map[int][]int) map[int][]int {
	out := make(map[int][]int, len(val))
	for key, many := range val {
		many = append([]int{}, many...)
		sort.Ints(many)
		out[key] = many
	}
	return out
}
