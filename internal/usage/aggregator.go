// Package usage computes per-account usage snapshots.
//
// DESIGN: For each account, four independent queries fan out concurrently
// (identity+credit, projects, aihub balance, month-to-date cost), then a
// fifth per-day report runs once the user id is known. Accounts in a batch
// are fully isolated: one bad token produces one Failure result and never
// delays or nulls out its siblings.
package usage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/railwatch/railwatch/internal/catalog"
	"github.com/railwatch/railwatch/internal/railway"
)

// FreeQuota is the fixed monthly free allowance, in currency units.
var FreeQuota = decimal.New(500, -2) // 5.00

// Snapshot is the derived usage picture for one account. Recomputed on
// every request, never cached.
type Snapshot struct {
	// PerProjectCost maps project id to its display cost: the raw per-day
	// sum rounded up to the nearest cent, floored at zero.
	PerProjectCost map[string]decimal.Decimal
	// HasCostData marks projects that had at least one usage row.
	HasCostData map[string]bool
	// TotalUsage is the sum of raw, unrounded per-day values across all
	// projects. Deliberately not the sum of the rounded figures.
	TotalUsage decimal.Decimal
	// FreeQuotaRemaining is FreeQuota minus TotalUsage; negative once the
	// allowance is exceeded, never clamped.
	FreeQuotaRemaining decimal.Decimal
}

// Result is the per-account outcome. Err set means Failure; everything else
// is only meaningful on success.
type Result struct {
	Account   catalog.Account
	Err       error
	User      railway.UserInfo
	Projects  []railway.Project
	Aihub     railway.AihubBalance
	MonthCost decimal.Decimal
	Snapshot  Snapshot
}

// Failed reports whether this account's pipeline failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Aggregator fans usage queries out per account.
type Aggregator struct {
	client *railway.Client
	now    func() time.Time
}

// New creates an aggregator over the given upstream client.
func New(client *railway.Client) *Aggregator {
	return &Aggregator{client: client, now: time.Now}
}

// FetchAll processes all accounts concurrently and returns exactly
// len(accounts) results in input order. Individual fetches cannot be
// aborted once issued; ctx cancellation only short-circuits their waits.
func (a *Aggregator) FetchAll(ctx context.Context, accounts []catalog.Account) []Result {
	results := make([]Result, len(accounts))
	var wg sync.WaitGroup
	for i, acc := range accounts {
		wg.Add(1)
		go func(i int, acc catalog.Account) {
			defer wg.Done()
			results[i] = a.FetchAccount(ctx, acc)
		}(i, acc)
	}
	wg.Wait()
	return results
}

// FetchAccount runs the full pipeline for one account. Any panic in the
// pipeline becomes a Failure result instead of taking down the batch.
func (a *Aggregator) FetchAccount(ctx context.Context, acc catalog.Account) (res Result) {
	res.Account = acc
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("account %s: %v", acc.Name, r)
		}
	}()

	var (
		user      railway.UserInfo
		userErr   error
		projects  []railway.Project
		aihub     railway.AihubBalance
		monthCost decimal.Decimal
	)

	// Fixed fan-out of exactly four; the join waits for all of them.
	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		user, userErr = a.fetchUser(ctx, acc.Token)
	}()
	go func() {
		defer wg.Done()
		projects = a.fetchProjects(ctx, acc)
	}()
	go func() {
		defer wg.Done()
		aihub = a.fetchAihub(ctx, acc)
	}()
	go func() {
		defer wg.Done()
		monthCost = a.fetchMonthCost(ctx, acc)
	}()
	wg.Wait()

	if userErr != nil {
		res.Err = fmt.Errorf("account %s: %w", acc.Name, userErr)
		return res
	}

	snapshot := emptySnapshot()
	if user.ID != "" {
		rows, err := a.fetchDailyUsage(ctx, acc.Token, user.ID)
		if err != nil {
			// Usage report failure degrades to an all-zero snapshot; the
			// account itself still succeeds.
			log.Warn().Str("account", acc.Name).Err(err).Msg("usage report failed, reporting zero usage")
		} else {
			snapshot = buildSnapshot(rows)
		}
	}

	res.User = user
	res.Projects = projects
	res.Aihub = aihub
	res.MonthCost = monthCost
	res.Snapshot = snapshot
	return res
}

// DisplayCost rounds a raw per-project sum up to the nearest 0.01, floored
// at zero when the raw sum is non-positive. Must match the platform's own
// displayed per-project figures.
func DisplayCost(raw decimal.Decimal) decimal.Decimal {
	if raw.Sign() <= 0 {
		return decimal.Zero
	}
	return raw.RoundCeil(2)
}

func emptySnapshot() Snapshot {
	return Snapshot{
		PerProjectCost:     map[string]decimal.Decimal{},
		HasCostData:        map[string]bool{},
		TotalUsage:         decimal.Zero,
		FreeQuotaRemaining: FreeQuota,
	}
}

func buildSnapshot(rows []railway.UsageRow) Snapshot {
	rawPerProject := map[string]decimal.Decimal{}
	total := decimal.Zero
	for _, row := range rows {
		v := decimal.NewFromFloat(row.Value)
		total = total.Add(v)
		if row.ProjectID != "" {
			rawPerProject[row.ProjectID] = rawPerProject[row.ProjectID].Add(v)
		}
	}

	snap := emptySnapshot()
	snap.TotalUsage = total
	snap.FreeQuotaRemaining = FreeQuota.Sub(total)
	for id, raw := range rawPerProject {
		snap.PerProjectCost[id] = DisplayCost(raw)
		snap.HasCostData[id] = true
	}
	return snap
}

func (a *Aggregator) fetchUser(ctx context.Context, token string) (railway.UserInfo, error) {
	res, err := a.client.Execute(ctx, token, railway.QueryMe, nil)
	if err != nil {
		return railway.UserInfo{}, err
	}
	if msg := railway.ErrorMessage(res); msg != "" {
		return railway.UserInfo{}, fmt.Errorf("identity query: %s", msg)
	}
	return railway.ParseUser(res), nil
}

func (a *Aggregator) fetchProjects(ctx context.Context, acc catalog.Account) []railway.Project {
	res, err := a.client.Execute(ctx, acc.Token, railway.QueryProjects, nil)
	if err != nil {
		log.Warn().Str("account", acc.Name).Err(err).Msg("projects query failed")
		return []railway.Project{}
	}
	return railway.ParseProjects(res)
}

func (a *Aggregator) fetchAihub(ctx context.Context, acc catalog.Account) railway.AihubBalance {
	res, err := a.client.Execute(ctx, acc.Token, railway.QueryAihub, nil)
	if err != nil {
		log.Warn().Str("account", acc.Name).Err(err).Msg("aihub query failed")
		return railway.AihubBalance{}
	}
	return railway.ParseAihub(res)
}

func (a *Aggregator) fetchMonthCost(ctx context.Context, acc catalog.Account) decimal.Decimal {
	start, end := a.monthRange()
	res, err := a.client.Execute(ctx, acc.Token, railway.QueryMonthCost, map[string]any{
		"startDate": start,
		"endDate":   end,
	})
	if err != nil {
		log.Warn().Str("account", acc.Name).Err(err).Msg("month cost query failed")
		return decimal.Zero
	}
	total := decimal.Zero
	for _, row := range railway.ParseUsageRows(res, "usage") {
		total = total.Add(decimal.NewFromFloat(row.Value))
	}
	return total
}

func (a *Aggregator) fetchDailyUsage(ctx context.Context, token, userID string) ([]railway.UsageRow, error) {
	start, end := a.monthRange()
	res, err := a.client.Execute(ctx, token, railway.QueryDailyUsage, map[string]any{
		"userId":    userID,
		"startDate": start,
		"endDate":   end,
	})
	if err != nil {
		return nil, err
	}
	if msg := railway.ErrorMessage(res); msg != "" {
		return nil, fmt.Errorf("usage query: %s", msg)
	}
	return railway.ParseUsageRows(res, "aggregatedUsage"), nil
}

// monthRange spans the first of the current month through tomorrow. The
// one-day overshoot compensates for the platform's exclusive upper bound so
// today's partial usage is included.
func (a *Aggregator) monthRange() (string, string) {
	now := a.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := now.AddDate(0, 0, 1)
	return start.Format(time.DateOnly), end.Format(time.DateOnly)
}
