// Package leaderboard ranks users by the average mark they received on completed submissions.
//
// The ranking is recomputed from every completed submission on each call; nothing is cached.
package leaderboard

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/submission"
	"github.com/studysphere/backend/core/user"
)

// DefaultLimit is the number of entries returned when no positive limit is given.
const DefaultLimit = 20

type (
	// Entry is one ranked user. Name and Photo are null when the user is not registered.
	Entry struct {
		Email       string      `json:"email"`
		Name        null.String `json:"name"`
		Photo       null.String `json:"photo"`
		AverageMark float64     `json:"averageMark"`
	}

	SubmissionSource interface {
		QueryCompleted(ctx context.Context) ([]submission.Submission, error)
	}

	UserSource interface {
		GetByEmail(ctx context.Context, email string) (user.User, error)
	}

	Aggregator struct {
		submissions  SubmissionSource
		users        UserSource
		defaultLimit int
	}
)

func NewAggregator(submissions SubmissionSource, users UserSource, defaultLimit int) *Aggregator {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	return &Aggregator{submissions: submissions, users: users, defaultLimit: defaultLimit}
}

type group struct {
	email string
	sum   float64
	count int
}

func (g group) average() float64 {
	return g.sum / float64(g.count)
}

// Compute returns at most limit entries ordered by average mark, highest first.
// Ties are ordered by email. A limit <= 0 means the Aggregator's default limit.
func (agg *Aggregator) Compute(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = agg.defaultLimit
	}

	subs, err := agg.submissions.QueryCompleted(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying completed submissions")
	}

	groups, err := groupByUser(subs)
	if err != nil {
		return nil, err
	}
	sort.Slice(groups, func(i, j int) bool {
		ai, aj := groups[i].average(), groups[j].average()
		if ai != aj {
			return ai > aj
		}
		return groups[i].email < groups[j].email
	})
	if len(groups) > limit {
		groups = groups[:limit]
	}

	entries := make([]Entry, 0, len(groups))
	for _, g := range groups {
		entry := Entry{Email: g.email, AverageMark: Round(g.average())}
		usr, err := agg.users.GetByEmail(ctx, g.email)
		switch {
		case err == nil:
			entry.Name = null.StringFrom(usr.Name)
			entry.Photo = null.StringFrom(usr.Photo)
		case errors.Is(err, user.ErrNotFound):
		default:
			return nil, errors.Wrapf(err, "finding user %q", g.email)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// groupByUser sums the received marks of completed submissions per submitter.
func groupByUser(subs []submission.Submission) ([]group, error) {
	idx := make(map[string]int)
	groups := make([]group, 0)
	for _, s := range subs {
		if !s.IsCompleted() {
			continue
		}
		if !s.ReceivedMark.Valid || math.IsNaN(s.ReceivedMark.Float64) || math.IsInf(s.ReceivedMark.Float64, 0) {
			msg := fmt.Sprintf("completed submission %s has no numeric received mark", s.ID)
			return nil, core.NewInconsistentError(errors.New(msg), "computing leaderboard")
		}
		i, ok := idx[s.UserEmail]
		if !ok {
			i = len(groups)
			idx[s.UserEmail] = i
			groups = append(groups, group{email: s.UserEmail})
		}
		groups[i].sum += s.ReceivedMark.Float64
		groups[i].count++
	}
	return groups, nil
}

// Round rounds x to 2 decimal places, halves away from zero: 2.345 -> 2.35.
func Round(x float64) float64 {
	return math.Round(x*100) / 100
}
