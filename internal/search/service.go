// Package search resolves users matching a search term across the configured teams.
package search

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/zalando-stups/stups-auth-adapter/internal/metrics"
)

// Directory returns the members of a team.
type Directory interface {
	FetchMembers(ctx context.Context, teamID string) ([]string, error)
}

// Membership is the member list of one team as returned by a single directory lookup.
type Membership struct {
	Team    string
	Members []string
}

// Matching returns the members containing term, in membership order.
func (m Membership) Matching(term string) []string {
	matches := make([]string, 0, len(m.Members))

	for _, member := range m.Members {
		if strings.Contains(member, term) {
			matches = append(matches, member)
		}
	}

	return matches
}

// Option configures a Service.
type Option func(*Service)

// WithConcurrency sets how many teams are queried at once. 1 queries them one after another.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// Service searches the members of a fixed list of teams.
type Service struct {
	dir         Directory
	teams       []string
	concurrency int
}

// NewService creates a search over teams. The list is copied.
func NewService(dir Directory, teams []string, opts ...Option) *Service {
	s := &Service{
		dir:         dir,
		teams:       append([]string(nil), teams...),
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Teams returns the configured team ids.
func (s *Service) Teams() []string {
	return append([]string(nil), s.teams...)
}

// Search returns every member whose username contains term, case-sensitive.
// Results follow team order and keep duplicates across teams. Teams that cannot be
// queried are logged and skipped, so the result is never an error, only possibly empty.
func (s *Service) Search(ctx context.Context, term string) []string {
	memberships := s.collect(ctx)

	result := make([]string, 0)

	for _, m := range memberships {
		if m == nil {
			continue
		}

		result = append(result, m.Matching(term)...)
	}

	return result
}

func (s *Service) collect(ctx context.Context) []*Membership {
	memberships := make([]*Membership, len(s.teams))

	// the group context is not used, one failing team must not cancel the others
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, team := range s.teams {
		g.Go(func() error {
			members, err := s.dir.FetchMembers(ctx, team)
			if err != nil {
				log.Warn().Err(err).Str("team", team).Msg("could not get team members, skipping team")
				metrics.SearchTeamFailures.WithLabelValues(team).Inc()

				return nil
			}

			memberships[i] = &Membership{Team: team, Members: members}

			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // workers never return errors

	return memberships
}
