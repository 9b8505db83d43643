// Package overdue is the nightly sweep: it marks ACTIVE loans past their
// due date as OVERDUE and prunes expired refresh tokens. The inventory
// ledger itself never assigns OVERDUE.
package overdue

import (
	"context"
	"log/slog"
	"time"

	loanrepo "github.com/AlmamyHaidara/biblioteque/repository/loan"
	tokenrepo "github.com/AlmamyHaidara/biblioteque/repository/token"
)

type Service interface {
	Run(ctx context.Context) error
}

type service struct {
	loans  loanrepo.Repo
	tokens tokenrepo.Repo
	log    *slog.Logger
	now    func() time.Time
}

func New(loans loanrepo.Repo, tokens tokenrepo.Repo, log *slog.Logger) Service {
	return &service{loans: loans, tokens: tokens, log: log, now: time.Now}
}

func (s *service) Run(ctx context.Context) error {
	now := s.now().UTC()

	marked, err := s.loans.MarkOverdue(ctx, now)
	if err != nil {
		s.log.Error("overdue sweep failed", "err", err)
		return err
	}

	pruned, err := s.tokens.DeleteExpired(ctx, now)
	if err != nil {
		s.log.Error("refresh token prune failed", "err", err)
		return err
	}

	s.log.Info("overdue sweep done", "loans_marked", marked, "tokens_pruned", pruned)
	return nil
}
