package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driving"
	"github.com/custodia-labs/coursemate-cli/internal/logger"
)

// Ensure EvalService implements the interface.
var _ driving.EvalService = (*EvalService)(nil)

// EvalService asks every case of an evaluation set and records the answers.
type EvalService struct {
	chat   driving.ChatService
	opener driven.EvalStoreOpener
}

// NewEvalService creates a new evaluation service.
func NewEvalService(chat driving.ChatService, opener driven.EvalStoreOpener) *EvalService {
	return &EvalService{chat: chat, opener: opener}
}

// Run asks each case in a fresh session, the follow-up in the same session,
// and writes the responses back after every case. Cases that already have
// responses are skipped unless Overwrite is set. A failed case is counted and
// the run continues.
func (s *EvalService) Run(ctx context.Context, req domain.EvalRequest) (*domain.EvalReport, error) {
	// Surface missing services or a bad course before touching the store.
	if _, err := s.chat.NewSession(req.CourseID); err != nil {
		return nil, err
	}

	store, err := s.opener.Open(ctx, req.Source, req.Worksheet)
	if err != nil {
		return nil, fmt.Errorf("open eval source: %w", err)
	}
	defer store.Close()

	cases, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load eval cases: %w", err)
	}

	report := &domain.EvalReport{CourseID: domain.NormaliseCourseID(req.CourseID), Total: len(cases)}
	logger.Section(fmt.Sprintf("Eval %s (%d cases)", report.CourseID, len(cases)))

	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if strings.TrimSpace(c.Question) == "" || (c.Answered() && !req.Overwrite) {
			report.Skipped++
			continue
		}

		answered, err := s.ask(ctx, req.CourseID, c)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			logger.Warn("Case %d failed: %v", c.Row, err)
			report.Failed++
			continue
		}
		if err := store.SaveResponses(ctx, answered); err != nil {
			return report, fmt.Errorf("save case %d: %w", c.Row, err)
		}
		report.Answered++
		logger.Debug("Answered case %d", c.Row)
	}
	return report, nil
}

func (s *EvalService) ask(ctx context.Context, courseID string, c domain.EvalCase) (domain.EvalCase, error) {
	session, err := s.chat.NewSession(courseID)
	if err != nil {
		return c, err
	}

	answer, err := session.Post(ctx, c.Question)
	if err != nil {
		return c, fmt.Errorf("question: %w", err)
	}
	c.Response = answer.Text

	c.FollowUpResponse = ""
	if strings.TrimSpace(c.FollowUp) != "" {
		followUp, err := session.Post(ctx, c.FollowUp)
		if err != nil {
			return c, fmt.Errorf("follow-up: %w", err)
		}
		c.FollowUpResponse = followUp.Text
	}
	return c, nil
}
