package contacts

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/devfolio/portfolio-backend/internal/notify"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const notifyTimeout = 30 * time.Second

type Service struct {
	repo     *Repo
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time

	inflight sync.WaitGroup
}

func NewService(repo *Repo, notifier notify.Notifier, log *zap.Logger) *Service {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Submit validates and stores a contact form submission, then notifies the
// owner in the background. Notification failures are only logged.
func (s *Service) Submit(ctx context.Context, name, email, message string) (*Submission, error) {
	sub, err := s.validate(name, email, message)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Ready(ctx); err != nil {
		return nil, err
	}

	sub.SubmittedAt = s.now().UTC().Truncate(time.Microsecond)
	id, err := s.repo.Create(ctx, sub)
	if err != nil {
		return nil, err
	}
	sub.ID = id

	s.log.Info("contact submission saved", zap.String("contact_id", id))
	s.notifyAsync(ctx, *sub)
	return sub, nil
}

func (s *Service) List(ctx context.Context) ([]Submission, error) {
	return s.repo.ListNewestFirst(ctx)
}

// Wait blocks until background notifications finish or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) validate(name, email, message string) (*Submission, error) {
	sub := &Submission{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Message: strings.TrimSpace(message),
		Status:  StatusNew,
	}
	if sub.Name == "" || sub.Email == "" || sub.Message == "" {
		return nil, ErrMissingFields
	}
	if !emailPattern.MatchString(sub.Email) {
		return nil, ErrInvalidEmail
	}
	return sub, nil
}

func (s *Service) notifyAsync(ctx context.Context, sub Submission) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()

		err := s.notifier.NotifyContact(ctx, notify.Contact{
			Name:        sub.Name,
			Email:       sub.Email,
			Message:     sub.Message,
			SubmittedAt: sub.SubmittedAt,
		})
		if err != nil {
			s.log.Warn("contact notification failed, submission was saved",
				zap.String("contact_id", sub.ID),
				zap.Error(err),
			)
		}
	}()
}
