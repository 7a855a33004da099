package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/AchilleasB/coiipa/training-service/internal/core/domain"
	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
)

// MemberRegistry registers members and looks them up by national ID.
type MemberRegistry struct {
	members ports.MemberStore
	tx      ports.Transactor
	outbox  ports.OutboxWriter
	settings
}

var _ ports.MemberRegistry = (*MemberRegistry)(nil)

func NewMemberRegistry(
	members ports.MemberStore,
	tx ports.Transactor,
	outbox ports.OutboxWriter,
	opts ...Option,
) *MemberRegistry {
	return &MemberRegistry{
		members:  members,
		tx:       tx,
		outbox:   outbox,
		settings: newSettings(opts),
	}
}

// Register validates the candidate, rejects a repeated national ID and stores the member
// together with a member.registered event.
func (s *MemberRegistry) Register(ctx context.Context, candidate *domain.Member) (*domain.Member, error) {
	if err := domain.ValidateMember(candidate, s.maxRegistrationYear()); err != nil {
		s.metrics.RegistrationRejected("invalid_argument")
		return nil, err
	}
	if err := domain.ValidateNationalID(candidate.NationalID); err != nil {
		s.metrics.RegistrationRejected("invalid_argument")
		return nil, err
	}

	existing, err := s.members.FindByNationalID(ctx, candidate.NationalID)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, domain.NewPersistenceError("find member", err)
	}
	if existing != nil {
		s.metrics.RegistrationRejected(domain.CodeDuplicateMember)
		return nil, domain.NewDuplicateMember(candidate.NationalID)
	}

	var stored *domain.Member
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		stored, err = s.members.Insert(ctx, *candidate)
		if err != nil {
			return err
		}
		return s.outbox.Enqueue(ctx, ports.EventMemberRegistered, ports.MemberRegisteredEvent{
			NationalID: stored.NationalID,
			GivenName:  stored.GivenName,
			Surname:    stored.Surname,
			Center:     stored.Center,
		})
	})
	if errors.Is(err, ports.ErrConflict) {
		// lost a race with a concurrent registration of the same id
		s.metrics.RegistrationRejected(domain.CodeDuplicateMember)
		return nil, domain.NewDuplicateMember(candidate.NationalID)
	}
	if err != nil {
		return nil, domain.NewPersistenceError("insert member", err)
	}

	s.remember(ctx, stored)
	s.metrics.MemberRegistered()
	s.logger.Info("member registered",
		zap.String("national_id", stored.NationalID),
		zap.String("center", stored.Center),
	)
	return stored, nil
}

// FindByNationalID returns nil, nil when no member is registered with the id.
func (s *MemberRegistry) FindByNationalID(ctx context.Context, nationalID string) (*domain.Member, error) {
	if err := domain.ValidateNationalID(nationalID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, nationalID)
		if err != nil {
			s.logger.Warn("member cache read failed", zap.String("national_id", nationalID), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	member, err := s.members.FindByNationalID(ctx, nationalID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewPersistenceError("find member", err)
	}

	s.remember(ctx, member)
	return member, nil
}

func (s *MemberRegistry) remember(ctx context.Context, member *domain.Member) {
	if s.cache == nil || member == nil {
		return
	}
	if err := s.cache.Set(ctx, member); err != nil {
		s.logger.Warn("member cache write failed", zap.String("national_id", member.NationalID), zap.Error(err))
	}
}

func (s *MemberRegistry) maxRegistrationYear() int {
	if s.maxYear > 0 {
		return s.maxYear
	}
	return s.now().Year()
}
