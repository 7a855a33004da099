package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AchilleasB/coiipa/training-service/internal/core/domain"
	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
)

type MemberRepository struct {
	*SQLRepository
}

var _ ports.MemberStore = (*MemberRepository)(nil)

func NewMemberRepository(base *SQLRepository) *MemberRepository {
	return &MemberRepository{SQLRepository: base}
}

const memberColumns = `national_id, given_name, surname, city, center, qualification,
	registration_year, card_number, phone, registered_at`

func (r *MemberRepository) FindByNationalID(ctx context.Context, nationalID string) (*domain.Member, error) {
	var m domain.Member
	err := r.guard(func() error {
		err := r.conn(ctx).QueryRowContext(ctx,
			`SELECT `+memberColumns+` FROM members WHERE national_id = $1`,
			nationalID,
		).Scan(&m.NationalID, &m.GivenName, &m.Surname, &m.City, &m.Center, &m.Qualification,
			&m.RegistrationYear, &m.CardNumber, &m.Phone, &m.RegisteredAt)
		if errors.Is(err, sql.ErrNoRows) {
			return ports.ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) Insert(ctx context.Context, member domain.Member) (*domain.Member, error) {
	err := r.guard(func() error {
		err := r.conn(ctx).QueryRowContext(ctx,
			`INSERT INTO members (national_id, given_name, surname, city, center, qualification,
				registration_year, card_number, phone)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING registered_at`,
			member.NationalID, member.GivenName, member.Surname, member.City, member.Center,
			member.Qualification, member.RegistrationYear, member.CardNumber, member.Phone,
		).Scan(&member.RegisteredAt)
		if isUniqueViolation(err) {
			return fmt.Errorf("member %s: %w", member.NationalID, ports.ErrConflict)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}
