package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "github.com/keshavmohta09/RosterPulse/pkg/errors"
)

// PostgreSQL SQLSTATE
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// 唯一索引 → 对外提示
var uniqueMessages = map[string]string{
	"uq_users_email":                 "User with this Email already exists.",
	"uq_user_role_active":            "User role with this User and Role already exists.",
	"profiles_user_id_key":           "Profile with this User already exists.",
	"uq_roster_manager_active":       "Roster manager with this Roster and Manager already exists.",
	"uq_roster_user_schedule_active": "Roster user schedule with this Roster, User, Working day and Shift already exists.",
	"blacklisted_tokens_pkey":        "Token is already black listed.",
}

// 外键 → 对外提示
var foreignKeyMessages = map[string]string{
	"user_roles_user_id_fkey":                  "Invalid user",
	"profiles_user_id_fkey":                    "Invalid user",
	"roster_managers_roster_id_fkey":           "Invalid roster",
	"roster_managers_manager_id_fkey":          "Invalid manager",
	"roster_user_schedules_roster_id_fkey":     "Invalid roster",
	"roster_user_schedules_user_id_fkey":       "Invalid user",
	"attendances_roster_user_schedule_id_fkey": "Invalid roster_user_schedule",
}

// translate 把驱动层约束错误转为 *pkgerrors.IntegrityError，其余原样返回
func translate(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if msg, ok := uniqueMessages[pgErr.ConstraintName]; ok {
				return pkgerrors.NewIntegrity(msg, err)
			}
			return pkgerrors.NewIntegrity(pgErr.Message, err)
		case pgForeignKeyViolation:
			if msg, ok := foreignKeyMessages[pgErr.ConstraintName]; ok {
				return pkgerrors.NewIntegrity(msg, err)
			}
			return pkgerrors.NewIntegrity(pgErr.Message, err)
		case pgCheckViolation:
			return pkgerrors.NewIntegrity(pgErr.Message, err)
		}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return pkgerrors.NewIntegrity(err.Error(), err)
	}
	return err
}
