package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed   = errors.New("validation failed")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email address")

	// Ошибки конфликтов
	ErrUserEmailConflict       = errors.New("email address is already in use")
	ErrUserNicknameConflict    = errors.New("nickname is already in use")
	ErrCompetitionNameConflict = errors.New("competition name already exists")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound        = errors.New("user not found")
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrTrophyNotFound      = errors.New("trophy not found")
	ErrAuctionNotFound     = errors.New("auction not found")

	// Ошибки соревнований
	ErrCompetitionInvalidDateRange        = errors.New("competition end date must be after start date")
	ErrCompetitionInvalidStatus           = errors.New("invalid competition status provided")
	ErrCompetitionInvalidStatusTransition = errors.New("invalid competition status transition")
	ErrCompetitionNameRequired            = errors.New("competition name is required")

	// Ошибки аукционов
	ErrAuctionEmptyPool     = errors.New("competition has no players to auction")
	ErrAuctionInvalidBudget = errors.New("auction default budget must be positive")
)
