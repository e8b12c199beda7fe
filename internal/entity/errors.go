package entity

import "errors"

// Domain errors for accounts, stats and quiz sessions.
var (
	ErrInvalidIdentity    = errors.New("invalid identity")
	ErrAccountExists      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrNotLoggedIn        = errors.New("not logged in")

	ErrRecordNotFound = errors.New("record not found")
	ErrCorruptRecord  = errors.New("corrupt record")

	ErrInvalidXPAmount     = errors.New("invalid xp amount")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrProRequired         = errors.New("language requires a pro subscription")
	ErrUpgradeRequired     = errors.New("free upload limit reached")

	ErrInsufficientText     = errors.New("could not extract enough text from document")
	ErrNoDocument           = errors.New("no processed document")
	ErrQuizGenerationFailed = errors.New("failed to generate quiz")
	ErrMissingAPIKey        = errors.New("api key missing")

	ErrEmptyQuiz             = errors.New("quiz has no questions")
	ErrNoQuizSession         = errors.New("no saved quiz session")
	ErrInvalidQuizSession    = errors.New("invalid quiz session")
	ErrInvalidQuizTransition = errors.New("invalid quiz transition")
	ErrInvalidOption         = errors.New("option is not part of the question")
)
