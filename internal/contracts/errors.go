package contracts

import "errors"

// Core error kinds
// ⭐ SSOT: 코어 에러는 여기서만 정의, 호출부는 errors.Is로 판별
var (
	// ErrInsufficientData fewer than 2 price observations (or return rows)
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidParameter n < 1, fewer than 2 assets, malformed rate, shape mismatch
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrEmptyCandidateSet risk-tier filter left nothing to select from
	ErrEmptyCandidateSet = errors.New("empty candidate set")
)
