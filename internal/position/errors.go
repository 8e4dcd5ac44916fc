package position

import (
	"errors"
	"fmt"
)

// Error 타입들은 포지션 계산 및 보호 주문 관리 중 발생할 수 있는 에러를 정의합니다
var (
	ErrValidation         = errors.New("입력값이 올바르지 않습니다")
	ErrNoFills            = errors.New("체결 내역이 없습니다")
	ErrZeroFilledQuantity = errors.New("체결 수량 합계가 0입니다")
	ErrZeroQuantity       = errors.New("단위 조정 후 수량이 0입니다")
)

// ValidationError는 거래소 호출 전에 잡힌 잘못된 입력을 나타냅니다
type ValidationError struct {
	Field  string
	Reason string
}

// Error는 error 인터페이스를 구현합니다
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is는 errors.Is(err, ErrValidation)를 지원합니다
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid는 필드 검증 에러를 생성합니다
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// PositionError는 심볼과 작업 정보를 덧붙인 에러입니다
type PositionError struct {
	Symbol string
	Op     string
	Err    error
}

// Error는 error 인터페이스를 구현합니다
func (e *PositionError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("포지션 에러 [%s, 작업: %s]: %v", e.Symbol, e.Op, e.Err)
	}
	return fmt.Sprintf("포지션 에러 [작업: %s]: %v", e.Op, e.Err)
}

// Unwrap은 내부 에러를 반환합니다 (errors.Is/As 지원을 위함)
func (e *PositionError) Unwrap() error {
	return e.Err
}

// NewPositionError는 새로운 PositionError를 생성합니다
func NewPositionError(symbol, op string, err error) *PositionError {
	return &PositionError{
		Symbol: symbol,
		Op:     op,
		Err:    err,
	}
}
