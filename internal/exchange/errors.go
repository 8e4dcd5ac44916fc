package exchange

import (
	"errors"
	"fmt"
)

// 거래소 경계에서 발생하는 에러 종류
var (
	ErrSymbolNotFound = errors.New("심볼 정보를 찾을 수 없습니다")
	ErrRejected       = errors.New("거래소가 요청을 거부했습니다")
	ErrTransport      = errors.New("거래소 통신 실패")
)

// APIError는 거래소가 반환한 에러 응답입니다
type APIError struct {
	HTTPStatus int
	Code       int
	Message    string
}

// Error는 error 인터페이스를 구현합니다
func (e *APIError) Error() string {
	return fmt.Sprintf("API 에러(HTTP %d, 코드: %d): %s", e.HTTPStatus, e.Code, e.Message)
}

// Is는 모든 APIError를 ErrRejected로 취급합니다
func (e *APIError) Is(target error) bool {
	return target == ErrRejected
}

// TransportError는 네트워크 계층 실패를 감쌉니다
type TransportError struct {
	Op  string
	Err error
}

// Error는 error 인터페이스를 구현합니다
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrTransport, e.Op, e.Err)
}

// Unwrap은 내부 에러를 반환합니다
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is는 errors.Is(err, ErrTransport)를 지원합니다
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// NotFound는 심볼을 포함한 ErrSymbolNotFound를 만듭니다
func NotFound(symbol string) error {
	return fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
}
