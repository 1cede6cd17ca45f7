package domain

import "errors"

var (
	// ErrQuestionNotFound возвращается, когда вопрос не найден.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrUserNotFound возвращается, когда пользователь не найден.
	ErrUserNotFound = errors.New("user not found")

	// ErrDonationNotFound возвращается, когда заказ не найден.
	ErrDonationNotFound = errors.New("donation not found")

	// ErrNoDelivery возвращается, когда ни один вопрос ещё не рассылался.
	ErrNoDelivery = errors.New("no delivered question yet")

	// ErrDonationFinalized возвращается, когда пожертвование уже в окончательном статусе.
	ErrDonationFinalized = errors.New("donation already finalized")

	// ErrAlreadyAnswered возвращается хранилищем при повторном ответе на ту же рассылку.
	ErrAlreadyAnswered = errors.New("already answered")
)

// ValidationError сообщает об ошибке пользовательского ввода.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError создаёт ошибку валидации.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation сообщает, является ли ошибка ошибкой валидации.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
