package domain

import (
	"errors"
	"fmt"
)

// BusinessError ожидаемый отказ бизнес-логики: купон не подошёл, баллов не
// хватает, заказ не в том статусе. UseCase уже залогировал причину, поэтому
// внешний слой не логирует её повторно, а решает, что показать пользователю
type BusinessError struct {
	Err error
}

func (e *BusinessError) Error() string {
	return e.Err.Error()
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// BusinessErrorf формирует бизнес-отказ из форматной строки,
// %w работает как в fmt.Errorf
func BusinessErrorf(format string, args ...interface{}) error {
	return &BusinessError{Err: fmt.Errorf(format, args...)}
}

func IsBusinessError(err error) bool {
	var businessErr *BusinessError
	return errors.As(err, &businessErr)
}
