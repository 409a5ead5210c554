package application

import (
	"errors"
)

func validateAmount(value interface{}) error {
	const maxSatoshis = 2099999997690000

	satoshis, ok := value.(uint64)
	if !ok {
		return errors.New("amount is of unknown type")
	}

	if satoshis <= 0 {
		return errors.New("amount must be greater than zero")
	}

	if satoshis > maxSatoshis {
		return errors.New("amount cannot be greater than 2099999997690000")
	}

	return nil
}
