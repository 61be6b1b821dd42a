package recordstore

import (
	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
)

const component = "recordstore"

// storeError classifies a database failure. Storage defects are internal to
// the toolkit, so callers see an Internal error with the driver error as source.
func storeError(operation string, err error) error {
	return errors.New(errors.KindInternal).
		Message("record store " + operation + " failed").
		Source(err).
		Component(component).
		Operation(operation).
		Build()
}

// invalidInput rejects caller-supplied values before they reach the database.
func invalidInput(field, msg string) error {
	return errors.New(errors.KindValidation).
		Field(field).
		Message(msg).
		Component(component).
		Build()
}
