package command

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/sznchanda/arcade-ai/core"
)

func commandDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.RuntimeErrorInternal)
}

func commandInvalidInputError(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.RuntimeErrorBadInput)
}
