package queries

import (
	"errors"

	"patternfactory/internal/pkg/guard"
)

var ErrGetSLATableQueryIsNotConstructed = errors.New(
	"GetSLATableQuery must be created via NewGetSLATableQuery constructor",
)

type GetSLATableQuery struct {
	guard guard.ConstructorGuard
}

func NewGetSLATableQuery() GetSLATableQuery {
	return GetSLATableQuery{guard: guard.NewConstructorGuard()}
}

func (q GetSLATableQuery) Validate() error {
	return q.guard.Validate(ErrGetSLATableQueryIsNotConstructed)
}
