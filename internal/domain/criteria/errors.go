package criteria

import "errors"

var (
	ErrNotFound         = errors.New("criterion not found")
	ErrInvalidDimension = errors.New("dimension must be INSTITUCIONAL, FUNCIONAL or INDIVIDUAL")
	ErrInvalidType      = errors.New("type must be DESEMPENHO or POTENCIAL")
	ErrInvalidWeight    = errors.New("weight dimension must be INSTITUCIONAL, FUNCIONAL, INDIVIDUAL or METAS")
)
