package entity

import "errors"

var (
	ErrLeadNotFound      = errors.New("lead não encontrado")
	ErrUserNotFound      = errors.New("usuário não encontrado")
	ErrInvalidLeadStatus = errors.New("invalid lead status")
)
