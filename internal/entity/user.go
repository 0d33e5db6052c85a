package entity

import (
	"context"
	"time"
)

// User carrega apenas o estado de progressão; o resto da conta vive fora deste serviço.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Level     int       `json:"level"`
	XP        int       `json:"xp"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*User, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id string) (*User, error)
	UpdateProgress(ctx context.Context, id string, xp, level int) error
	// RepairLevel grava só o level, e só se o xp ainda for o lido; false quando outro write ganhou.
	RepairLevel(ctx context.Context, id string, readXP, level int) (bool, error)
}
