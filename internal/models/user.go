package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can register with.
const (
	RoleBeneficiary = "beneficiary"
	RoleMember      = "member"
)

// Beneficiaries are seeded with a small token allowance at registration.
const BeneficiarySeedTokens = 10

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name" json:"name" validate:"required,min=2"`
	Email        string             `bson:"email" json:"email" validate:"required,email"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	Role         string             `bson:"role" json:"role"`
	Address      string             `bson:"address,omitempty" json:"address,omitempty"`
	TokenBalance int                `bson:"token_balance" json:"tokenBalance"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// ValidRole reports whether role is one a user may register with.
func ValidRole(role string) bool {
	return role == RoleBeneficiary || role == RoleMember
}
