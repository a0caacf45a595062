package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role literals as stored. The casing is inconsistent on purpose: the
// persisted data uses "Seller" with a capital S and the gates compare the
// exact string.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "Seller"
	RoleAdmin  = "admin"
)

// User is a marketplace account. Email is the unique key and the only
// identity every other collection references.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name      string             `bson:"name" json:"name" validate:"required"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	Password  string             `bson:"password,omitempty" json:"-"` // bcrypt hash, never serialised
	Role      string             `bson:"role" json:"role" validate:"required,in=buyer,Seller,admin"`
	Verified  bool               `bson:"verified" json:"verified"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Review is a site review left by a user.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name      string             `bson:"name" json:"name" validate:"required"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	Rating    int                `bson:"rating" json:"rating" validate:"required,gte=1,max=5"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
