package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// UserModelName is the registered name of the account document type
	UserModelName = "User"

	// RoleUser is the default account role
	RoleUser = "user"

	// RoleAdmin may change roles and list bookings
	RoleAdmin = "admin"
)

// User represents a persisted account document.
// The bson names (including "isVeified" and "Code") match documents already
// stored in the users collection.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username   string             `bson:"username,omitempty" json:"username"`
	Email      string             `bson:"email,omitempty" json:"email"`
	Password   string             `bson:"password,omitempty" json:"-"` // bcrypt hash, never exposed
	IsVerified bool               `bson:"isVeified" json:"is_verified"`
	Code       string             `bson:"Code,omitempty" json:"-"` // one-time verification code
	Role       string             `bson:"role,omitempty" json:"role"`

	// CodeAttempts counts wrong codes entered since the code was issued
	CodeAttempts int `bson:"codeAttempts,omitempty" json:"-"`
}

// UserSchema returns the process-wide User descriptor
func UserSchema() *Schema {
	return Model(UserModelName, newUserSchema)
}

func newUserSchema() *Schema {
	return &Schema{
		Collection: "users",
		Fields: []FieldSpec{
			{Name: "username", Kind: KindString, Required: true, RequiredMessage: "Username is required"},
			{Name: "email", Kind: KindString, Required: true, RequiredMessage: "email is required", Unique: true, UniqueMessage: "Email must be unique"},
			{Name: "password", Kind: KindString, Required: true, RequiredMessage: "password is required"},
			{Name: "isVeified", Kind: KindBool, Default: false},
			{Name: "Code", Kind: KindString, Required: true, RequiredMessage: "code is required"},
			{Name: "role", Kind: KindString, Required: true, RequiredMessage: "role is required", Default: RoleUser},
		},
	}
}
