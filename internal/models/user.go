package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser     = "user"
	RoleHomeCook = "home_cook"
)

// User is an app account. Home cooks are users with Role == RoleHomeCook.
type User struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	DisplayName string             `json:"display_name" bson:"display_name"`
	Username    string             `json:"username" bson:"username"`
	Bio         string             `json:"bio,omitempty" bson:"bio,omitempty"`
	AvatarURL   string             `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	City        string             `json:"city,omitempty" bson:"city,omitempty"`
	Cuisines    []string           `json:"cuisines,omitempty" bson:"cuisines,omitempty"`
	Role        string             `json:"role" bson:"role"`
	CanPost     bool               `json:"can_post" bson:"can_post"`
	Rating      float64            `json:"rating,omitempty" bson:"rating,omitempty"`
	PushToken   string             `json:"-" bson:"push_token,omitempty"`
	IsActive    bool               `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// ProfileUpdate is the editable part of a profile.
type ProfileUpdate struct {
	DisplayName *string  `json:"display_name,omitempty" binding:"omitempty,min=1,max=60"`
	Username    *string  `json:"username,omitempty" binding:"omitempty,min=3,max=30,alphanum"`
	Bio         *string  `json:"bio,omitempty" binding:"omitempty,max=500"`
	AvatarURL   *string  `json:"avatar_url,omitempty" binding:"omitempty,url"`
	City        *string  `json:"city,omitempty"`
	Cuisines    []string `json:"cuisines,omitempty"`
	PushToken   *string  `json:"push_token,omitempty"`
}

func (u ProfileUpdate) Fields() map[string]interface{} {
	set := map[string]interface{}{}
	if u.DisplayName != nil {
		set["display_name"] = *u.DisplayName
	}
	if u.Username != nil {
		set["username"] = *u.Username
	}
	if u.Bio != nil {
		set["bio"] = *u.Bio
	}
	if u.AvatarURL != nil {
		set["avatar_url"] = *u.AvatarURL
	}
	if u.City != nil {
		set["city"] = *u.City
	}
	if u.Cuisines != nil {
		set["cuisines"] = u.Cuisines
	}
	if u.PushToken != nil {
		set["push_token"] = *u.PushToken
	}
	return set
}
