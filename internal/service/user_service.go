package service

import (
	"go-studioadmin/internal/domain/model"
	"go-studioadmin/pkg/crypto"
)

// hashUserPassword replaces a plain password from the request with its bcrypt hash.
func hashUserPassword(u *model.User) error {
	if u.Password == "" {
		return nil
	}
	h, err := crypto.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.PasswordHash = h
	u.Password = ""
	return nil
}
