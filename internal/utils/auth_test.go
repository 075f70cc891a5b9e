package utils

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/milesync/milesync-backend/internal/types"
)

type stubUserRepo struct {
	existingEmail string
}

func (s *stubUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	return users, nil
}

func (s *stubUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error) {
	return nil, nil
}

func (s *stubUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*types.User, error) {
	return nil, nil
}

func (s *stubUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, userEmail string) (bool, error) {
	return userEmail == s.existingEmail, nil
}

func TestValidateRegistration(t *testing.T) {
	repo := &stubUserRepo{existingEmail: "taken@example.com"}

	valid := &types.User{Email: "new@example.com", Password: "pw", FirstName: "A", LastName: "B"}
	if err := ValidateRegistration(context.Background(), repo, nil, valid); err != nil {
		t.Errorf("valid registration rejected: %v", err)
	}

	taken := &types.User{Email: "taken@example.com", Password: "pw", FirstName: "A", LastName: "B"}
	if err := ValidateRegistration(context.Background(), repo, nil, taken); err == nil || !strings.Contains(err.Error(), "already in use") {
		t.Errorf("duplicate email accepted: %v", err)
	}

	missing := &types.User{Email: "x@example.com"}
	if err := ValidateRegistration(context.Background(), repo, nil, missing); err == nil {
		t.Error("registration without password accepted")
	}
}

func TestHashPassword(t *testing.T) {
	user := &types.User{Password: "hunter2"}
	if err := HashPassword(user); err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if user.Password == "hunter2" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter2")); err != nil {
		t.Errorf("hash does not verify: %v", err)
	}
}

func TestNormalizeUserFields(t *testing.T) {
	user := &types.User{Email: " Bob@Example.COM ", FirstName: " Bob ", LastName: " Smith "}
	NormalizeUserFields(user)
	if user.Email != "bob@example.com" {
		t.Errorf("email = %q", user.Email)
	}
	if user.FirstName != "Bob" || user.LastName != "Smith" {
		t.Errorf("names = %q %q", user.FirstName, user.LastName)
	}
}
