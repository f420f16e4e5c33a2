package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/mealbridge/mealbridge/internal/config"
	"github.com/mealbridge/mealbridge/internal/db"
	"github.com/mealbridge/mealbridge/internal/models"
)

// TokenTTL is how long a session token stays valid.
const TokenTTL = 2 * time.Hour

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword compares a plain password with a hashed password
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateJWT generates a session token carrying the user ID and role.
func GenerateJWT(userID string, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret()))
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser creates a new user. Beneficiaries are seeded with their
// starting token balance, members start at zero.
func RegisterUser(name, email, password, role, address string) (models.User, error) {
	if !models.ValidRole(role) {
		return models.User{}, ErrInvalidRole
	}

	collection := db.GetCollection("users")
	email = NormalizeEmail(email)

	// Check if user already exists
	var existingUser models.User
	err := collection.FindOne(context.TODO(), bson.M{"email": email}).Decode(&existingUser)
	if err == nil {
		return models.User{}, ErrEmailInUse
	}

	// Hash password
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	tokenBalance := 0
	if role == models.RoleBeneficiary {
		tokenBalance = models.BeneficiarySeedTokens
	}

	now := time.Now()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
		Address:      address,
		TokenBalance: tokenBalance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = collection.InsertOne(context.TODO(), user)
	if mongo.IsDuplicateKeyError(err) {
		// Lost a race with a concurrent registration; the unique index wins.
		return models.User{}, ErrEmailInUse
	}
	return user, err
}

// LoginUser authenticates a user and returns the user plus a session token.
func LoginUser(email, password string) (models.User, string, error) {
	collection := db.GetCollection("users")

	var user models.User
	err := collection.FindOne(context.TODO(), bson.M{"email": NormalizeEmail(email)}).Decode(&user)
	if err != nil {
		return models.User{}, "", ErrInvalidCredentials
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		return models.User{}, "", err
	}

	return user, token, nil
}

// GetUserByID loads a user by its hex ID, for the /auth/me endpoint.
func GetUserByID(userID string) (models.User, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.User{}, ErrUserNotFound
	}

	var user models.User
	err = db.GetCollection("users").FindOne(context.TODO(), bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}
