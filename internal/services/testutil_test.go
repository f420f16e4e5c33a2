package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mealbridge/mealbridge/internal/db"
	"github.com/mealbridge/mealbridge/internal/models"
)

var (
	testDBOnce sync.Once
	emailSeq   int
	emailMu    sync.Mutex
)

// connectTestDB connects to the MongoDB named by TEST_MONGO_URI, or skips the
// test when none is configured. The test database is dropped once per run.
func connectTestDB(t *testing.T) {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set; skipping MongoDB integration test")
	}
	testDBOnce.Do(func() {
		database := db.ConnectMongoDB(uri, "mealbridge_test")
		_ = database.Drop(context.Background())
	})
}

func uniqueEmail(prefix string) string {
	emailMu.Lock()
	defer emailMu.Unlock()
	emailSeq++
	return fmt.Sprintf("%s-%d-%d@example.org", prefix, time.Now().UnixNano(), emailSeq)
}

func seedUser(t *testing.T, role string, balance int) models.User {
	t.Helper()
	now := time.Now()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         "Test " + role,
		Email:        uniqueEmail(role),
		PasswordHash: "x",
		Role:         role,
		TokenBalance: balance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := db.GetCollection("users").InsertOne(context.Background(), user)
	require.NoError(t, err)
	return user
}

func seedMeal(t *testing.T, memberID primitive.ObjectID, qty int) models.Meal {
	t.Helper()
	now := time.Now()
	meal := models.Meal{
		ID:           primitive.NewObjectID(),
		MemberID:     memberID,
		Title:        "Lentil soup",
		Dietary:      []string{"vegan"},
		QtyAvailable: qty,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := db.GetCollection("meals").InsertOne(context.Background(), meal)
	require.NoError(t, err)
	return meal
}

func mealQty(t *testing.T, mealID primitive.ObjectID) int {
	t.Helper()
	var meal models.Meal
	require.NoError(t, db.GetCollection("meals").FindOne(context.Background(), bson.M{"_id": mealID}).Decode(&meal))
	return meal.QtyAvailable
}

func userBalance(t *testing.T, userID primitive.ObjectID) int {
	t.Helper()
	var user models.User
	require.NoError(t, db.GetCollection("users").FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user))
	return user.TokenBalance
}

func orderCountForMeal(t *testing.T, mealID primitive.ObjectID) int64 {
	t.Helper()
	count, err := db.GetCollection("orders").CountDocuments(context.Background(), bson.M{"meal_id": mealID})
	require.NoError(t, err)
	return count
}
