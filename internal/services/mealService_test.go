package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mealbridge/mealbridge/internal/db"
	"github.com/mealbridge/mealbridge/internal/models"
	"github.com/mealbridge/mealbridge/internal/storage"
)

func TestCreateAndListMeals(t *testing.T) {
	connectTestDB(t)

	member := seedUser(t, models.RoleMember, 0)

	created, err := CreateMeal(member.ID.Hex(), "Veggie curry", "mild", []string{"vegan", "gluten-free"}, 4)
	require.NoError(t, err)
	assert.Equal(t, member.ID, created.MemberID)
	assert.Equal(t, 4, created.QtyAvailable)

	meals, err := ListMeals()
	require.NoError(t, err)
	require.NotEmpty(t, meals)
	for i := 1; i < len(meals); i++ {
		assert.False(t, meals[i].CreatedAt.After(meals[i-1].CreatedAt), "meals must be newest first")
	}
}

func TestCreateMealDefaultsDietaryToEmptyList(t *testing.T) {
	connectTestDB(t)

	member := seedUser(t, models.RoleMember, 0)
	created, err := CreateMeal(member.ID.Hex(), "Plain rice", "", nil, 1)
	require.NoError(t, err)
	assert.NotNil(t, created.Dietary)
	assert.Empty(t, created.Dietary)
}

// attachPhoto drives AttachMealPhoto through a real multipart request so the
// fiber.Ctx it needs is the genuine article.
func attachPhoto(t *testing.T, mealID, memberID string) error {
	t.Helper()
	var gotErr error
	app := fiber.New()
	app.Post("/meals/:id/photo", func(c *fiber.Ctx) error {
		_, gotErr = AttachMealPhoto(c, c.Params("id"), memberID)
		return nil
	})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("photo", "photo.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("not really a jpeg"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/meals/"+mealID+"/photo", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	_, err = app.Test(req, 15000)
	require.NoError(t, err)
	return gotErr
}

func TestAttachMealPhotoOwnerOnly(t *testing.T) {
	connectTestDB(t)

	owner := seedUser(t, models.RoleMember, 0)
	stranger := seedUser(t, models.RoleMember, 0)
	meal := seedMeal(t, owner.ID, 1)

	// The ownership check fires before storage is consulted, so a stranger is
	// told not-found even when no MinIO is configured.
	err := attachPhoto(t, meal.ID.Hex(), stranger.ID.Hex())
	assert.ErrorIs(t, err, ErrMealNotFound)

	err = attachPhoto(t, "64f0000000000000000000cc", owner.ID.Hex())
	assert.ErrorIs(t, err, ErrMealNotFound)

	if storage.MinioClient == nil {
		// The owner clears the ownership check and only then hits the
		// missing-storage error.
		err = attachPhoto(t, meal.ID.Hex(), owner.ID.Hex())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrMealNotFound)
	}
}

func TestAttachMealPhotoClearsMetadataWhenUploadFails(t *testing.T) {
	connectTestDB(t)

	// A client pointed at a dead endpoint: the upload fails while the parallel
	// metadata write can still win.
	dead, err := minio.New("127.0.0.1:1", &minio.Options{
		Creds: credentials.NewStaticV4("x", "x", ""),
	})
	require.NoError(t, err)
	prev := storage.MinioClient
	storage.MinioClient = dead
	t.Cleanup(func() { storage.MinioClient = prev })

	owner := seedUser(t, models.RoleMember, 0)
	meal := seedMeal(t, owner.ID, 1)

	err = attachPhoto(t, meal.ID.Hex(), owner.ID.Hex())
	require.Error(t, err)

	var got models.Meal
	require.NoError(t, db.GetCollection("meals").FindOne(context.Background(), bson.M{"_id": meal.ID}).Decode(&got))
	assert.Empty(t, got.PhotoObject, "failed upload must not leave photo metadata behind")
}

func TestUpdateMealOwnerOnly(t *testing.T) {
	connectTestDB(t)

	owner := seedUser(t, models.RoleMember, 0)
	stranger := seedUser(t, models.RoleMember, 0)
	meal := seedMeal(t, owner.ID, 2)

	title := "Lentil soup, extra large"
	qty := 7
	updated, err := UpdateMeal(meal.ID.Hex(), owner.ID.Hex(), MealUpdate{Title: &title, QtyAvailable: &qty})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, qty, updated.QtyAvailable)
	// Untouched fields survive a partial update.
	assert.Equal(t, meal.Dietary, updated.Dietary)

	// A non-owner gets not-found, same as a missing meal.
	_, err = UpdateMeal(meal.ID.Hex(), stranger.ID.Hex(), MealUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrMealNotFound)

	_, err = UpdateMeal("64f0000000000000000000bb", owner.ID.Hex(), MealUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrMealNotFound)
}
