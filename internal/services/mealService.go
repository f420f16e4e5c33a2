package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mealbridge/mealbridge/internal/db"
	"github.com/mealbridge/mealbridge/internal/models"
	"github.com/mealbridge/mealbridge/internal/storage"
)

const photoURLExpiry = 15 * time.Minute

// ListMeals returns the public meal catalog, newest first. Photo URLs are
// presigned in parallel since each one is a round trip to MinIO.
func ListMeals() ([]models.Meal, error) {
	cursor, err := db.GetCollection("meals").Find(
		context.TODO(),
		bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve meals: %w", err)
	}
	defer cursor.Close(context.TODO())

	meals := []models.Meal{}
	if err = cursor.All(context.TODO(), &meals); err != nil {
		return nil, fmt.Errorf("error decoding meals: %w", err)
	}

	if storage.MinioClient != nil {
		var wg sync.WaitGroup
		for i := range meals {
			if meals[i].PhotoObject == "" {
				continue
			}
			wg.Add(1)
			go func(index int) {
				defer wg.Done()
				url, err := storage.MinioClient.PresignedGetObject(
					context.Background(), storage.MealPhotoBucket, meals[index].PhotoObject, photoURLExpiry, nil)
				if err == nil {
					meals[index].PhotoURL = url.String()
				}
			}(i)
		}
		wg.Wait()
	}

	return meals, nil
}

// CreateMeal lists a new meal owned by the calling member.
func CreateMeal(memberID string, title, description string, dietary []string, qtyAvailable int) (models.Meal, error) {
	memID, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		return models.Meal{}, errors.New("invalid member ID")
	}
	if dietary == nil {
		dietary = []string{}
	}

	now := time.Now()
	meal := models.Meal{
		ID:           primitive.NewObjectID(),
		MemberID:     memID,
		Title:        title,
		Description:  description,
		Dietary:      dietary,
		QtyAvailable: qtyAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = db.GetCollection("meals").InsertOne(context.TODO(), meal)
	return meal, err
}

// MealUpdate carries the updatable meal fields; nil means leave unchanged.
type MealUpdate struct {
	Title        *string   `json:"title" validate:"omitempty,min=2"`
	Description  *string   `json:"description"`
	Dietary      *[]string `json:"dietary"`
	QtyAvailable *int      `json:"qtyAvailable" validate:"omitempty,min=0"`
}

// UpdateMeal applies a partial update to a meal the member owns. A meal owned
// by someone else is indistinguishable from one that does not exist.
func UpdateMeal(mealID, memberID string, update MealUpdate) (models.Meal, error) {
	mealObjID, err := primitive.ObjectIDFromHex(mealID)
	if err != nil {
		return models.Meal{}, ErrMealNotFound
	}
	memID, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		return models.Meal{}, ErrMealNotFound
	}

	set := bson.M{"updated_at": time.Now()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Dietary != nil {
		set["dietary"] = *update.Dietary
	}
	if update.QtyAvailable != nil {
		set["qty_available"] = *update.QtyAvailable
	}

	var meal models.Meal
	err = db.GetCollection("meals").FindOneAndUpdate(
		context.TODO(),
		bson.M{"_id": mealObjID, "member_id": memID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&meal)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Meal{}, ErrMealNotFound
	}
	if err != nil {
		return models.Meal{}, fmt.Errorf("failed to update meal: %w", err)
	}
	return meal, nil
}

// AttachMealPhoto stores a photo for a meal the member owns. The MinIO upload
// and the metadata write run in parallel; if the metadata write loses, the
// uploaded object is removed again.
func AttachMealPhoto(c *fiber.Ctx, mealID, memberID string) (models.Meal, error) {
	mealObjID, err := primitive.ObjectIDFromHex(mealID)
	if err != nil {
		return models.Meal{}, ErrMealNotFound
	}
	memID, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		return models.Meal{}, ErrMealNotFound
	}
	collection := db.GetCollection("meals")

	// Ownership check up front so strangers get a 404 before any upload,
	// regardless of whether photo storage is even configured.
	var meal models.Meal
	err = collection.FindOne(context.TODO(), bson.M{"_id": mealObjID, "member_id": memID}).Decode(&meal)
	if err != nil {
		return models.Meal{}, ErrMealNotFound
	}

	if storage.MinioClient == nil {
		return models.Meal{}, errors.New("photo storage not configured")
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return models.Meal{}, errors.New("failed to retrieve photo")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return models.Meal{}, errors.New("failed to open photo")
	}
	defer file.Close()

	photoBytes, err := io.ReadAll(file)
	if err != nil {
		return models.Meal{}, errors.New("failed to read photo")
	}

	objectName := fmt.Sprintf("%s_%s", mealObjID.Hex(), fileHeader.Filename)

	minioResultChan := make(chan error, 1)
	mongoResultChan := make(chan error, 1)

	go func() {
		_, err := storage.MinioClient.PutObject(
			context.Background(),
			storage.MealPhotoBucket,
			objectName,
			bytes.NewReader(photoBytes),
			int64(len(photoBytes)),
			minio.PutObjectOptions{ContentType: fileHeader.Header.Get("Content-Type")},
		)
		minioResultChan <- err
	}()

	go func() {
		_, err := collection.UpdateOne(
			context.TODO(),
			bson.M{"_id": mealObjID, "member_id": memID},
			bson.M{"$set": bson.M{"photo_object": objectName, "updated_at": time.Now()}},
		)
		mongoResultChan <- err
	}()

	minioErr := <-minioResultChan
	mongoErr := <-mongoResultChan

	if minioErr != nil {
		// The parallel metadata write may have won; a photo_object pointing at
		// an object that never landed would presign URLs that 404, so clear it
		// before reporting the failure.
		if mongoErr == nil {
			collection.UpdateOne(
				context.TODO(),
				bson.M{"_id": mealObjID, "member_id": memID},
				bson.M{"$unset": bson.M{"photo_object": ""}},
			)
		}
		return models.Meal{}, errors.New("failed to upload photo to storage: " + minioErr.Error())
	}
	if mongoErr != nil {
		// Try to clean up the uploaded object if the metadata write fails
		go func() {
			storage.MinioClient.RemoveObject(context.Background(), storage.MealPhotoBucket, objectName, minio.RemoveObjectOptions{})
		}()
		return models.Meal{}, errors.New("failed to save photo metadata: " + mongoErr.Error())
	}

	meal.PhotoObject = objectName
	url, err := storage.MinioClient.PresignedGetObject(context.Background(), storage.MealPhotoBucket, objectName, photoURLExpiry, nil)
	if err == nil {
		meal.PhotoURL = url.String()
	}
	return meal, nil
}
