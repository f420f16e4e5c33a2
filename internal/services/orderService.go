package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mealbridge/mealbridge/internal/db"
	"github.com/mealbridge/mealbridge/internal/metrics"
	"github.com/mealbridge/mealbridge/internal/models"
)

// PlaceOrder spends one of the beneficiary's tokens on one portion of a meal
// and records the resulting order.
//
// The whole thing is a compensating saga over two conditional updates rather
// than a multi-document transaction, so it works against standalone Mongo
// deployments. The meal decrement only applies while stock remains, the token
// debit only applies while the balance covers the cost, and any failure after
// the decrement puts the portion back before the error is returned. Neither
// counter can ever be observed negative.
func PlaceOrder(beneficiaryID, mealID string) (models.Order, error) {
	benID, err := primitive.ObjectIDFromHex(beneficiaryID)
	if err != nil {
		metrics.OrdersPlaced.WithLabelValues(metrics.OutcomeError).Inc()
		return models.Order{}, ErrInvalidBeneficiary
	}
	mealObjID, err := primitive.ObjectIDFromHex(mealID)
	if err != nil {
		metrics.OrdersPlaced.WithLabelValues(metrics.OutcomeMealUnavailable).Inc()
		return models.Order{}, ErrMealUnavailable
	}

	meals := db.GetCollection("meals")
	users := db.GetCollection("users")
	orders := db.GetCollection("orders")
	now := time.Now()

	// Reserve one portion. The filter and decrement are a single atomic unit,
	// so concurrent buyers racing for the last portion serialize here: exactly
	// one wins, the rest see no matching document. The returned post-update
	// document also fixes member_id at the same instant as the decrement.
	var meal models.Meal
	err = meals.FindOneAndUpdate(
		context.TODO(),
		bson.M{"_id": mealObjID, "qty_available": bson.M{"$gt": 0}},
		bson.M{
			"$inc": bson.M{"qty_available": -1},
			"$set": bson.M{"updated_at": now},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&meal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			metrics.OrdersPlaced.WithLabelValues(metrics.OutcomeMealUnavailable).Inc()
			return models.Order{}, ErrMealUnavailable
		}
		metrics.OrdersPlaced.WithLabelValues(metrics.OutcomeError).Inc()
		return models.Order{}, fmt.Errorf("failed to reserve meal: %w", err)
	}

	// Debit one token, only while the caller really is a beneficiary with
	// balance to spend.
	res, err := users.UpdateOne(
		context.TODO(),
		bson.M{
			"_id":           benID,
			"role":          models.RoleBeneficiary,
			"token_balance": bson.M{"$gte": models.OrderCostTokens},
		},
		bson.M{
			"$inc": bson.M{"token_balance": -models.OrderCostTokens},
			"$set": bson.M{"updated_at": now},
		},
	)
	if err != nil {
		restockMeal(mealObjID)
		metrics.OrdersPlaced.WithLabelValues(metrics.OutcomeError).Inc()
		return models.Order{}, fmt.Errorf("failed to debit tokens: %w", err)
	}
	if res.ModifiedCount == 0 {
		// The debit never happened; put the reserved portion back before
		// reporting why.
		restockMeal(mealObjID)
		reason := debitFailureReason(benID)
		if errors.Is(reason, ErrInsufficientTokens) {
			metrics.OrdersPlaced.WithLabelValues(metrics.OutcomeInsufficientTokens).Inc()
		} else {
			metrics.OrdersPlaced.WithLabelValues(metrics.OutcomeError).Inc()
		}
		return models.Order{}, reason
	}

	order := models.Order{
		ID:            primitive.NewObjectID(),
		MealID:        mealObjID,
		BeneficiaryID: benID,
		MemberID:      meal.MemberID,
		Status:        models.OrderPending,
		CostTokens:    models.OrderCostTokens,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := orders.InsertOne(context.TODO(), order); err != nil {
		// Both counters moved but no order exists; reverse both.
		refundTokens(benID)
		restockMeal(mealObjID)
		metrics.OrdersPlaced.WithLabelValues(metrics.OutcomeError).Inc()
		return models.Order{}, fmt.Errorf("failed to create order: %w", err)
	}

	metrics.OrdersPlaced.WithLabelValues(metrics.OutcomePlaced).Inc()
	return order, nil
}

// restockMeal reverses a stock decrement. Unconditional: the portion was
// taken by this request, so it always goes back.
func restockMeal(mealID primitive.ObjectID) {
	_, err := db.GetCollection("meals").UpdateOne(
		context.TODO(),
		bson.M{"_id": mealID},
		bson.M{"$inc": bson.M{"qty_available": 1}},
	)
	if err != nil {
		log.Printf("compensation failed, meal %s short one portion: %v", mealID.Hex(), err)
	}
}

// refundTokens reverses a token debit after a failed order insert.
func refundTokens(userID primitive.ObjectID) {
	_, err := db.GetCollection("users").UpdateOne(
		context.TODO(),
		bson.M{"_id": userID},
		bson.M{"$inc": bson.M{"token_balance": models.OrderCostTokens}},
	)
	if err != nil {
		log.Printf("compensation failed, user %s short %d token(s): %v", userID.Hex(), models.OrderCostTokens, err)
	}
}

// debitFailureReason tells apart a missing/imposter beneficiary from a real
// one who is simply out of tokens. The conditional debit cannot distinguish
// which predicate failed, so one follow-up read decides the message.
func debitFailureReason(userID primitive.ObjectID) error {
	var user models.User
	err := db.GetCollection("users").FindOne(context.TODO(), bson.M{"_id": userID}).Decode(&user)
	if err != nil || user.Role != models.RoleBeneficiary {
		return ErrInvalidBeneficiary
	}
	return ErrInsufficientTokens
}

// AcceptOrder transitions one of the member's own pending orders to accepted.
// Orders owned by other members are reported as not found, identically to
// orders that do not exist.
func AcceptOrder(memberID, orderID string) (models.Order, error) {
	memID, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		return models.Order{}, ErrOrderNotFound
	}
	ordID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return models.Order{}, ErrOrderNotFound
	}

	orders := db.GetCollection("orders")

	// Conditional on status, so a second accept can never re-transition.
	var order models.Order
	err = orders.FindOneAndUpdate(
		context.TODO(),
		bson.M{"_id": ordID, "member_id": memID, "status": models.OrderPending},
		bson.M{"$set": bson.M{"status": models.OrderAccepted, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err == nil {
		metrics.OrdersAccepted.Inc()
		return order, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, fmt.Errorf("failed to accept order: %w", err)
	}

	// No pending match: either the order isn't ours to accept, or it already
	// left the pending state.
	count, countErr := orders.CountDocuments(context.TODO(), bson.M{"_id": ordID, "member_id": memID})
	if countErr == nil && count > 0 {
		return models.Order{}, ErrOrderNotPending
	}
	return models.Order{}, ErrOrderNotFound
}

// ListOrdersByMember returns a member's incoming orders, newest first.
func ListOrdersByMember(memberID string) ([]models.Order, error) {
	memID, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return findOrders(bson.M{"member_id": memID})
}

// ListOrdersByBeneficiary returns a beneficiary's own orders, newest first.
func ListOrdersByBeneficiary(beneficiaryID string) ([]models.Order, error) {
	benID, err := primitive.ObjectIDFromHex(beneficiaryID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return findOrders(bson.M{"beneficiary_id": benID})
}

func findOrders(filter bson.M) ([]models.Order, error) {
	cursor, err := db.GetCollection("orders").Find(
		context.TODO(),
		filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	defer cursor.Close(context.TODO())

	orders := []models.Order{}
	if err = cursor.All(context.TODO(), &orders); err != nil {
		return nil, fmt.Errorf("error decoding orders: %w", err)
	}
	return orders, nil
}
