package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"repairhub/config"
	"repairhub/database"
	"repairhub/models"
	"repairhub/utils"
)

const (
	pendingCount   = 25
	historyCount   = 40
	demoProviderID = "demo-provider"
	demoName       = "Demo Provider"
)

var (
	serviceTypes = []string{"Plumbing", "Electrical", "HVAC", "Appliance Repair", "Carpentry", "Roofing"}
	streets      = []string{"Elm St", "Main St", "Oak Ave", "Pine Rd", "Maple Dr", "Cedar Ln"}
	methods      = []string{"cash", "card", "mpesa"}
	experiences  = []string{"Very Satisfied", "Satisfied", "Neutral", "Dissatisfied"}
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stores, err := database.OpenStores(ctx, logger)
	if err != nil {
		log.Fatalf("Failed to open stores: %v", err)
	}
	defer stores.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()

	// Open requests any provider can claim.
	for i := 0; i < pendingCount; i++ {
		req := models.ServiceRequest{
			ID:                  uuid.New().String(),
			ServiceType:         serviceTypes[rng.Intn(len(serviceTypes))],
			Address:             fmt.Sprintf("%d %s", 1+rng.Intn(400), streets[rng.Intn(len(streets))]),
			Date:                now.AddDate(0, 0, rng.Intn(14)).Format("2006-01-02"),
			IsUrgent:            rng.Intn(5) == 0,
			SpecialInstructions: "",
			Status:              models.StatusPending,
			CreatedAt:           now.Add(-time.Duration(rng.Intn(72)) * time.Hour),
		}
		if _, err := stores.Requests.Create(ctx, req); err != nil {
			log.Fatalf("Failed to insert pending request: %v", err)
		}
	}

	// Completed history for the demo provider, spread over the last year.
	for i := 0; i < historyCount; i++ {
		completedAt := now.Add(-time.Duration(rng.Intn(365*24)) * time.Hour)
		acceptedAt := completedAt.Add(-3 * time.Hour)
		startedAt := completedAt.Add(-2 * time.Hour)
		amount := float64(50+rng.Intn(450)) + float64(rng.Intn(100))/100
		name := demoName

		req := models.ServiceRequest{
			ID:               uuid.New().String(),
			ServiceType:      serviceTypes[rng.Intn(len(serviceTypes))],
			Address:          fmt.Sprintf("%d %s", 1+rng.Intn(400), streets[rng.Intn(len(streets))]),
			Date:             completedAt.Format("2006-01-02"),
			Status:           models.StatusCompleted,
			CreatedAt:        acceptedAt.Add(-time.Duration(1+rng.Intn(48)) * time.Hour),
			ProviderID:       demoProviderID,
			ProviderName:     name,
			AcceptedAt:       &acceptedAt,
			StartedAt:        &startedAt,
			CompletedAt:      &completedAt,
			PaymentAmount:    &amount,
			PaymentMethod:    methods[rng.Intn(len(methods))],
			PaymentTimestamp: &completedAt,
		}
		id, err := stores.Requests.Create(ctx, req)
		if err != nil {
			log.Fatalf("Failed to insert completed request: %v", err)
		}

		if rng.Intn(3) == 0 {
			continue
		}
		fb := models.ProviderFeedbackRecord{
			ID:                uuid.New().String(),
			RequestID:         id,
			ProviderID:        demoProviderID,
			UserID:            uuid.New().String(),
			ProviderName:      name,
			ServiceUsed:       req.ServiceType,
			WorkQuality:       models.MinWorkQuality + rng.Intn(models.MaxWorkQuality),
			ExperienceRating:  experiences[rng.Intn(len(experiences))],
			ProviderOnTime:    rng.Intn(6) != 0,
			Recommended:       rng.Intn(4) != 0,
			IssueResolved:     rng.Intn(5) != 0,
			ServiceCompletion: "completed",
			Timestamp:         completedAt.Add(time.Duration(1+rng.Intn(24)) * time.Hour),
		}
		if _, err := stores.Feedback.Create(ctx, fb); err != nil {
			log.Fatalf("Failed to insert feedback: %v", err)
		}
	}

	token, err := utils.GenerateToken(demoProviderID, demoName, 30*24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to sign demo token: %v", err)
	}

	fmt.Printf("Seeded %d pending and %d completed requests into %s.\n", pendingCount, historyCount, stores.Driver)
	fmt.Printf("Demo provider token:\n%s\n", token)
}
