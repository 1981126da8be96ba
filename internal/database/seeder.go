// server/internal/database/seeder.go
package database

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"food-rescue-api-server/internal/auth"
	"food-rescue-api-server/internal/models"
	"food-rescue-api-server/internal/store"
)

// SeedDemoAccounts creates one account per role for local development and
// demos. Existing accounts are left untouched, so the seeder is safe to run
// on every startup.
func SeedDemoAccounts(ctx context.Context, st store.UserStore, log *zap.Logger) error {
	demo := []models.User{
		{
			Email:            "donor@example.com",
			FullName:         "Demo Donor",
			Phone:            "9000000001",
			Role:             models.RoleDonor,
			OrganizationName: "Demo Restaurant",
			OrganizationType: "restaurant",
			Address:          "12 MG Road",
			City:             "Bengaluru",
			State:            "Karnataka",
			Pincode:          "560001",
		},
		{
			Email:              "ngo@example.com",
			FullName:           "Demo NGO",
			Phone:              "9000000002",
			Role:               models.RoleNGO,
			OrganizationName:   "Demo Food Bank",
			OrganizationType:   "food_bank",
			RegistrationNumber: "NGO-0001",
			DailyCapacity:      200,
			Address:            "45 Residency Road",
			City:               "Bengaluru",
			State:              "Karnataka",
			Pincode:            "560025",
		},
		{
			Email:       "volunteer@example.com",
			FullName:    "Demo Volunteer",
			Phone:       "9000000003",
			Role:        models.RoleVolunteer,
			Address:     "7 Brigade Road",
			City:        "Bengaluru",
			State:       "Karnataka",
			Pincode:     "560025",
			IsAvailable: true,
			VolunteerProfile: &models.VolunteerProfile{
				VehicleType: "bike",
				MaxWeight:   25,
			},
		},
	}

	hashed, err := auth.HashPassword("demopassword")
	if err != nil {
		return err
	}

	for i := range demo {
		user := demo[i]
		if _, err := st.FindUserByEmail(ctx, user.Email); err == nil {
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		user.Password = hashed
		if err := st.InsertUser(ctx, &user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				continue
			}
			return err
		}
		log.Info("seeded demo account", zap.String("email", user.Email), zap.String("role", user.Role))
	}
	return nil
}
