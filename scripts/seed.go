package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/database"
	"github.com/zatekoja/businesstrust/backend/internal/adapters/search"
	"github.com/zatekoja/businesstrust/backend/internal/application/services"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/observability"
	"github.com/zatekoja/businesstrust/backend/pkg/config"
	"github.com/zatekoja/businesstrust/backend/pkg/password"
)

const seedPassword = "password123"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-seed", "development")

	if err := postgres.Migrate(&cfg.Database); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	ctx := context.Background()

	var searchRepo repositories.CompanySearchRepository
	if cfg.Typesense.Enabled {
		if tsClient, err := typesense.NewClient(&cfg.Typesense); err == nil {
			adapter := search.NewTypesenseAdapter(tsClient)
			if err := adapter.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to init Typesense schema")
			}
			searchRepo = adapter
		}
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE activity_events, comments, ratings, tokens, companies, users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to reset tables")
		}
	}

	userRepo := database.NewUserAdapter(pgClient)
	companyRepo := database.NewCompanyAdapter(pgClient)
	activity := services.NewActivityRecorder(database.NewEventAdapter(pgClient))
	credentials := services.NewCredentialService(userRepo, database.NewTokenAdapter(pgClient), password.NewBcryptHasher(cfg.Auth.BcryptCost), cfg.Auth.TokenTTL)
	accounts := services.NewAccountService(credentials, companyRepo, searchRepo, activity)
	aggregation := services.NewAggregationService(companyRepo, database.NewRatingAdapter(pgClient), database.NewCommentAdapter(pgClient), userRepo, searchRepo, nil, services.NewFeatureFlags(cfg.Features))
	ratings := services.NewRatingService(companyRepo, database.NewRatingAdapter(pgClient), aggregation, activity, nil)
	comments := services.NewCommentService(companyRepo, database.NewCommentAdapter(pgClient), activity, nil)

	companies := []services.CompanySignup{
		{Email: "hello@lagosbakery.example", Name: "Lagos Bakery", Category: "Food", City: "Lagos", Country: "Nigeria", Description: "Fresh bread daily"},
		{Email: "info@swiftmovers.example", Name: "Swift Movers", Category: "Logistics", City: "Abuja", Country: "Nigeria", Description: "Home and office relocation"},
		{Email: "care@brightsmile.example", Name: "Bright Smile Dental", Category: "Health", City: "Accra", Country: "Ghana", Description: "Family dentistry"},
		{Email: "team@pixelworks.example", Name: "Pixel Works", Category: "Technology", City: "Nairobi", Country: "Kenya", Description: "Web and mobile development"},
	}
	customers := []services.CustomerSignup{
		{Email: "ada@example.com", FirstName: "Ada", LastName: "Obi"},
		{Email: "kofi@example.com", FirstName: "Kofi", LastName: "Mensah"},
		{Email: "wanjiru@example.com", FirstName: "Wanjiru", LastName: "Kamau"},
	}

	var seededCompanies []*entities.Company
	for _, c := range companies {
		c.Password = seedPassword
		res, err := accounts.SignupCompany(ctx, c)
		if errors.Is(err, entities.ErrDuplicateEmail) {
			log.Info().Str("email", c.Email).Msg("Company already seeded")
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Str("email", c.Email).Msg("Failed to seed company")
		}
		seededCompanies = append(seededCompanies, res.Company)
	}

	var seededCustomers []*entities.User
	for _, c := range customers {
		c.Password = seedPassword
		res, err := accounts.SignupCustomer(ctx, c)
		if errors.Is(err, entities.ErrDuplicateEmail) {
			log.Info().Str("email", c.Email).Msg("Customer already seeded")
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Str("email", c.Email).Msg("Failed to seed customer")
		}
		seededCustomers = append(seededCustomers, res.User)
	}

	feedback := []string{
		"Great service and fast delivery",
		"Friendly staff, would recommend",
		"Slow response and poor communication",
	}
	for i, company := range seededCompanies {
		for j, customer := range seededCustomers {
			value := float64((i+j)%5 + 1)
			if _, err := ratings.SubmitRating(ctx, company.ID, customer, value); err != nil {
				log.Warn().Err(err).Str("company", company.Name).Msg("Failed to seed rating")
			}
			if _, err := comments.AddComment(ctx, company.ID, customer, feedback[(i+j)%len(feedback)]); err != nil {
				log.Warn().Err(err).Str("company", company.Name).Msg("Failed to seed comment")
			}
		}
	}

	log.Info().
		Int("companies", len(seededCompanies)).
		Int("customers", len(seededCustomers)).
		Str("password", seedPassword).
		Msg("Seeding complete")
}
