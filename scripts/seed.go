package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/adapters/database"
	"github.com/zatekoja/clinic-site/internal/adapters/providers/holidays"
	"github.com/zatekoja/clinic-site/internal/adapters/search"
	"github.com/zatekoja/clinic-site/internal/application/services"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
	"github.com/zatekoja/clinic-site/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/clinic-site/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/clinic-site/internal/infrastructure/observability"
	"github.com/zatekoja/clinic-site/pkg/config"
	"github.com/zatekoja/clinic-site/pkg/dates"
)

type seedBlock struct {
	page  string
	input services.NewBlockInput
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("clinic-seed", cfg.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	ctx := context.Background()

	var searchIndex providers.SearchIndex
	if cfg.Typesense.URL != "" {
		if tsClient, err := typesense.NewClient(&cfg.Typesense); err == nil {
			adapter := search.NewTypesenseAdapter(tsClient)
			if err := adapter.EnsureCollection(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to init Typesense schema")
			}
			searchIndex = adapter
		}
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				content_blocks,
				doctors,
				holidays,
				appointments,
				admin_users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to reset tables")
		}
	}

	contentService := services.NewContentService(database.NewContentBlockAdapter(pgClient), nil, searchIndex, nil)
	doctorService := services.NewDoctorService(database.NewDoctorAdapter(pgClient), nil, searchIndex, nil)
	holidayService := services.NewHolidayService(
		database.NewHolidayAdapter(pgClient),
		holidays.NewHolidayProvider(holidays.ProviderConfig{
			APIURL:              cfg.Holidays.APIURL,
			CountryCode:         cfg.Holidays.CountryCode,
			AllowStaticFallback: true,
		}),
		nil,
		cfg.Site.Location(),
	)
	authService := services.NewAuthService(database.NewAdminUserAdapter(pgClient), nil, services.AuthConfig{
		JWTSecret:     cfg.Auth.JWTSecret,
		TokenTTL:      cfg.Auth.TokenTTL,
		ResetTokenTTL: cfg.Auth.ResetTokenTTL,
	})

	// 1. Content blocks
	blocks := []seedBlock{
		{page: "home", input: services.NewBlockInput{Section: "hero", Title: "Care that sees you clearly", Content: "Eye care and women's health under one roof."}},
		{page: "home", input: services.NewBlockInput{Section: "about", Title: "About the clinic", Content: "Two specialist departments with over twenty years of practice."}},
		{page: "gallery", input: services.NewBlockInput{Section: entities.SectionGallery, Title: "Reception", ImageURL: "/media/reception.jpg"}},
		{page: "eyecare", input: services.NewBlockInput{Section: "services", Specialty: "eyecare", Title: "Cataract surgery", Content: "Day-care phaco surgery with foldable lenses."}},
		{page: "eyecare", input: services.NewBlockInput{Section: "services", Specialty: "eyecare", Title: "Glaucoma clinic", Content: "Pressure checks, field testing and long-term follow up."}},
		{page: "eyecare-conditions", input: services.NewBlockInput{Section: "conditions", Specialty: "eyecare", Title: "Diabetic retinopathy", Content: "Annual screening is advised for every diabetic patient."}},
		{page: "gynecology", input: services.NewBlockInput{Section: "services", Specialty: "gynecology", Title: "Antenatal care", Content: "Scheduled visits, scans and counselling through pregnancy."}},
		{page: "gynecology-health", input: services.NewBlockInput{Section: "conditions", Specialty: "gynecology", Title: "PCOS", Content: "Diagnosis and lifestyle-first management of polycystic ovaries."}},
		{page: entities.GlobalPage, input: services.NewBlockInput{Section: "contact", Title: "Visit us", Content: "Open Monday to Saturday, 9am to 6pm."}},
	}
	for _, b := range blocks {
		if _, err := contentService.AddBlock(ctx, b.page, b.input); err != nil {
			log.Error().Err(err).Str("page", b.page).Str("title", b.input.Title).Msg("Failed to create block")
		}
	}

	// 2. Doctors
	doctors := []*entities.Doctor{
		{Specialty: entities.SpecialtyEyecare, Name: "Dr. Mehta", Title: "Senior Ophthalmologist", Bio: "Cataract and refractive surgeon.", Qualifications: []string{"MBBS", "MS (Ophthalmology)"}},
		{Specialty: entities.SpecialtyEyecare, Name: "Dr. Rao", Title: "Glaucoma Specialist", Bio: "Runs the glaucoma clinic.", Qualifications: []string{"MBBS", "DNB"}},
		{Specialty: entities.SpecialtyGynecology, Name: "Dr. Iyer", Title: "Consultant Gynecologist", Bio: "High-risk pregnancy and laparoscopy.", Qualifications: []string{"MBBS", "MD (OBG)"}},
	}
	for _, d := range doctors {
		if _, err := doctorService.Create(ctx, d); err != nil {
			log.Error().Err(err).Str("doctor", d.Name).Msg("Failed to create doctor")
		}
	}

	// 3. Holidays for the current year
	year := time.Now().In(cfg.Site.Location()).Year()
	inserted, err := holidayService.SyncHolidays(ctx, year)
	if err != nil {
		log.Error().Err(err).Int("year", year).Msg("Failed to sync public holidays")
	}
	leave := &entities.Holiday{
		Date:   dates.New(year, time.December, 31),
		Name:   "Annual leave",
		Type:   entities.HolidayTypeDoctor,
		Doctor: "Dr. Mehta",
	}
	if _, err := holidayService.Create(ctx, leave); err != nil {
		log.Error().Err(err).Msg("Failed to create doctor leave")
	}

	// 4. Admin user
	if cfg.Auth.BootstrapEmail != "" {
		if err := authService.EnsureBootstrapAdmin(ctx, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword); err != nil {
			log.Error().Err(err).Msg("Failed to create admin user")
		}
	}

	log.Info().
		Int("blocks", len(blocks)).
		Int("doctors", len(doctors)).
		Int("holidays", inserted).
		Msg("Seeding completed")
}
