package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/kintai-cloud/kintai-backend-go/internal/config"
	appHTTP "github.com/kintai-cloud/kintai-backend-go/internal/handler/http"
	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/database"
	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/jwt"
	"github.com/kintai-cloud/kintai-backend-go/internal/repository/postgresql"
	attendanceService "github.com/kintai-cloud/kintai-backend-go/internal/service/attendance"
	holidayService "github.com/kintai-cloud/kintai-backend-go/internal/service/holiday"
	policyService "github.com/kintai-cloud/kintai-backend-go/internal/service/policy"
	staffService "github.com/kintai-cloud/kintai-backend-go/internal/service/staff"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), int32(cfg.Database.MaxConns))
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if err := db.Migrate(context.Background(), migrationsDir); err != nil {
		log.Fatal("Failed to apply migrations: ", err)
	}

	recordRepo := postgresql.NewRecordRepository(db)
	staffRepo := postgresql.NewStaffRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	policyRepo := postgresql.NewPolicyRepository(db)

	verifier := jwt.NewVerifier(cfg.Auth.JWTSecret)

	recordService := attendanceService.NewRecordService(db, recordRepo, staffRepo, holidayRepo, policyRepo)
	staffSvc := staffService.NewService(staffRepo)
	holidaySvc := holidayService.NewService(holidayRepo)
	policySvc := policyService.NewService(policyRepo)

	router := appHTTP.NewRouter(
		cfg,
		verifier,
		appHTTP.NewAttendanceHandler(recordService),
		appHTTP.NewStaffHandler(staffSvc),
		appHTTP.NewHolidayHandler(holidaySvc),
		appHTTP.NewPolicyHandler(policySvc),
	)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Println("Listening on", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal("Server stopped: ", err)
	}
}
