package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/tandemcare/tandem-server/cmd/api"
	"github.com/tandemcare/tandem-server/cmd/models"
	"github.com/tandemcare/tandem-server/config"
	"github.com/tandemcare/tandem-server/db"
	"github.com/tandemcare/tandem-server/service/scheduling"
	"gorm.io/gorm"
)

func main() {
    log := logrus.New()
    log.SetFormatter(&logrus.JSONFormatter{})

    cfg, err := config.Load()
    if err != nil {
        log.Fatalf("Configuration error: %v", err)
    }

    if len(os.Args) > 1 {
        switch os.Args[1] {
        case "migrate":
            runMigrations(cfg, log)
            return
        case "clear-db":
            runDatabaseClear(cfg, log)
            return
        case "generate-slots":
            runGenerateSlots(cfg, log)
            return
        default:
            log.Fatalf("Unknown command: %s", os.Args[1])
        }
    }

    startServer(cfg, log)
}

func runMigrations(cfg *config.Config, log *logrus.Logger) {
	DB, err := db.NewPSQLStorage(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer closeDB(DB, log)
	log.Info("Connected to the database for migrations")

	if err := performMigrations(DB, log); err != nil {
		log.Fatalf("Migration error: %v", err)
	}
	log.Info("Migrations completed successfully")
}

func performMigrations(DB *gorm.DB, log *logrus.Logger) error {

	migrations := map[interface{}]string{
		&models.User{}:              "User",
		&models.Provider{}:          "Provider",
		&models.BookingEvent{}:      "BookingEvent",
		&models.ScheduleException{}: "ScheduleException",
		&models.TimeSlot{}:          "TimeSlot",
	}

	log.Info("Starting database migrations...")
	for model, name := range migrations {
		log.Infof("Migrating %s table...", name)
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", name, err)
		}
		log.Infof("%s migration successful", name)
	}

	log.Info("All migrations completed successfully")
	return nil
}

func buildEngine(DB *gorm.DB, cfg *config.Config, log *logrus.Logger) (*scheduling.BatchJob, *scheduling.Regenerator) {
	eventRepo := scheduling.NewGormEventRepository(DB)
	exceptionRepo := scheduling.NewGormExceptionRepository(DB)
	slotRepo := scheduling.NewGormSlotRepository(DB)
	generator := scheduling.NewGenerator(scheduling.Expander{}, log)

	job := scheduling.NewBatchJob(eventRepo, exceptionRepo, slotRepo, generator, log, scheduling.BatchConfig{
		HorizonDays:   cfg.Scheduler.HorizonDays,
		BatchSize:     cfg.Scheduler.BatchSize,
		RetentionDays: cfg.Scheduler.RetentionDays,
	})
	if cfg.ReportMailEnabled() {
		job = job.WithReportSink(scheduling.NewReportMailer(
			cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.ReportTo))
	}

	regenerator := scheduling.NewRegenerator(eventRepo, exceptionRepo, slotRepo, generator, log, cfg.Scheduler.HorizonDays)
	return job, regenerator
}

func runGenerateSlots(cfg *config.Config, log *logrus.Logger) {
	DB, err := db.NewPSQLStorage(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer closeDB(DB, log)

	job, _ := buildEngine(DB, cfg, log)
	report, err := job.Run(context.Background())
	if err != nil {
		log.Fatalf("Batch slot generation failed: %v", err)
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))
}

func startServer(cfg *config.Config, log *logrus.Logger) {
	DB, err := db.NewPSQLStorage(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer closeDB(DB, log)
	log.Info("Connected to the database")

	job, regenerator := buildEngine(DB, cfg, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := scheduling.NewDailyScheduler(cfg.Scheduler.RunHour, cfg.Scheduler.RunMinute, job, log)
	go scheduler.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	server := api.NewApiServer(":"+cfg.Server.Port, DB, log, regenerator)

	go func() {
		if err := server.Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()
	log.Infof("Server running on port %s", cfg.Server.Port)

	<-quit
	log.Info("Shutting down server...")
	scheduler.Stop()
}

func closeDB(DB *gorm.DB, log *logrus.Logger) {
	sqlDB, _ := DB.DB()
	sqlDB.Close()
	log.Info("Database connection closed")
}

func clearDatabase(DB *gorm.DB, log *logrus.Logger) error {
    tables := []interface{}{
        &models.TimeSlot{},
        &models.ScheduleException{},
        &models.BookingEvent{},
        &models.Provider{},
        &models.User{},
    }

    log.Info("Dropping tables...")

    for _, table := range tables {
        if err := DB.Migrator().DropTable(table); err != nil {
            log.Warnf("Warning dropping table %T: %v", table, err)
        } else {
            log.Infof("Table %T dropped", table)
        }
    }

    return nil
}

func runDatabaseClear(cfg *config.Config, log *logrus.Logger) {
    DB, err := db.NewPSQLStorage(cfg.Database.URL)
    if err != nil {
        log.Fatalf("Database initialization error: %v", err)
    }
    defer closeDB(DB, log)

    log.Info("Preparing to clear database...")

    var confirmation string
    fmt.Print("Are you sure you want to clear the database? (yes/no): ")
    fmt.Scanln(&confirmation)

    if confirmation != "yes" {
        log.Info("Database clearing cancelled.")
        return
    }

    if err := clearDatabase(DB, log); err != nil {
        log.Fatalf("Error clearing database: %v", err)
    }

    log.Info("Database cleared successfully")
}
