package database

import (
	"fmt"
	"log"
	"os"

	"gaduka/config"
	"gaduka/models"
	courseModels "gaduka/models/course"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb establishes a connection to PostgreSQL
func ConnectDb() {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		config.AppConfig.DBHost,
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBName,
		config.AppConfig.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		os.Exit(2)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	if err := RunMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	Database = DbInstance{Db: db}
}

// ForUpdate adds an exclusive row lock to the query, serializing competing
// state transitions on the same row. SQLite has no FOR UPDATE syntax; its
// single-writer transaction lock already serializes writers, so the clause is
// skipped there.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// RunMigrations performs database migrations
func RunMigrations(db *gorm.DB) error {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&courseModels.CourseCategory{},
		&courseModels.Course{},
		&courseModels.CourseSection{},
		&courseModels.Lesson{},
		&courseModels.LessonTestCase{},
		&courseModels.ControlQuestion{},
		&courseModels.ControlQuestionOption{},
		&courseModels.CourseEnrollment{},
		&courseModels.Order{},
		&courseModels.PayoutTransaction{},
		&courseModels.CourseModerationLog{},
		&courseModels.CourseProgress{},
		&courseModels.LessonCompletion{},
		&courseModels.ControlSession{},
		&courseModels.ControlAttempt{},
		&courseModels.ControlLock{},
		&courseModels.Certificate{},
		&courseModels.UserCertificate{},
	)
	if err != nil {
		return err
	}

	log.Println("Migrations completed successfully.")
	return nil
}
