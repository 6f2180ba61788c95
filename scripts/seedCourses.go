package main

import (
	"log"
	"time"

	"gaduka/config"
	"gaduka/database"
	courseModels "gaduka/models/course"
)

// Seeds the platform-owned starter courses. Platform courses have no creator
// and are catalog-visible without moderation; status approved keeps the
// listings uniform.
func main() {
	config.LoadConfig()
	database.ConnectDb()
	db := database.Database.Db

	var category courseModels.CourseCategory
	db.Where(courseModels.CourseCategory{Name: "Программирование"}).
		FirstOrCreate(&category, courseModels.CourseCategory{
			Name:        "Программирование",
			Description: "Курсы по языкам программирования и разработке",
		})

	courses := []courseModels.Course{
		{
			Title:         "Python с нуля",
			Description:   "Базовый курс по Python: синтаксис, типы данных, функции, работа с файлами.",
			Price:         0,
			CategoryID:    &category.ID,
			Level:         "Начальный",
			DurationWeeks: 6,
			HasPractice:   true,
			Status:        courseModels.StatusApproved,
			IsActive:      true,
		},
		{
			Title:         "Django для веб-разработки",
			Description:   "Создание веб-приложений на Django: модели, представления, шаблоны, ORM.",
			Price:         2900,
			CategoryID:    &category.ID,
			Level:         "Средний",
			DurationWeeks: 8,
			HasPractice:   true,
			Status:        courseModels.StatusApproved,
			IsActive:      true,
		},
	}

	now := time.Now()
	for i := range courses {
		course := &courses[i]
		course.ApprovedAt = &now

		var existing courseModels.Course
		if err := db.Where("title = ? AND creator_id IS NULL", course.Title).First(&existing).Error; err == nil {
			log.Printf("Course already seeded: %s", course.Title)
			continue
		}
		if err := db.Create(course).Error; err != nil {
			log.Fatalf("Failed to seed course %s: %v", course.Title, err)
		}

		cert := courseModels.Certificate{
			CourseID:    course.ID,
			Title:       "Сертификат: " + course.Title,
			Description: "Выдается за полное прохождение курса.",
		}
		if err := db.Create(&cert).Error; err != nil {
			log.Fatalf("Failed to seed certificate for %s: %v", course.Title, err)
		}

		log.Printf("Seeded course: %s", course.Title)
	}

	log.Println("Seeding completed.")
}
