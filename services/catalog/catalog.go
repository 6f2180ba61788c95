// Package catalog maintains the course tree: sections, lessons, their
// ordering, and the visibility predicates the rest of the core relies on.
package catalog

import (
	"errors"

	"gaduka/models"
	courseModels "gaduka/models/course"
	"gaduka/services/apperr"

	"gorm.io/gorm"
)

// CatalogVisible reports whether a non-owner non-admin may see the course in
// listings: active and either approved or platform-seeded (no creator).
func CatalogVisible(c *courseModels.Course) bool {
	if c.IsDeleted || !c.IsActive {
		return false
	}
	return c.Status == courseModels.StatusApproved || c.CreatorID == nil
}

// CanView reports whether the user may open the course at all: catalog
// visibility, ownership, or administrator rights.
func CanView(user *models.User, c *courseModels.Course) bool {
	if CatalogVisible(c) {
		return true
	}
	if user == nil {
		return false
	}
	if user.IsAdministrator() {
		return true
	}
	return c.CreatorID != nil && *c.CreatorID == user.ID
}

// GetCourse loads a course or returns ErrCourseUnavailable.
func GetCourse(db *gorm.DB, courseID uint) (*courseModels.Course, error) {
	var c courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrCourseUnavailable
		}
		return nil, err
	}
	return &c, nil
}

// CreateSection appends a section to the end of the course's section list.
func CreateSection(db *gorm.DB, courseID uint, title, description string) (*courseModels.CourseSection, error) {
	var next int
	if err := db.Model(&courseModels.CourseSection{}).
		Where("course_id = ?", courseID).
		Select(`COALESCE(MAX("order"), -1) + 1`).
		Scan(&next).Error; err != nil {
		return nil, err
	}

	section := courseModels.CourseSection{
		CourseID:    courseID,
		Title:       title,
		Description: description,
		Order:       next,
	}
	if err := db.Create(&section).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

// CreateLesson appends a lesson to the course, optionally inside a section.
// Code-practice lessons must carry at least one test case.
func CreateLesson(db *gorm.DB, lesson *courseModels.Lesson) error {
	if lesson.LessonType == courseModels.LessonPractice &&
		lesson.PracticeMode == courseModels.PracticeModeCode &&
		len(lesson.TestCases) == 0 {
		return apperr.NewValidation("test_cases", "code practice lesson requires at least one test case")
	}

	if lesson.SectionID != nil {
		var section courseModels.CourseSection
		if err := db.Where("id = ? AND course_id = ?", *lesson.SectionID, lesson.CourseID).First(&section).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewValidation("section_id", "section does not belong to course")
			}
			return err
		}
	}

	// MAX+1 keeps the sort key unique after deletions leave gaps; a plain row
	// count would reuse the tail position.
	var next int
	if err := db.Model(&courseModels.Lesson{}).
		Where("course_id = ?", lesson.CourseID).
		Select(`COALESCE(MAX("order"), -1) + 1`).
		Scan(&next).Error; err != nil {
		return err
	}
	lesson.Order = next

	for i := range lesson.TestCases {
		lesson.TestCases[i].Order = i
	}

	return db.Create(lesson).Error
}

// ReorderSections rewrites section order to match the supplied list. The list
// must be a permutation of the course's current section IDs.
func ReorderSections(db *gorm.DB, courseID uint, sectionIDs []uint) error {
	var current []courseModels.CourseSection
	if err := db.Where("course_id = ?", courseID).Find(&current).Error; err != nil {
		return err
	}
	if err := checkPermutation(sectionIDs, sectionIDSet(current)); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for pos, id := range sectionIDs {
			if err := tx.Model(&courseModels.CourseSection{}).Where("id = ?", id).Update("order", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ReorderLessons rewrites lesson order within the course to match the
// supplied list.
func ReorderLessons(db *gorm.DB, courseID uint, lessonIDs []uint) error {
	var current []courseModels.Lesson
	if err := db.Where("course_id = ?", courseID).Find(&current).Error; err != nil {
		return err
	}
	existing := make(map[uint]bool, len(current))
	for _, l := range current {
		existing[l.ID] = true
	}
	if err := checkPermutation(lessonIDs, existing); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for pos, id := range lessonIDs {
			if err := tx.Model(&courseModels.Lesson{}).Where("id = ?", id).Update("order", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteSection removes a section and orphans its lessons: they stay in the
// course with section cleared.
func DeleteSection(db *gorm.DB, sectionID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var section courseModels.CourseSection
		if err := tx.First(&section, sectionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewValidation("section_id", "section not found")
			}
			return err
		}
		if err := tx.Model(&courseModels.Lesson{}).Where("section_id = ?", sectionID).Update("section_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&section).Error
	})
}

func sectionIDSet(sections []courseModels.CourseSection) map[uint]bool {
	set := make(map[uint]bool, len(sections))
	for _, s := range sections {
		set[s.ID] = true
	}
	return set
}

// checkPermutation verifies that ids is exactly the current set, each once.
func checkPermutation(ids []uint, existing map[uint]bool) error {
	if len(ids) != len(existing) {
		return apperr.NewValidation("order", "reorder list must contain every item exactly once")
	}
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !existing[id] || seen[id] {
			return apperr.NewValidation("order", "reorder list must be a permutation of the current items")
		}
		seen[id] = true
	}
	return nil
}
