package dto

import (
	"time"

	"github.com/codequest-labs/codequest-api/internal/models"
)

// LessonResponse is the public projection of a lesson.
type LessonResponse struct {
	ID       uint   `json:"id"`
	CourseID uint   `json:"course_id"`
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
	Position int    `json:"position"`
	XPReward int    `json:"xp_reward"`
}

// CourseResponse is the public projection of a course with its lessons.
type CourseResponse struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Slug        string           `json:"slug"`
	Language    string           `json:"language"`
	Difficulty  string           `json:"difficulty"`
	CreatedAt   time.Time        `json:"created_at"`
	Lessons     []LessonResponse `json:"lessons"`
}

// NewLessonResponse converts a lesson model into its response projection.
func NewLessonResponse(lesson models.Lesson) LessonResponse {
	return LessonResponse{
		ID:       lesson.ID,
		CourseID: lesson.CourseID,
		Title:    lesson.Title,
		Content:  lesson.Content,
		Position: lesson.Position,
		XPReward: lesson.XPReward,
	}
}

// NewCourseResponse converts a course model into its response projection.
func NewCourseResponse(course models.Course) CourseResponse {
	lessons := make([]LessonResponse, 0, len(course.Lessons))
	for _, lesson := range course.Lessons {
		lessons = append(lessons, NewLessonResponse(lesson))
	}

	return CourseResponse{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Slug:        course.Slug,
		Language:    course.Language,
		Difficulty:  course.Difficulty,
		CreatedAt:   course.CreatedAt,
		Lessons:     lessons,
	}
}

// NewCourseResponseSlice converts a slice of course models.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}
	return responses
}
