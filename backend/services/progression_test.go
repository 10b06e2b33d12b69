package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"project/backend/models"
)

func weekModel(id uint, title string, order int) models.CourseWeek {
	return models.CourseWeek{Model: gorm.Model{ID: id}, Title: title, Order: order}
}

func TestApplyLockStateEmpty(t *testing.T) {
	assert.Empty(t, ApplyLockState(nil, nil))
	assert.Empty(t, ApplyLockState([]models.CourseMonth{}, map[uint]bool{}))
}

func TestApplyLockStateFirstWeekAlwaysUnlocked(t *testing.T) {
	months := []models.CourseMonth{
		{Model: gorm.Model{ID: 1}, Title: "Month 1", Order: 1, Weeks: []models.CourseWeek{
			weekModel(1, "Week 1", 1),
			weekModel(2, "Week 2", 2),
		}},
	}

	views := ApplyLockState(months, map[uint]bool{})
	require.Len(t, views, 1)
	require.Len(t, views[0].Weeks, 2)
	assert.False(t, views[0].Weeks[0].IsLocked)
	assert.True(t, views[0].Weeks[1].IsLocked)
}

// The lock rule is local: only the immediate predecessor gates a week, so a
// completed week unlocks its successor even when an earlier week was skipped.
func TestApplyLockStateLocalPredecessorRule(t *testing.T) {
	months := []models.CourseMonth{
		{Model: gorm.Model{ID: 1}, Title: "Month 1", Order: 1, Weeks: []models.CourseWeek{
			weekModel(1, "Week 1", 1),
			weekModel(2, "Week 2", 2),
		}},
		{Model: gorm.Model{ID: 2}, Title: "Month 2", Order: 2, Weeks: []models.CourseWeek{
			weekModel(3, "Week 3", 1),
			weekModel(4, "Week 4", 2),
		}},
	}

	// Week 2 complete, week 1 skipped.
	views := ApplyLockState(months, map[uint]bool{2: true})

	flat := append(views[0].Weeks, views[1].Weeks...)
	require.Len(t, flat, 4)
	assert.False(t, flat[0].IsLocked, "week 1 is always unlocked")
	assert.True(t, flat[1].IsLocked, "week 2 gated by incomplete week 1")
	assert.False(t, flat[2].IsLocked, "week 3 unlocked by completed week 2")
	assert.True(t, flat[3].IsLocked, "week 4 gated by incomplete week 3")

	for i := 1; i < len(flat); i++ {
		assert.Equal(t, !flat[i-1].IsCompleted, flat[i].IsLocked)
	}
}

func TestSubmitProjectUnlocksNextWeek(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressionService(db)
	studentID := seedStudent(t, db)
	courseID, weekIDs := seedCourse(t, db, "W1", "W2", "W3")

	content, err := svc.GetCourseContent(studentID, courseID)
	require.NoError(t, err)
	weeks := content[0].Weeks
	require.Len(t, weeks, 3)
	assert.False(t, weeks[0].IsLocked)
	assert.True(t, weeks[1].IsLocked)
	assert.True(t, weeks[2].IsLocked)

	err = svc.SubmitProject(studentID, weekIDs[1], ProjectInput{
		GithubURL:   "https://github.com/asha/todo-api",
		Description: "REST API with auth",
	})
	require.NoError(t, err)

	content, err = svc.GetCourseContent(studentID, courseID)
	require.NoError(t, err)
	weeks = content[0].Weeks
	assert.False(t, weeks[0].IsLocked, "W1 lock state unaffected")
	assert.False(t, weeks[0].IsCompleted)
	assert.True(t, weeks[1].IsCompleted, "W2 completed by submission")
	assert.False(t, weeks[2].IsLocked, "W3 unlocked by W2 completion")
}

func TestSubmitProjectMissingWeek(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressionService(db)
	studentID := seedStudent(t, db)

	err := svc.SubmitProject(studentID, 999, ProjectInput{Description: "orphan"})
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	db.Model(&models.ProjectSubmission{}).Count(&count)
	assert.Zero(t, count, "no partial state written")
}

func TestSubmitAssignmentUpsert(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressionService(db)
	studentID := seedStudent(t, db)
	_, weekIDs := seedCourse(t, db, "W1")

	assessment := models.Assessment{WeekID: weekIDs[0], Title: "Quiz 1"}
	require.NoError(t, db.Create(&assessment).Error)

	require.NoError(t, svc.SubmitAssignment(studentID, assessment.ID, weekIDs[0], "https://docs.example.com/v1"))

	var responses []models.AssessmentResponse
	require.NoError(t, db.Find(&responses).Error)
	require.Len(t, responses, 1)
	assert.Equal(t, models.SubmissionPending, responses[0].Status)

	// Grade it, then resubmit: same row, status reopened.
	score := 80
	require.NoError(t, db.Model(&responses[0]).Updates(map[string]interface{}{
		"status": models.SubmissionGraded, "score": score,
	}).Error)

	require.NoError(t, svc.SubmitAssignment(studentID, assessment.ID, weekIDs[0], "https://docs.example.com/v2"))

	require.NoError(t, db.Find(&responses).Error)
	require.Len(t, responses, 1, "resubmission must not create a second row")
	assert.Equal(t, "https://docs.example.com/v2", responses[0].SubmissionURL)
	assert.Equal(t, models.SubmissionPending, responses[0].Status, "resubmission reopens grading")
}

func TestSubmitAssignmentMissingAssessment(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressionService(db)
	studentID := seedStudent(t, db)
	_, weekIDs := seedCourse(t, db, "W1")

	err := svc.SubmitAssignment(studentID, 999, weekIDs[0], "https://example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	db.Model(&models.StudentProgress{}).Count(&count)
	assert.Zero(t, count, "completion must not occur without a submission")
}

func TestWeekCompletionIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressionService(db)
	studentID := seedStudent(t, db)
	_, weekIDs := seedCourse(t, db, "W1")

	require.NoError(t, svc.SubmitProject(studentID, weekIDs[0], ProjectInput{Description: "first"}))

	var first models.StudentProgress
	require.NoError(t, db.Where("student_id = ? AND week_id = ?", studentID, weekIDs[0]).First(&first).Error)
	require.True(t, first.IsCompleted)
	require.NotNil(t, first.CompletedAt)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, svc.SubmitProject(studentID, weekIDs[0], ProjectInput{Description: "second"}))

	var rows []models.StudentProgress
	require.NoError(t, db.Where("student_id = ? AND week_id = ?", studentID, weekIDs[0]).Find(&rows).Error)
	require.Len(t, rows, 1, "exactly one progress row per (student, week)")
	assert.True(t, rows[0].CompletedAt.Equal(*first.CompletedAt), "completedAt not refreshed on re-completion")
}
