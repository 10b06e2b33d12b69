package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project/backend/models"
)

func backdateSession(t *testing.T, svc *DoubtService, sessionID uint, createdAt time.Time) {
	t.Helper()
	require.NoError(t, svc.DB.Model(&models.DoubtSession{}).
		Where("id = ?", sessionID).
		Update("created_at", createdAt).Error)
}

func TestDoubtQuotaSlidingWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewDoubtService(db)
	studentID := seedStudent(t, db)
	courseID, _ := seedCourse(t, db, "W1")

	now := time.Now()
	ages := []time.Duration{6 * 24 * time.Hour, 5 * 24 * time.Hour, 24 * time.Hour}

	for i, age := range ages {
		session, err := svc.CreateRequest(DoubtRequestInput{
			StudentID: studentID,
			CourseID:  courseID,
			Topic:     "goroutine leaks",
		})
		require.NoError(t, err, "request %d within quota", i+1)
		backdateSession(t, svc, session.ID, now.Add(-age))
	}

	// 4th attempt inside the window is rejected and creates nothing.
	_, err := svc.CreateRequest(DoubtRequestInput{StudentID: studentID, CourseID: courseID, Topic: "one more"})
	assert.ErrorIs(t, err, ErrDoubtQuotaExceeded)

	var count int64
	db.Model(&models.DoubtSession{}).Count(&count)
	assert.EqualValues(t, 3, count)

	// Once the oldest request ages past 7 days, a new attempt succeeds.
	var oldest models.DoubtSession
	require.NoError(t, db.Order("created_at ASC").First(&oldest).Error)
	backdateSession(t, svc, oldest.ID, now.Add(-8*24*time.Hour))

	session, err := svc.CreateRequest(DoubtRequestInput{StudentID: studentID, CourseID: courseID, Topic: "context cancellation"})
	require.NoError(t, err)
	assert.Equal(t, models.DoubtPending, session.Status)
}

// Rejected sessions still exist, so they keep counting toward the quota.
func TestDoubtQuotaCountsRejectedSessions(t *testing.T) {
	db := newTestDB(t)
	svc := NewDoubtService(db)
	studentID := seedStudent(t, db)
	courseID, _ := seedCourse(t, db, "W1")

	var last *models.DoubtSession
	for i := 0; i < 3; i++ {
		session, err := svc.CreateRequest(DoubtRequestInput{
			StudentID: studentID,
			CourseID:  courseID,
			Topic:     "interfaces",
		})
		require.NoError(t, err)
		last = session
	}

	require.NoError(t, svc.Reject(last.ID))

	_, err := svc.CreateRequest(DoubtRequestInput{StudentID: studentID, CourseID: courseID, Topic: "generics"})
	assert.ErrorIs(t, err, ErrDoubtQuotaExceeded)
}

func TestScheduleDoubtSession(t *testing.T) {
	db := newTestDB(t)
	svc := NewDoubtService(db)
	studentID := seedStudent(t, db)
	courseID, _ := seedCourse(t, db, "W1")

	mentor := models.User{Name: "Femi", Email: "femi@example.com", PasswordHash: "x", Role: models.RoleMentor}
	require.NoError(t, db.Create(&mentor).Error)

	session, err := svc.CreateRequest(DoubtRequestInput{StudentID: studentID, CourseID: courseID, Topic: "channels"})
	require.NoError(t, err)

	when := time.Now().Add(48 * time.Hour)
	scheduled, student, err := svc.Schedule(session.ID, mentor.ID, when, "https://meet.example.com/abc")
	require.NoError(t, err)
	require.NotNil(t, student)
	assert.Equal(t, models.DoubtScheduled, scheduled.Status)
	assert.Equal(t, mentor.ID, *scheduled.MentorID)
	assert.Equal(t, "asha@example.com", student.Email)

	// A scheduled session cannot be scheduled again.
	_, _, err = svc.Schedule(session.ID, mentor.ID, when, "https://meet.example.com/other")
	assert.ErrorIs(t, err, ErrNotSchedulable)

	_, _, err = svc.Schedule(999, mentor.ID, when, "https://meet.example.com/none")
	assert.ErrorIs(t, err, ErrNotFound)
}
