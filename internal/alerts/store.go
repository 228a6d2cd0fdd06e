package alerts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/secretary-dev/secretary/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("alert not found")
	ErrInvalidTransition = errors.New("invalid alert state transition")
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Store is the persistence boundary for alerts. Every query is scoped to one
// owner and every mutation is a single statement, so a failed commit never
// leaves partially-applied state visible.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(alert *models.Alert) error {
	if err := s.db.Create(alert).Error; err != nil {
		return fmt.Errorf("creating alert: %w", err)
	}
	return nil
}

func (s *Store) GetByID(userID, alertID uint) (*models.Alert, error) {
	var alert models.Alert

	err := s.db.Where("id = ? AND user_id = ?", alertID, userID).First(&alert).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &alert, nil
}

type ListFilter struct {
	Type     *models.AlertType
	Priority *models.AlertPriority
	Status   *models.AlertStatus
	Limit    int
	Offset   int
}

// priorityOrder builds a CASE expression ranking rows urgent-first, using the
// same ranking the model exposes.
func priorityOrder() string {
	var b strings.Builder

	b.WriteString("CASE priority")

	for _, p := range []models.AlertPriority{
		models.PriorityLow,
		models.PriorityNormal,
		models.PriorityHigh,
		models.PriorityUrgent,
	} {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", p, p.Rank())
	}

	b.WriteString(" ELSE -1 END DESC")

	return b.String()
}

func (s *Store) List(userID uint, filter ListFilter) ([]models.Alert, error) {
	limit := filter.Limit

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	query := s.db.Where("user_id = ?", userID)

	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}

	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var alerts []models.Alert

	err := query.Order("created_at DESC").
		Offset(filter.Offset).
		Limit(limit).
		Find(&alerts).Error

	return alerts, err
}

// Unread returns alerts the owner has not yet acknowledged: pending and sent.
// Urgent alerts come first so the client surfaces them before routine ones.
func (s *Store) Unread(userID uint) ([]models.Alert, error) {
	var alerts []models.Alert

	err := s.db.Where("user_id = ? AND status IN ?", userID,
		[]models.AlertStatus{models.StatusPending, models.StatusSent}).
		Order(priorityOrder()).
		Order("created_at DESC").
		Find(&alerts).Error

	return alerts, err
}

// DuePending returns pending alerts eligible for the sweep across all users.
// A NULL scheduled_for means the alert was due at creation.
func (s *Store) DuePending(now time.Time) ([]models.Alert, error) {
	var alerts []models.Alert

	err := s.db.Where("status = ? AND (scheduled_for IS NULL OR scheduled_for <= ?)",
		models.StatusPending, now).
		Find(&alerts).Error

	return alerts, err
}

// HasBriefingSince reports whether a morning-briefing alert was created for the
// user at or after the given time. Guards the daily briefing task against
// producing duplicates.
func (s *Store) HasBriefingSince(userID uint, since time.Time) (bool, error) {
	var count int64

	err := s.db.Model(&models.Alert{}).
		Where("user_id = ? AND type = ? AND created_at >= ?",
			userID, models.AlertTypeMorningBriefing, since).
		Count(&count).Error

	return count > 0, err
}

// MarkSent transitions pending -> sent and stamps sent_at. The transition is
// idempotent: a sent alert keeps its original timestamp, and read/dismissed
// alerts are never touched.
func (s *Store) MarkSent(alert *models.Alert, at time.Time) error {
	result := s.db.Model(&models.Alert{}).
		Where("id = ? AND status = ?", alert.ID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":  models.StatusSent,
			"sent_at": at,
		})

	if result.Error != nil {
		return fmt.Errorf("marking alert %d sent: %w", alert.ID, result.Error)
	}

	if result.RowsAffected > 0 {
		alert.Status = models.StatusSent
		alert.SentAt = &at
	}

	return nil
}

// MarkRead transitions pending|sent -> read for one alert owned by the user.
func (s *Store) MarkRead(userID, alertID uint, at time.Time) error {
	return s.transition(userID, alertID, map[string]interface{}{
		"status":  models.StatusRead,
		"read_at": at,
	})
}

// Dismiss transitions pending|sent -> dismissed for one alert owned by the user.
func (s *Store) Dismiss(userID, alertID uint, at time.Time) error {
	return s.transition(userID, alertID, map[string]interface{}{
		"status":       models.StatusDismissed,
		"dismissed_at": at,
	})
}

func (s *Store) transition(userID, alertID uint, updates map[string]interface{}) error {
	result := s.db.Model(&models.Alert{}).
		Where("id = ? AND user_id = ? AND status IN ?", alertID, userID,
			[]models.AlertStatus{models.StatusPending, models.StatusSent}).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		return nil
	}

	// Distinguish a missing alert from one already in a terminal state.
	var count int64

	if err := s.db.Model(&models.Alert{}).
		Where("id = ? AND user_id = ?", alertID, userID).
		Count(&count).Error; err != nil {
		return err
	}

	if count == 0 {
		return ErrNotFound
	}

	return ErrInvalidTransition
}

// MarkAllRead transitions every pending or sent alert of the user to read and
// returns the number of rows mutated. Terminal alerts are left untouched.
func (s *Store) MarkAllRead(userID uint, at time.Time) (int64, error) {
	result := s.db.Model(&models.Alert{}).
		Where("user_id = ? AND status IN ?", userID,
			[]models.AlertStatus{models.StatusPending, models.StatusSent}).
		Updates(map[string]interface{}{
			"status":  models.StatusRead,
			"read_at": at,
		})

	return result.RowsAffected, result.Error
}

type Stats struct {
	Total   int64 `json:"total_alerts"`
	Unread  int64 `json:"unread_alerts"`
	Urgent  int64 `json:"urgent_alerts"`
	Email   int64 `json:"email_alerts"`
	Meeting int64 `json:"meeting_alerts"`
}

func (s *Store) Stats(userID uint) (Stats, error) {
	var stats Stats

	unread := []models.AlertStatus{models.StatusPending, models.StatusSent}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.Total, s.db.Model(&models.Alert{}).
			Where("user_id = ?", userID)},
		{&stats.Unread, s.db.Model(&models.Alert{}).
			Where("user_id = ? AND status IN ?", userID, unread)},
		{&stats.Urgent, s.db.Model(&models.Alert{}).
			Where("user_id = ? AND priority = ? AND status IN ?", userID, models.PriorityUrgent, unread)},
		{&stats.Email, s.db.Model(&models.Alert{}).
			Where("user_id = ? AND type IN ?", userID,
				[]models.AlertType{models.AlertTypeEmailVIP, models.AlertTypeEmailEmergency})},
		{&stats.Meeting, s.db.Model(&models.Alert{}).
			Where("user_id = ? AND type = ?", userID, models.AlertTypeMeetingReminder)},
	}

	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return Stats{}, err
		}
	}

	return stats, nil
}
