package models

import (
	"sort"
	"time"
)

// QueueStatus represents the status of a same-day queue entry. It is a
// separate vocabulary from AppointmentStatus: the queue tracks the patient's
// flow through the waiting room, the appointment tracks the booking itself.
type QueueStatus string

const (
	QueueWaiting    QueueStatus = "waiting"
	QueueInProgress QueueStatus = "in_progress"
	QueueCompleted  QueueStatus = "completed"
	QueueCancelled  QueueStatus = "cancelled"
)

// QueuePriority represents the priority band of a queue entry.
type QueuePriority string

const (
	PriorityLow    QueuePriority = "low"
	PriorityNormal QueuePriority = "normal"
	PriorityHigh   QueuePriority = "high"
)

// queueTransitions lists the statuses reachable from each queue status.
var queueTransitions = map[QueueStatus][]QueueStatus{
	QueueWaiting:    {QueueInProgress, QueueCompleted, QueueCancelled},
	QueueInProgress: {QueueWaiting, QueueCompleted, QueueCancelled},
	QueueCompleted:  {},
	QueueCancelled:  {},
}

// CanTransitionQueue reports whether a queue entry may move from one status to
// another. in_progress -> waiting is legal: calling the next patient demotes
// the entry currently being seen.
func CanTransitionQueue(from, to QueueStatus) bool {
	for _, allowed := range queueTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted out of s.
func (s QueueStatus) IsTerminal() bool {
	return len(queueTransitions[s]) == 0
}

// ValidQueuePriority reports whether p is a known priority band.
func ValidQueuePriority(p QueuePriority) bool {
	return p == PriorityLow || p == PriorityNormal || p == PriorityHigh
}

// priorityRank orders priority bands for next-patient selection.
// Higher rank wins.
var priorityRank = map[QueuePriority]int{
	PriorityLow:    0,
	PriorityNormal: 1,
	PriorityHigh:   2,
}

// QueueEntry represents a same-day, per-doctor waiting-list record.
type QueueEntry struct {
	BaseModel
	DoctorID             string        `gorm:"size:36;index" json:"doctorId"`
	PatientID            string        `gorm:"size:36;index" json:"patientId"`
	AppointmentID        *string       `gorm:"size:36;index" json:"appointmentId,omitempty"`
	QueueNumber          int           `json:"queueNumber"`
	Status               QueueStatus   `gorm:"size:20;default:'waiting'" json:"status"`
	Priority             QueuePriority `gorm:"size:10;default:'normal'" json:"priority"`
	CheckInTime          time.Time     `json:"checkInTime"`
	EstimatedWaitMinutes int           `json:"estimatedWaitMinutes"`

	// Relations
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
}

// Before compares two queue entries for next-patient selection: a higher
// priority band always wins; within a band the earlier check-in wins; the
// queue number is the final tie-break.
func (e *QueueEntry) Before(other *QueueEntry) bool {
	if priorityRank[e.Priority] != priorityRank[other.Priority] {
		return priorityRank[e.Priority] > priorityRank[other.Priority]
	}
	if !e.CheckInTime.Equal(other.CheckInTime) {
		return e.CheckInTime.Before(other.CheckInTime)
	}
	return e.QueueNumber < other.QueueNumber
}

// NextWaiting selects the entry that should be called next from a doctor's
// queue, or nil if no waiting entries exist.
func NextWaiting(entries []QueueEntry) *QueueEntry {
	var next *QueueEntry
	for i := range entries {
		if entries[i].Status != QueueWaiting {
			continue
		}
		if next == nil || entries[i].Before(next) {
			next = &entries[i]
		}
	}
	return next
}

// SortQueue orders entries in call order: priority band first, then first-in.
// Terminal entries sort after active ones.
func SortQueue(entries []QueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		aDone := entries[i].Status.IsTerminal()
		bDone := entries[j].Status.IsTerminal()
		if aDone != bDone {
			return !aDone
		}
		return entries[i].Before(&entries[j])
	})
}
