// Package notify delivers short user-facing messages about cart changes.
package notify

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
)

type Notification struct {
	ID          string    `json:"id"`
	Level       Level     `json:"level"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// New fills in the id and creation time.
func New(level Level, title, description string) Notification {
	return Notification{
		ID:          uuid.NewString(),
		Level:       level,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}

// Notifier must not block the caller.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a plain function.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Nop drops everything.
var Nop Notifier = NotifierFunc(func(Notification) {})

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(n Notification) {
	l.log.WithFields(logrus.Fields{
		"notification": n.ID,
		"kind":         n.Level,
		"description":  n.Description,
	}).Info(n.Title)
}

// Multi fans out to every notifier in order.
func Multi(ns ...Notifier) Notifier {
	return NotifierFunc(func(n Notification) {
		for _, x := range ns {
			x.Notify(n)
		}
	})
}
