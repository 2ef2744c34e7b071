package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tasknest-dev/tasknest/db"
	"github.com/tasknest-dev/tasknest/internal/mailer"
	"github.com/tasknest-dev/tasknest/internal/models"
	"github.com/tasknest-dev/tasknest/internal/types"
	"gorm.io/gorm"
)

const DefaultInterval = 5 * time.Minute

// Notifier periodically emails owners about tasks created since the last
// tick. It runs independently of the HTTP server; a failed tick is logged
// and never stops the schedule.
type Notifier struct {
	mailer   mailer.Mailer
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

// newTaskRow is one joined result: a fresh task plus its owner's address.
type newTaskRow struct {
	ID          uint
	Title       string
	Description string
	CreatedAt   time.Time
	UserID      uint
	Email       string
	Username    string
}

func New(m mailer.Mailer, interval time.Duration) *Notifier {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Notifier{
		mailer:   m,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the ticker goroutine. The window of each tick begins
// where the previous one started, so timer jitter can neither skip nor
// double-count rows.
func (n *Notifier) Start() {
	log.Printf("Starting notifier with %v interval", n.interval)

	go func() {
		ticker := time.NewTicker(n.interval)
		defer ticker.Stop()

		since := time.Now()

		for {
			select {
			case <-n.ctx.Done():
				return
			case <-ticker.C:
				tickStart := time.Now()
				n.Notify(since)
				since = tickStart
			}
		}
	}()
}

func (n *Notifier) Stop() {
	log.Println("Stopping notifier...")
	n.cancel()
}

// Notify runs a single tick: query tasks created after since, group them
// per owner and send one digest email per owner. Every failure is caught
// here; there is no retry beyond the next tick.
func (n *Notifier) Notify(since time.Time) {
	var rows []newTaskRow

	err := db.DB.Model(&models.Task{}).
		Select("tasks.id, tasks.title, tasks.description, tasks.created_at, tasks.user_id, users.email, users.username").
		Joins("JOIN users ON users.id = tasks.user_id").
		Where("tasks.created_at > ?", since).
		Order("tasks.created_at ASC").
		Scan(&rows).Error

	if err != nil {
		log.Printf("Notifier query failed: %v", err)
		return
	}

	if len(rows) == 0 {
		log.Printf("No new tasks since %s", since.Format(time.RFC3339))
		return
	}

	// Group per owner, keeping first-seen order.
	byOwner := make(map[uint][]newTaskRow)
	var owners []uint

	for _, row := range rows {
		if _, seen := byOwner[row.UserID]; !seen {
			owners = append(owners, row.UserID)
		}
		byOwner[row.UserID] = append(byOwner[row.UserID], row)
	}

	for _, ownerID := range owners {
		ownerRows := byOwner[ownerID]

		active, subjectPrefix := n.ownerPreference(ownerID)

		if !active {
			log.Printf("Email notifications disabled for user %d, skipping %d tasks", ownerID, len(ownerRows))
			continue
		}

		subject := "New tasks added"
		if subjectPrefix != "" {
			subject = subjectPrefix + " " + subject
		}

		to := ownerRows[0].Email
		body := digestBody(ownerRows)

		if err := n.mailer.Send(to, subject, body); err != nil {
			log.Printf("Failed to notify user %d: %v", ownerID, err)
			continue
		}

		log.Printf("Notified user %d about %d new tasks", ownerID, len(ownerRows))
	}
}

// ownerPreference reports whether the owner wants email and any configured
// subject prefix. A missing preference row means the defaults apply.
func (n *Notifier) ownerPreference(userID uint) (bool, string) {
	var preference models.NotificationPreference

	err := db.DB.Where("user_id = ? AND channel = ?", userID, types.EmailChannel).First(&preference).Error

	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to load notification preference for user %d: %v", userID, err)
		}
		return true, ""
	}

	if !preference.IsActive {
		return false, ""
	}

	if len(preference.Config) == 0 {
		return true, ""
	}

	var config struct {
		SubjectPrefix string `json:"subject_prefix"`
	}

	if err := json.Unmarshal(preference.Config, &config); err != nil {
		log.Printf("Invalid notification config for user %d: %v", userID, err)
		return true, ""
	}

	return true, config.SubjectPrefix
}

func digestBody(rows []newTaskRow) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s,\n\nYou added %d new task(s):\n\n", rows[0].Username, len(rows))

	for _, row := range rows {
		fmt.Fprintf(&b, "- %s", row.Title)
		if row.Description != "" {
			fmt.Fprintf(&b, ": %s", row.Description)
		}
		fmt.Fprintf(&b, " (created %s)\n", row.CreatedAt.Format("2006-01-02 15:04"))
	}

	b.WriteString("\nHappy tasking!\n")

	return b.String()
}

// Global notifier instance
var globalNotifier *Notifier

// Initialize creates and starts the global notifier.
func Initialize(m mailer.Mailer, interval time.Duration) {
	globalNotifier = New(m, interval)
	globalNotifier.Start()
}

// Shutdown stops the global notifier.
func Shutdown() {
	if globalNotifier != nil {
		globalNotifier.Stop()
	}
}
