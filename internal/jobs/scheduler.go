package jobs

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"thoughtcap/internal/models"
	"thoughtcap/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
)

const (
	decayCronExpression = "0 2 * * *"
	// The picks job fires every minute and matches each user's
	// configured generation time, so users can pick their own hour.
	picksCronExpression = "* * * * *"
)

// Scheduler owns the two recurring jobs: the morning picks generation
// and the nightly decay sweep. All times are UTC.
type Scheduler struct {
	scheduler        gocron.Scheduler
	itemService      *services.ItemService
	picksService     *services.PicksService
	decayService     *services.DecayService
	defaultPicksTime string

	mu      sync.Mutex
	started bool
}

// NewScheduler creates the scheduler and registers both jobs.
// picksTime is the default daily picks generation time in HH:MM (24h)
// format, used for users without a daily_picks_time setting.
func NewScheduler(
	itemService *services.ItemService,
	picksService *services.PicksService,
	decayService *services.DecayService,
	picksTime string,
) (*Scheduler, error) {
	if _, err := timeToCron(picksTime); err != nil {
		return nil, fmt.Errorf("invalid daily picks time %q: %w", picksTime, err)
	}

	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &Scheduler{
		scheduler:        sched,
		itemService:      itemService,
		picksService:     picksService,
		decayService:     decayService,
		defaultPicksTime: picksTime,
	}

	if _, err := sched.NewJob(
		gocron.CronJob(picksCronExpression, false),
		gocron.NewTask(s.runDailyPicks),
		gocron.WithName("daily_picks"),
	); err != nil {
		return nil, fmt.Errorf("failed to register picks job: %w", err)
	}

	if _, err := sched.NewJob(
		gocron.CronJob(decayCronExpression, false),
		gocron.NewTask(s.runDecay),
		gocron.WithName("decay"),
	); err != nil {
		return nil, fmt.Errorf("failed to register decay job: %w", err)
	}

	log.Printf("📅 [SCHEDULER] Jobs registered: daily_picks (per-user time, default %s UTC), decay (%s UTC)", picksTime, decayCronExpression)
	return s, nil
}

// Start begins executing the registered jobs.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.scheduler.Start()
	log.Println("🚀 [SCHEDULER] Started")
}

// Stop shuts the scheduler down, waiting for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	if err := s.scheduler.Shutdown(); err != nil {
		log.Printf("⚠️ [SCHEDULER] Shutdown error: %v", err)
	}
	log.Println("🛑 [SCHEDULER] Stopped")
}

// RunDecayNow triggers a decay sweep outside the schedule.
func (s *Scheduler) RunDecayNow(ctx context.Context) (int, error) {
	return s.decayService.Run(ctx, time.Now().UTC())
}

// runDailyPicks generates today's picks for users whose configured
// generation time matches the current minute, so the morning
// notification reads from a warm store. Generation is idempotent per
// day, so a rerun within the same minute is a cheap cache hit.
func (s *Scheduler) runDailyPicks() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	now := time.Now().UTC()
	userIDs, err := s.itemService.ActiveUserIDs(ctx)
	if err != nil {
		log.Printf("❌ [DAILY-PICKS] Failed to list active users: %v", err)
		return
	}

	due, generated := 0, 0
	for _, userID := range userIDs {
		configured := s.itemService.GetConfig(ctx, userID, models.ConfigKeyDailyPicksTime, s.defaultPicksTime)
		if !picksDue(configured, s.defaultPicksTime, now) {
			continue
		}
		due++
		if _, err := s.picksService.GetOrGenerate(ctx, userID, now); err != nil {
			log.Printf("❌ [DAILY-PICKS] Generation failed for user %s: %v", userID, err)
			continue
		}
		generated++
	}
	if due > 0 {
		log.Printf("🌅 [DAILY-PICKS] Generated picks for %d/%d due users", generated, due)
	}
}

// runDecay archives pending items older than each user's decay window.
func (s *Scheduler) runDecay() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := s.decayService.Run(ctx, time.Now().UTC()); err != nil {
		log.Printf("❌ [DECAY] Sweep failed: %v", err)
	}
}

// picksDue reports whether a user's configured HH:MM matches the
// current UTC minute. An unparseable configured value falls back to
// the default time.
func picksDue(configured, fallback string, now time.Time) bool {
	minute, err := parseClock(configured)
	if err != nil {
		minute, err = parseClock(fallback)
		if err != nil {
			return false
		}
	}
	return minute == now.Hour()*60+now.Minute()
}

// parseClock converts an HH:MM wall-clock time to minutes past midnight.
func parseClock(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM")
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour %q", parts[0])
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute %q", parts[1])
	}
	return hour*60 + minute, nil
}

// timeToCron converts an HH:MM wall-clock time into a daily cron
// expression, validated with the standard 5-field parser.
func timeToCron(hhmm string) (string, error) {
	minutes, err := parseClock(hhmm)
	if err != nil {
		return "", err
	}

	expr := fmt.Sprintf("%d %d * * *", minutes%60, minutes/60)
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(expr); err != nil {
		return "", err
	}
	return expr, nil
}
