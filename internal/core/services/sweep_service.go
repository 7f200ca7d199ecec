package services

import (
	"context"
	"log"
	"time"

	"libralend/internal/config"

	"github.com/robfig/cron/v3"
)

// SweepService runs the recurring maintenance jobs: the daily overdue
// sweep and due-soon reminders. The schedule is plumbing only; the
// operations themselves live on LoanService and can be invoked on any
// cadence.
type SweepService struct {
	loanService *LoanService
	notify      *NotificationService
	schedule    config.ScheduleConfig
	cron        *cron.Cron
}

// NewSweepService creates a new sweep service
func NewSweepService(loanService *LoanService, notify *NotificationService, schedule config.ScheduleConfig) *SweepService {
	return &SweepService{
		loanService: loanService,
		notify:      notify,
		schedule:    schedule,
	}
}

// Start registers and launches the cron jobs
func (s *SweepService) Start() error {
	if !s.schedule.Enabled {
		log.Println("⏸️ Scheduling disabled, overdue sweep will not run automatically")
		return nil
	}

	s.cron = cron.New()

	if _, err := s.cron.AddFunc(s.schedule.SweepCron, s.runSweep); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.schedule.ReminderCron, s.runReminders); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("🚀 SweepService started [sweep: %q, reminders: %q]",
		s.schedule.SweepCron, s.schedule.ReminderCron)
	return nil
}

// Stop halts the cron scheduler, waiting for running jobs
func (s *SweepService) Stop() {
	if s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 SweepService stopped")
}

func (s *SweepService) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	count, err := s.loanService.Sweep(ctx)
	if err != nil {
		log.Printf("❌ Overdue sweep failed: %v", err)
		return
	}

	log.Printf("✅ Overdue sweep completed, %d loans updated", count)
	if s.notify != nil {
		s.notify.NotifySweepCompleted(count)
	}
}

func (s *SweepService) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	loans, err := s.loanService.DueSoon(ctx)
	if err != nil {
		log.Printf("❌ Reminder query failed: %v", err)
		return
	}

	for _, loan := range loans {
		if s.notify != nil {
			s.notify.NotifyDueSoon(loan)
		}
	}

	if len(loans) > 0 {
		log.Printf("📅 Sent %d due-soon reminders", len(loans))
	}
}
