// Package scheduler runs the nightly full reindex of published properties
// into the suggestion index.
package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"estate-cms/internal/config"
	"estate-cms/internal/gateway"
	"estate-cms/internal/models"
	"estate-cms/internal/search"
)

// Scheduler owns the cron entry for the nightly reindex job.
type Scheduler struct {
	cron      *cron.Cron
	rows      gateway.Rows
	suggest   *search.SuggestClient
	config    *config.Config
	isRunning bool
}

func NewScheduler(rows gateway.Rows, suggest *search.SuggestClient, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		rows:    rows,
		suggest: suggest,
		config:  cfg,
	}
}

// Start registers the nightly job and starts the cron loop.
func (s *Scheduler) Start() error {
	if !s.config.Indexing.NightlyEnabled {
		log.Println("Scheduler: Nightly reindex is disabled in configuration")
		return nil
	}

	cronSpec := s.parseNightlyTime(s.config.Indexing.NightlyTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("Scheduler: Starting nightly reindex...")
		if err := s.Reindex(); err != nil {
			log.Printf("Scheduler: Nightly reindex failed: %v", err)
		} else {
			log.Println("Scheduler: Nightly reindex completed successfully")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: Started with nightly reindex at %s (cron: %s)", s.config.Indexing.NightlyTime, cronSpec)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: Stopped")
	}
}

// Reindex pushes every published, active property into the suggestion index.
// Also used for the manual admin trigger.
func (s *Scheduler) Reindex() error {
	q := gateway.Query{OrderBy: "created_at", Desc: true}
	q = q.Eq("status", string(models.PropertyStatusPublished)).Eq("is_active", true)

	var props []models.Property
	if err := s.rows.Select(models.Property{}.TableName(), q, &props); err != nil {
		return fmt.Errorf("failed to load properties for reindex: %w", err)
	}

	if err := s.suggest.IndexProperties(props); err != nil {
		return fmt.Errorf("failed to index %d properties: %w", len(props), err)
	}

	log.Printf("Scheduler: Reindexed %d properties", len(props))
	return nil
}

// parseNightlyTime converts HH:MM format to a cron specification.
// Example: "03:00" -> "0 3 * * *".
func (s *Scheduler) parseNightlyTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	log.Printf("Scheduler: Failed to parse time '%s', using default 03:00", timeStr)
	return "0 3 * * *"
}
