package processor

import (
	"context"
	"log"

	"expertaid/reputation-worker-service/internal/app/reputation-worker/service"

	"github.com/robfig/cron/v3"
)

// CronScheduler периодически запускает сверку всех репутаций
type CronScheduler struct {
	cron          *cron.Cron
	reputationSvc service.ReputationServiceInterface
}

func NewCronScheduler(reputationSvc service.ReputationServiceInterface) *CronScheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(log.Default())))

	return &CronScheduler{
		cron:          c,
		reputationSvc: reputationSvc,
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	log.Printf("Starting cron scheduler with schedule: %s", schedule)

	_, err := s.cron.AddFunc(schedule, func() {
		log.Println("Cron job triggered: reconciling expert reputations")

		if err := s.reputationSvc.ReconcileAll(ctx); err != nil {
			log.Printf("ERROR: Reconciliation sweep failed: %v", err)
		} else {
			log.Println("Cron job completed: reputations reconciled")
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("Cron scheduler started")

	// Начальная сверка закрывает пробел между рестартом worker-а
	// и первым срабатыванием расписания
	log.Println("Performing initial reconciliation sweep...")
	if err := s.reputationSvc.ReconcileAll(ctx); err != nil {
		log.Printf("WARNING: Initial reconciliation sweep failed: %v", err)
	} else {
		log.Println("Initial reconciliation sweep completed")
	}

	return nil
}

func (s *CronScheduler) Stop() {
	log.Println("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
