package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/polkiloo/shopcore/internal/domain/model"
)

// GatewayFacade exposes the subset of application functionality required by the poller.
type GatewayFacade interface {
	CheckTransaction(ctx context.Context, tranID string) (*model.GatewayTransaction, error)
	Order(ctx context.Context, orderID string) (*model.Order, error)
	ConfirmGatewayPayment(ctx context.Context, orderID string, tran *model.GatewayTransaction) error
	RecordGatewayStatus(ctx context.Context, orderID string, event model.StatusEvent) error
}

// PollingJob tracks one order awaiting a gateway verdict. Job state is
// process-local; a restart drops in-flight jobs.
type PollingJob struct {
	OrderID       string
	TransactionID string
	StartTime     time.Time
	Attempts      int
	NextPollTime  time.Time
	MaxAttempts   int
}

// Config holds every poller interval so tests can compress the schedule.
type Config struct {
	// Tick is the shared scan cadence across all registered jobs.
	Tick time.Duration
	// FirstPollDelay postpones the first gateway call after registration.
	FirstPollDelay time.Duration
	// SteadyInterval applies for the first SteadyAttempts polls, SlowInterval after.
	SteadyInterval time.Duration
	SlowInterval   time.Duration
	SteadyAttempts int
	MaxAttempts    int
	// ErrorBackoff is the reschedule ladder after gateway failures; the last
	// entry caps further retries.
	ErrorBackoff []time.Duration
}

// DefaultConfig covers roughly a 30 minute polling window per order.
func DefaultConfig() Config {
	return Config{
		Tick:           10 * time.Second,
		FirstPollDelay: 30 * time.Second,
		SteadyInterval: 30 * time.Second,
		SlowInterval:   120 * time.Second,
		SteadyAttempts: 10,
		MaxAttempts:    22,
		ErrorBackoff:   []time.Duration{30 * time.Second, 60 * time.Second, 120 * time.Second},
	}
}

// StatusPoller drives payment reconciliation for gateway-initiated payments.
// One shared ticker scans the in-memory job registry; the ticker starts with
// the first registered job and stops when the registry drains.
type StatusPoller struct {
	facade GatewayFacade
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	jobs   map[string]*PollingJob
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// NewStatusPoller constructs the poller without starting any timer.
func NewStatusPoller(facade GatewayFacade, cfg Config, logger *slog.Logger) *StatusPoller {
	if cfg.Tick <= 0 {
		cfg = DefaultConfig()
	}
	return &StatusPoller{
		facade: facade,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		jobs:   make(map[string]*PollingJob),
	}
}

// StartPollingForOrder registers a polling job for the order. Registering an
// order twice resets its schedule.
func (p *StatusPoller) StartPollingForOrder(orderID, transactionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	now := p.now()
	p.jobs[orderID] = &PollingJob{
		OrderID:       orderID,
		TransactionID: transactionID,
		StartTime:     now,
		NextPollTime:  now.Add(p.cfg.FirstPollDelay),
		MaxAttempts:   p.cfg.MaxAttempts,
	}
	p.logger.Info("payment polling registered",
		slog.String("order_id", orderID), slog.String("tran_id", transactionID))
	if p.cancel == nil {
		runCtx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		p.wg.Add(1)
		go p.loop(runCtx)
	}
}

// StopPollingForOrder deregisters a job, e.g. after a manual confirmation
// made polling moot. An in-flight gateway call is not aborted; its result is
// discarded once the job is gone.
func (p *StatusPoller) StopPollingForOrder(orderID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.jobs, orderID)
	p.maybeStopLocked()
}

// Stop drops all jobs and waits for the scan loop to exit.
func (p *StatusPoller) Stop() {
	p.mu.Lock()
	p.closed = true
	p.jobs = make(map[string]*PollingJob)
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Jobs reports how many orders are currently being polled.
func (p *StatusPoller) Jobs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

func (p *StatusPoller) maybeStopLocked() {
	if len(p.jobs) == 0 && p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *StatusPoller) loop(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

// sweep processes every job whose next poll time has elapsed. Jobs run
// sequentially; the registry lock is not held across gateway calls.
func (p *StatusPoller) sweep(ctx context.Context) {
	now := p.now()

	p.mu.Lock()
	due := make([]PollingJob, 0, len(p.jobs))
	for _, job := range p.jobs {
		if !now.Before(job.NextPollTime) {
			due = append(due, *job)
		}
	}
	p.mu.Unlock()

	for _, job := range due {
		outcome := p.poll(ctx, job)

		p.mu.Lock()
		current, ok := p.jobs[job.OrderID]
		if ok {
			if outcome.done {
				delete(p.jobs, job.OrderID)
			} else {
				current.Attempts = outcome.attempts
				current.NextPollTime = outcome.next
			}
			p.maybeStopLocked()
		}
		p.mu.Unlock()
	}
}

type pollOutcome struct {
	done     bool
	attempts int
	next     time.Time
}

func (p *StatusPoller) poll(ctx context.Context, job PollingJob) pollOutcome {
	tran, err := p.facade.CheckTransaction(ctx, job.TransactionID)
	if err != nil {
		p.logger.Warn("gateway status check failed",
			slog.String("order_id", job.OrderID), slog.String("error", err.Error()))
		return p.retry(job, true)
	}

	switch tran.Status() {
	case model.PaymentStatusCompleted:
		return p.completePayment(ctx, job, tran)

	case model.PaymentStatusCancelled, model.PaymentStatusFailed:
		p.recordStatus(ctx, job.OrderID, tran, "gateway reported terminal status")
		p.logger.Info("payment polling finished without payment",
			slog.String("order_id", job.OrderID), slog.Int("status_code", tran.StatusCode))
		return pollOutcome{done: true}

	default:
		p.recordStatus(ctx, job.OrderID, tran, "gateway reports payment in progress")
		return p.retry(job, false)
	}
}

func (p *StatusPoller) completePayment(ctx context.Context, job PollingJob, tran *model.GatewayTransaction) pollOutcome {
	order, err := p.facade.Order(ctx, job.OrderID)
	if err != nil {
		p.logger.Error("order lookup failed during polling",
			slog.String("order_id", job.OrderID), slog.String("error", err.Error()))
		return p.retry(job, true)
	}
	if order.IsPaid {
		return pollOutcome{done: true}
	}

	if math.Abs(tran.Amount-order.TotalPrice) > 0.01 {
		// A human must resolve the discrepancy; the order stays unpaid.
		p.recordStatus(ctx, job.OrderID, tran,
			fmt.Sprintf("amount mismatch: gateway %.2f, order %.2f", tran.Amount, order.TotalPrice))
		p.logger.Error("gateway amount mismatch, polling stopped",
			slog.String("order_id", job.OrderID),
			slog.Float64("gateway_amount", tran.Amount),
			slog.Float64("order_total", order.TotalPrice))
		return pollOutcome{done: true}
	}

	if err := p.facade.ConfirmGatewayPayment(ctx, job.OrderID, tran); err != nil {
		p.logger.Error("gateway payment confirmation failed",
			slog.String("order_id", job.OrderID), slog.String("error", err.Error()))
		return p.retry(job, true)
	}
	p.logger.Info("order reconciled from gateway polling", slog.String("order_id", job.OrderID))
	return pollOutcome{done: true}
}

func (p *StatusPoller) recordStatus(ctx context.Context, orderID string, tran *model.GatewayTransaction, details string) {
	event := model.StatusEvent{
		Status:     tran.Status(),
		StatusCode: tran.StatusCode,
		Source:     model.StatusSourceAutoPoll,
		Details:    details,
		At:         p.now(),
	}
	if err := p.facade.RecordGatewayStatus(ctx, orderID, event); err != nil {
		p.logger.Error("record gateway status failed",
			slog.String("order_id", orderID), slog.String("error", err.Error()))
	}
}

// retry bumps the attempt counter and reschedules, giving up past
// MaxAttempts. Errors use the backoff ladder, healthy pending polls the
// steady cadence.
func (p *StatusPoller) retry(job PollingJob, failed bool) pollOutcome {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		p.logger.Warn("payment polling gave up",
			slog.String("order_id", job.OrderID), slog.Int("attempts", attempts))
		return pollOutcome{done: true}
	}

	var delay time.Duration
	switch {
	case failed && len(p.cfg.ErrorBackoff) > 0:
		idx := attempts - 1
		if idx >= len(p.cfg.ErrorBackoff) {
			idx = len(p.cfg.ErrorBackoff) - 1
		}
		delay = p.cfg.ErrorBackoff[idx]
	case attempts < p.cfg.SteadyAttempts:
		delay = p.cfg.SteadyInterval
	default:
		delay = p.cfg.SlowInterval
	}
	return pollOutcome{attempts: attempts, next: p.now().Add(delay)}
}
