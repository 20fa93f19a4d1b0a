package service

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"instacord/internal/classify"
	"instacord/internal/constants"
	"instacord/internal/database"
	"instacord/internal/dedup"
	"instacord/internal/metrics"
	"instacord/internal/models"
	"instacord/internal/privacy"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("instacord/service")

// SourceClient is the inbox surface the processor polls.
type SourceClient interface {
	Login(ctx context.Context) error
	Inbox(ctx context.Context) ([]models.Thread, error)
	Pending(ctx context.Context) ([]models.Thread, error)
	ThreadItems(ctx context.Context, threadID string) ([]models.RawItem, error)
	ApproveThread(ctx context.Context, threadID string) error
	Timeline(ctx context.Context) error
}

// Deliverer sends one rendered message to a resolved channel.
type Deliverer interface {
	SendMessage(channelID string, msg models.RenderableMessage) error
}

// Archive records delivered items for audit. Failures are absorbed;
// the archive never influences forwarding decisions.
type Archive interface {
	RecordForwardedItem(ctx context.Context, item *database.ForwardedItem) error
}

// ProcessorOptions tunes the pacing of a poll cycle. Zero values fall
// back to production defaults; tests shrink them to keep cycles fast.
type ProcessorOptions struct {
	SettleDelayMin  time.Duration
	SettleDelayMax  time.Duration
	ThreadPace      time.Duration
	FreshnessWindow time.Duration
	Now             func() time.Time
}

func (o *ProcessorOptions) applyDefaults() {
	if o.SettleDelayMin <= 0 {
		o.SettleDelayMin = constants.SettleDelayMin
	}
	if o.SettleDelayMax < o.SettleDelayMin {
		o.SettleDelayMax = constants.SettleDelayMax
	}
	if o.ThreadPace < 0 {
		o.ThreadPace = 0
	} else if o.ThreadPace == 0 {
		o.ThreadPace = constants.ThreadPaceDelay
	}
	if o.FreshnessWindow <= 0 {
		o.FreshnessWindow = constants.FreshnessWindow
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// InboxProcessor drives one poll cycle per category: enumerate,
// filter, prime, settle, fetch, order, classify, dedup, route,
// deliver, record, pace.
type InboxProcessor struct {
	source  SourceClient
	deliver Deliverer
	router  *ChannelRouter
	filter  *ThreadFilter
	ledger  *dedup.Ledger
	archive Archive
	logger  *logrus.Logger
	opts    ProcessorOptions
}

// NewInboxProcessor creates a processor. archive may be nil.
func NewInboxProcessor(source SourceClient, deliver Deliverer, router *ChannelRouter, filter *ThreadFilter, ledger *dedup.Ledger, archive Archive, logger *logrus.Logger, opts ProcessorOptions) *InboxProcessor {
	opts.applyDefaults()
	return &InboxProcessor{
		source:  source,
		deliver: deliver,
		router:  router,
		filter:  filter,
		ledger:  ledger,
		archive: archive,
		logger:  logger,
		opts:    opts,
	}
}

// ProcessCycle runs one full cycle for a category. An enumeration
// failure aborts the cycle; per-thread and per-item failures are
// logged and skipped without touching the ledger.
func (p *InboxProcessor) ProcessCycle(ctx context.Context, category models.InboxCategory) error {
	ctx, span := tracer.Start(ctx, "processor.cycle")
	span.SetAttributes(attribute.String("category", string(category)))
	defer span.End()

	started := p.opts.Now()
	log := p.logger.WithField("category", category)
	log.Info("Checking inbox for new items")

	var threads []models.Thread
	var err error
	if category == models.CategoryPending {
		threads, err = p.source.Pending(ctx)
	} else {
		threads, err = p.source.Inbox(ctx)
	}
	if err != nil {
		log.WithError(err).Error("Failed to enumerate threads, aborting cycle")
		metrics.IncrementCounter("cycle_failures", nil, "aborted poll cycles")
		return err
	}

	log.WithField("threads", len(threads)).Info("Enumerated inbox threads")

	for i := range threads {
		thread := &threads[i]

		if !p.filter.InScope(thread) {
			log.WithField("thread", thread.ThreadID).Debug("Skipping out-of-scope thread")
			continue
		}

		if err := p.processThread(ctx, thread, category); err != nil {
			log.WithFields(logrus.Fields{
				"thread": thread.ThreadID,
				"sender": privacy.MaskUsername(thread.PrimarySender()),
			}).WithError(err).Error("Failed to process thread")
		}

		// Pace between threads regardless of outcome to bound the
		// request rate against the source.
		if err := sleepCtx(ctx, p.opts.ThreadPace); err != nil {
			return err
		}
	}

	metrics.IncrementCounter("cycles_completed", map[string]string{"category": string(category)}, "completed poll cycles")
	metrics.RecordTimer("cycle_duration", p.opts.Now().Sub(started))
	return nil
}

func (p *InboxProcessor) processThread(ctx context.Context, thread *models.Thread, category models.InboxCategory) error {
	sender := thread.PrimarySender()
	log := p.logger.WithFields(logrus.Fields{
		"thread":   thread.ThreadID,
		"sender":   privacy.MaskUsername(sender),
		"category": category,
	})

	// Priming fetch: the result is discarded, the call exists to
	// trigger upstream media materialization.
	if _, err := p.source.ThreadItems(ctx, thread.ThreadID); err != nil {
		return err
	}

	settle := p.opts.SettleDelayMin
	if spread := p.opts.SettleDelayMax - p.opts.SettleDelayMin; spread > 0 {
		settle += time.Duration(rand.Int63n(int64(spread)))
	}
	log.WithField("settle", settle).Debug("Waiting for upstream content to materialize")
	if err := sleepCtx(ctx, settle); err != nil {
		return err
	}

	items, err := p.source.ThreadItems(ctx, thread.ThreadID)
	if err != nil {
		return err
	}
	log.WithField("items", len(items)).Debug("Fetched thread items")

	// Ascending by timestamp, fetch order preserved on ties.
	sort.SliceStable(items, func(i, j int) bool {
		a, _ := items[i].TimestampValue()
		b, _ := items[j].TimestampValue()
		return a < b
	})

	channelID := p.router.Resolve(sender)
	if channelID == "" {
		log.Warn("Could not resolve channel for sender, skipping thread")
		return nil
	}

	pending := category == models.CategoryPending
	for i := range items {
		p.processItem(ctx, &items[i], thread, sender, channelID, category, pending, log)
	}
	return nil
}

func (p *InboxProcessor) processItem(ctx context.Context, item *models.RawItem, thread *models.Thread, sender, channelID string, category models.InboxCategory, pending bool, log *logrus.Entry) {
	if p.ledger.Has(item.ItemID) {
		return
	}

	itemLog := log.WithFields(logrus.Fields{
		"item": privacy.MaskItemID(item.ItemID),
		"type": item.ItemType,
	})

	res := classify.Classify(item, sender, pending)
	if res.Degraded {
		itemLog.Warn("Classification degraded to fallback rendering")
		metrics.IncrementCounter("classify_degraded", nil, "degraded classifications")
	}
	classify.AttachTimestamp(&res.Message, item)

	// Freshness: stale items are classified but never delivered nor
	// recorded. They silently age out of the backlog.
	itemTime := p.opts.Now()
	if resolved, ok := classify.ResolveTimestamp(item); ok {
		itemTime = resolved
	}
	if p.opts.Now().Sub(itemTime) > p.opts.FreshnessWindow {
		itemLog.Debug("Skipping stale item outside freshness window")
		metrics.IncrementCounter("items_stale", nil, "items dropped as stale")
		return
	}

	ctx, span := tracer.Start(ctx, "processor.deliver")
	span.SetAttributes(
		attribute.String("item.id", item.ItemID),
		attribute.String("item.type", string(item.ItemType)),
	)
	defer span.End()

	if err := p.deliver.SendMessage(channelID, res.Message); err != nil {
		itemLog.WithError(err).Error("Failed to deliver item")
		metrics.IncrementCounter("delivery_failures", nil, "failed deliveries")
		return
	}

	p.ledger.Record(item.ItemID)
	itemLog.WithField("channel", channelID).Info("Delivered item")
	metrics.IncrementCounter("items_delivered", map[string]string{"category": string(category)}, "delivered items")

	if p.archive != nil {
		record := &database.ForwardedItem{
			ItemID:      item.ItemID,
			ThreadID:    thread.ThreadID,
			Sender:      sender,
			ItemType:    item.ItemType,
			Category:    category,
			ChannelID:   channelID,
			DeliveredAt: p.opts.Now(),
		}
		if err := p.archive.RecordForwardedItem(ctx, record); err != nil {
			itemLog.WithError(err).Warn("Failed to archive delivered item")
		}
	}

	// Pending threads get approved once a real item has been relayed.
	// Placeholder items don't count: their content never materialized.
	if pending && item.ItemType != models.ItemTypePlaceholder {
		if err := p.source.ApproveThread(ctx, thread.ThreadID); err != nil {
			itemLog.WithError(err).Warn("Failed to approve pending thread")
		} else {
			itemLog.Info("Approved pending thread")
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
