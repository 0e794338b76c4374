package normalize

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/veridian-systems/evidentia/core"
	"github.com/veridian-systems/evidentia/storage"
)

// Normalizer derives the silver tier from bronze: one deduplication pass
// over the whole bronze tree, freshness aging, then a wholesale silver
// replacement. Running it twice over identical bronze input with the same
// AsOf reference reproduces identical silver output.
type Normalizer struct {
	bronze   storage.BronzeStore
	silver   storage.SilverStore
	schedule Schedule
	asOf     time.Time
	logger   *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer) error

// WithAsOf pins the "now" reference used for age computation. Default is
// the wall clock at Run time; pin it for reproducible reruns.
func WithAsOf(asOf time.Time) Option {
	return func(n *Normalizer) error {
		n.asOf = asOf.UTC()
		return nil
	}
}

// WithSchedule overrides the freshness aging table.
// Default is DefaultSchedule().
func WithSchedule(schedule Schedule) Option {
	return func(n *Normalizer) error {
		n.schedule = schedule
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) error {
		if logger == nil {
			logger = slog.Default()
		}
		n.logger = logger
		return nil
	}
}

// NewNormalizer creates a normalizer over the given stores.
func NewNormalizer(bronze storage.BronzeStore, silver storage.SilverStore, opts ...Option) (*Normalizer, error) {
	if bronze == nil {
		return nil, ErrBronzeStoreRequired
	}
	if silver == nil {
		return nil, ErrSilverStoreRequired
	}

	n := &Normalizer{
		bronze:   bronze,
		silver:   silver,
		schedule: DefaultSchedule(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(n); err != nil {
			return nil, err
		}
	}

	return n, nil
}

// Stats summarizes one normalizer run.
type Stats struct {
	BronzeRecords int
	SilverRecords int
	Duplicates    int
	AsOf          time.Time
}

// Run reads the entire bronze tree, keeps the best candidate per
// (content hash, org, fiscal year) group, ages the survivors, and replaces
// the silver tree. An empty bronze tree is a no-op.
func (n *Normalizer) Run(ctx context.Context) (Stats, error) {
	asOf := n.asOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	records, err := n.bronze.Read(ctx, storage.Filter{})
	if err != nil {
		n.logger.Error("error reading bronze tree", "err", err)
		return Stats{}, err
	}

	stats := Stats{BronzeRecords: len(records), AsOf: asOf}
	if len(records) == 0 {
		n.logger.Info("bronze tree is empty, nothing to normalize")
		return stats, nil
	}

	winners := dedupe(records)
	stats.Duplicates = len(records) - len(winners)

	silver := make([]*core.SilverEvidenceRecord, len(winners))
	for i, record := range winners {
		age := MonthsBetween(asOf, record.ExtractionTimestamp)
		penalty := n.schedule.Penalty(age)
		silver[i] = &core.SilverEvidenceRecord{
			EvidenceRecord:     *record,
			IsMostRecent:       true,
			FreshnessPenalty:   penalty,
			AdjustedConfidence: n.schedule.AdjustedConfidence(record.Confidence, age),
		}
	}

	if err := n.silver.Replace(ctx, silver, asOf); err != nil {
		n.logger.Error("error replacing silver tree", "err", err)
		return Stats{}, err
	}

	stats.SilverRecords = len(silver)
	n.logger.Info("normalize complete",
		"bronze", stats.BronzeRecords,
		"silver", stats.SilverRecords,
		"duplicates", stats.Duplicates)
	return stats, nil
}

// dedupe keeps the top-ranked record per dedup group: highest confidence
// wins, ties broken by most recent extraction, then by evidence ID so the
// result does not depend on input order.
func dedupe(records []*core.EvidenceRecord) []*core.EvidenceRecord {
	groups := make(map[string]*core.EvidenceRecord, len(records))
	for _, record := range records {
		key := record.DedupKey()
		current, ok := groups[key]
		if !ok || ranksAbove(record, current) {
			groups[key] = record
		}
	}

	winners := make([]*core.EvidenceRecord, 0, len(groups))
	for _, record := range groups {
		winners = append(winners, record)
	}
	sort.Slice(winners, func(i, j int) bool {
		return winners[i].EvidenceID < winners[j].EvidenceID
	})
	return winners
}

func ranksAbove(a, b *core.EvidenceRecord) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if !a.ExtractionTimestamp.Equal(b.ExtractionTimestamp) {
		return a.ExtractionTimestamp.After(b.ExtractionTimestamp)
	}
	return a.EvidenceID < b.EvidenceID
}
