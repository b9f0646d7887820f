package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = 30 * time.Second
)

// WalletTypeStats aggregates wallets of one resource type.
type WalletTypeStats struct {
	Type         string  `db:"type" json:"type"`
	Count        int     `db:"count" json:"count"`
	TotalBalance float64 `db:"total_balance" json:"total_balance"`
}

// Stats is the admin dashboard snapshot.
type Stats struct {
	Companies       int               `json:"companies"`
	ActiveCampaigns int               `json:"active_campaigns"`
	TotalCoupons    int               `json:"total_coupons"`
	UsedCoupons     int               `json:"used_coupons"`
	Wallets         []WalletTypeStats `json:"wallets"`
	GeneratedAt     time.Time         `json:"generated_at"`
}

// Service aggregates cross-domain counts for the admin dashboard. Results
// are cached in Redis for a short window; a nil Redis client disables
// caching without disabling the endpoint.
type Service struct {
	db  *sqlx.DB
	rdb *redis.Client
}

func NewService(db *sqlx.DB, rdb *redis.Client) *Service {
	return &Service{db: db, rdb: rdb}
}

func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	stats := &Stats{GeneratedAt: time.Now()}

	err := s.db.GetContext(ctx, &stats.Companies, `SELECT count(*) FROM companies`)
	if err != nil {
		return nil, err
	}

	err = s.db.GetContext(ctx, &stats.ActiveCampaigns, `
		SELECT count(*) FROM campaigns WHERE start_date <= now() AND end_date >= now()
	`)
	if err != nil {
		return nil, err
	}

	var couponCounts struct {
		Total int `db:"total"`
		Used  int `db:"used"`
	}
	err = s.db.GetContext(ctx, &couponCounts, `
		SELECT count(*) AS total,
		       count(*) FILTER (WHERE status = 'USED') AS used
		FROM coupons
	`)
	if err != nil {
		return nil, err
	}
	stats.TotalCoupons = couponCounts.Total
	stats.UsedCoupons = couponCounts.Used

	stats.Wallets = []WalletTypeStats{}
	err = s.db.SelectContext(ctx, &stats.Wallets, `
		SELECT type, count(*) AS count, coalesce(sum(balance), 0) AS total_balance
		FROM wallets
		GROUP BY type
		ORDER BY type
	`)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, stats)
	return stats, nil
}

func (s *Service) fromCache(ctx context.Context) *Stats {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var stats Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *Service) toCache(ctx context.Context, stats *Stats) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, statsCacheKey, raw, statsCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("dashboard stats cache write failed")
	}
}
