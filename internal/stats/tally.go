// Package stats runs a periodic tally over internal/network's per-node
// counters and persists snapshots via internal/store, adapted from the
// teacher's gamification.TallyService (XP tallying generalizes directly
// to aggregate-stats tallying: same ticker/Start/Stop/OnComplete shape).
package stats

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jinzhu/inflection"
	"github.com/ncruces/go-strftime"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tschsim/engine/internal/network"
	"github.com/tschsim/engine/internal/store/models"
	"github.com/tschsim/engine/internal/store/repository"
)

// TallyService periodically snapshots every node's counters from a
// *network.Network and persists them through a SnapshotRepo.
type TallyService struct {
	net      *network.Network
	repo     *repository.SnapshotRepo
	runID    string
	interval time.Duration
	logger   *zap.Logger

	ticker   *time.Ticker
	stopChan chan struct{}

	// OnTallyComplete, if set, fires after each tally completes — mirrors
	// the teacher's TallyService.OnTallyComplete hook used to notify the
	// websocket hub.
	OnTallyComplete func(Summary)
}

// Summary reports one completed tally's scope.
type Summary struct {
	NodesTallied int
	StartedAt    time.Time
	CompletedAt  time.Time
}

// New builds a TallyService for one simulation run.
func New(net *network.Network, repo *repository.SnapshotRepo, runID string, interval time.Duration, logger *zap.Logger) *TallyService {
	return &TallyService{
		net:      net,
		repo:     repo,
		runID:    runID,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start runs an immediate tally, then ticks every interval until Stop is
// called.
func (s *TallyService) Start() {
	s.logger.Info("tally service starting", zap.Duration("interval", s.interval))
	s.tally()
	s.ticker = time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.tally()
			case <-s.stopChan:
				return
			}
		}
	}()
}

// Stop halts the ticker.
func (s *TallyService) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopChan)
}

func (s *TallyService) tally() {
	started := time.Now()
	rows := make([]models.RunStatSnapshot, 0, len(s.net.Nodes))
	for _, n := range s.net.Nodes {
		st := n.Stats
		rows = append(rows, models.RunStatSnapshot{
			RunID:             s.runID,
			NodeID:            n.ID(),
			ASN:               s.net.Timeline.ASN(),
			AppNumEndpointRx:  st.AppNumEndpointRx,
			MacTxUnicast:      st.MacTxUnicast,
			MacAcked:          st.MacAcked,
			MacRxCollision:    st.MacRxCollision,
			AppNumQueueDrops:  st.AppNumQueueDrops,
			AppNumTxLimitDrop: st.AppNumTxLimitDrops,
			AppNumOtherDrops:  st.AppNumOtherDrops,
			RoutingDrops:      st.RoutingDrops,
			SchedulingDrops:   st.SchedulingDrops,
		})
	}

	if err := s.repo.Insert(context.Background(), rows); err != nil {
		s.logger.Error("tally insert failed", zap.Error(err))
		return
	}

	completed := time.Now()
	s.logger.Info("tally completed",
		zap.String("run_id", s.runID),
		zap.Int("nodes", len(rows)),
		zap.String("at", strftime.Format("%Y-%m-%d %H:%M:%S", completed)),
	)

	if s.OnTallyComplete != nil {
		s.OnTallyComplete(Summary{NodesTallied: len(rows), StartedAt: started, CompletedAt: completed})
	}
}

// pluralize returns word unchanged for a count of 1, else its
// inflection.Plural form ("node" -> "nodes", "delivery" -> "deliveries").
func pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return inflection.Plural(word)
}

// Headline renders a locale-aware, pluralized one-line summary for the
// STATUS verb and startup logs, e.g. "3 nodes, 128 collisions, 40
// deliveries".
func Headline(nodeCount, collisions, endpointRx int) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%d %s, %d %s, %s %s",
		nodeCount, pluralize("node", nodeCount),
		collisions, pluralize("collision", collisions),
		humanize.Comma(int64(endpointRx)), pluralize("delivery", endpointRx),
	)
}
