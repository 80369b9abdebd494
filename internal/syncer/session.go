package syncer

import (
	"sync"

	"notion-trade-sync/internal/types"
)

// Session is the state of one live page: the selected account and the
// canonical ids already confirmed synced under it. It is created when the page
// is ready and closed on navigation.
type Session struct {
	mu        sync.Mutex
	account   types.AccountContext
	seenText  string
	started   bool
	processed map[string]struct{}
	totals    Totals
}

// Totals are the in-session counts across passes.
type Totals struct {
	Passes     int
	Synced     int
	Duplicates int
	Failed     int
}

func NewSession() *Session {
	return &Session{processed: make(map[string]struct{})}
}

// SwitchAccount records the account shown on the page. When its selector text
// differs from the last one seen, the account is replaced and the processed
// set cleared; the return value reports that reset.
func (s *Session) SwitchAccount(a types.AccountContext) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started && a.SelectorText == s.seenText {
		return false
	}
	changed := s.started
	s.started = true
	s.seenText = a.SelectorText
	s.account = a
	if changed {
		s.processed = make(map[string]struct{})
	}
	return changed
}

func (s *Session) Account() types.AccountContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

// Unprocessed returns trades whose canonical id is not yet in the processed
// set, keeping their order.
func (s *Session) Unprocessed(trades []types.Trade) []types.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Trade, 0, len(trades))
	for _, t := range trades {
		if _, ok := s.processed[t.CanonicalID]; !ok {
			out = append(out, t)
		}
	}
	return out
}

func (s *Session) MarkProcessed(canonicalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed[canonicalID] = struct{}{}
}

func (s *Session) IsProcessed(canonicalID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.processed[canonicalID]
	return ok
}

// Len is the size of the processed set.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.processed)
}

func (s *Session) addTotals(r types.SyncResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals.Passes++
	s.totals.Synced += r.SuccessCount
	s.totals.Duplicates += r.DuplicateCount
	s.totals.Failed += r.FailedCount
}

func (s *Session) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// Close drops all session state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed = make(map[string]struct{})
	s.account = types.AccountContext{}
	s.seenText = ""
	s.started = false
	s.totals = Totals{}
}
