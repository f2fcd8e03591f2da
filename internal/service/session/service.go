package session

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"kakao-store-bot/internal/store"
)

type Mode string

const (
	ModeNone   Mode = ""
	ModeList   Mode = "list"
	ModeDetail Mode = "detail"
)

// HistoryLimit caps the detail-mode exchange history; oldest entries are
// evicted first.
const HistoryLimit = 10

type Exchange struct {
	Role string
	Text string
}

// State is one user's conversation state. Transitions overwrite it
// wholesale: LIST carries the ranked candidate list, DETAIL the selected
// store plus a bounded exchange history.
type State struct {
	Mode       Mode
	Candidates []store.Record
	Selected   *store.Record
	History    []Exchange
}

// Append adds one exchange entry, evicting from the front past HistoryLimit.
func (st *State) Append(role, text string) {
	st.History = append(st.History, Exchange{Role: role, Text: text})
	if len(st.History) > HistoryLimit {
		st.History = st.History[len(st.History)-HistoryLimit:]
	}
}

const lockStripes = 64

// Service is the process-wide session store. Entries idle out on a TTL so
// the map cannot grow without bound, and Do serializes whole turns per user
// key so concurrent webhook calls from one user cannot lose updates.
type Service struct {
	cache *cache.Cache
	locks [lockStripes]sync.Mutex
}

func (s *Service) Get(userKey string) (State, bool) {
	if v, found := s.cache.Get(userKey); found {
		return v.(State), true
	}
	return State{}, false
}

// Put overwrites the user's state and refreshes its idle TTL.
func (s *Service) Put(userKey string, st State) {
	s.cache.Set(userKey, st, cache.DefaultExpiration)
}

func (s *Service) Delete(userKey string) {
	s.cache.Delete(userKey)
}

// Do runs fn while holding the user's stripe lock. Turns for the same user
// run one at a time; unrelated users proceed in parallel.
func (s *Service) Do(userKey string, fn func()) {
	l := &s.locks[stripe(userKey)]
	l.Lock()
	defer l.Unlock()
	fn()
}

func stripe(userKey string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(userKey))
	return h.Sum32() % lockStripes
}

func New(idleTTL, purgeInterval time.Duration) *Service {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}

	if purgeInterval <= 0 {
		purgeInterval = 10 * time.Minute
	}

	return &Service{
		cache: cache.New(idleTTL, purgeInterval),
	}
}
