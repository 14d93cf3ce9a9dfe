package repository

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/okian/aimtrack/internal/domain/energy"
	"github.com/okian/aimtrack/internal/domain/model"
	"github.com/okian/aimtrack/internal/domain/types"
	"github.com/okian/aimtrack/pkg/metrics"
)

// Treap-based, in-memory leaderboard.
//
// Ordering: energy DESC, then player id ASC. "less" means ranks earlier, so
// an in-order traversal yields the leaderboard from best to worst.

// energyScale controls fixed-point scaling from float64.
const energyScale = 1_000_000_000

type energyFP int64

func toFixedPoint(x float64) energyFP {
	switch {
	case math.IsNaN(x):
		return 0
	case x*energyScale >= math.MaxInt64:
		return energyFP(math.MaxInt64)
	case x*energyScale <= math.MinInt64:
		return energyFP(math.MinInt64)
	}
	return energyFP(math.Round(x * energyScale))
}

func toFloat(x energyFP) float64 {
	return float64(x) / energyScale
}

type node struct {
	id     string
	energy energyFP
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func less(aEnergy energyFP, aID string, bEnergy energyFP, bID string) bool {
	if aEnergy != bEnergy {
		return aEnergy > bEnergy
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, e energyFP, prio uint64) *node {
	if n == nil {
		return &node{id: id, energy: e, prio: prio, size: 1}
	}
	if less(e, id, n.energy, n.id) {
		n.left = insert(n.left, id, e, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, e, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, e energyFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case e == n.energy && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, e)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, e)
		}
	case less(e, id, n.energy, n.id):
		n.left = deleteNode(n.left, id, e)
	default:
		n.right = deleteNode(n.right, id, e)
	}
	fix(n)
	return n
}

// ahead counts the nodes ordered before (e, id). It runs in O(log n) using
// the subtree sizes.
func ahead(n *node, e energyFP, id string) int {
	c := 0
	for n != nil {
		if less(n.energy, n.id, e, id) {
			c += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return c
}

// walk visits nodes in rank order until visit returns false.
func walk(n *node, visit func(*node) bool) bool {
	if n == nil {
		return true
	}
	return walk(n.left, visit) && visit(n) && walk(n.right, visit)
}

// Board ranks the players of one benchmark by their best energy.
//
// Ranks are dense: players with equal energy share a rank. levels holds one
// node per distinct energy, so a player's rank is the number of levels above
// theirs plus one.
type Board struct {
	mu     sync.RWMutex
	root   *node
	byID   map[string]energyFP
	levels *node
	counts map[energyFP]int
}

// NewBoard creates an empty leaderboard.
func NewBoard() *Board {
	return &Board{byID: make(map[string]energyFP), counts: make(map[energyFP]int)}
}

func (b *Board) addLevel(e energyFP) {
	b.counts[e]++
	if b.counts[e] == 1 {
		b.levels = insert(b.levels, "", e, rand.Uint64())
	}
}

func (b *Board) dropLevel(e energyFP) {
	b.counts[e]--
	if b.counts[e] == 0 {
		delete(b.counts, e)
		b.levels = deleteNode(b.levels, "", e)
	}
}

// UpdateBest records energy for player if it beats the stored best.
func (b *Board) UpdateBest(_ context.Context, player string, e float64) (bool, error) {
	ne := toFixedPoint(e)

	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.byID[player]; ok {
		if ne <= old {
			return false, nil
		}
		b.root = deleteNode(b.root, player, old)
		b.dropLevel(old)
	}
	b.byID[player] = ne
	b.root = insert(b.root, player, ne, rand.Uint64())
	b.addLevel(ne)
	return true, nil
}

// Rank returns the player's row in O(log n).
func (b *Board) Rank(_ context.Context, player string) (types.LeaderboardEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	target, ok := b.byID[player]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.LeaderboardEntry{}, ErrNotFound
	}
	return row(ahead(b.levels, target, "")+1, player, target), nil
}

// TopN returns the best n rows.
func (b *Board) TopN(_ context.Context, n int) ([]types.LeaderboardEntry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]types.LeaderboardEntry, 0, min(n, nsize(b.root)))
	rank := 0
	var prev energyFP
	walk(b.root, func(nd *node) bool {
		if rank == 0 || nd.energy != prev {
			rank++
			prev = nd.energy
		}
		out = append(out, row(rank, nd.id, nd.energy))
		return len(out) < n
	})
	return out, nil
}

// Count returns the number of ranked players.
func (b *Board) Count(_ context.Context) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return nsize(b.root)
}

func row(rank int, player string, e energyFP) types.LeaderboardEntry {
	v := toFloat(e)
	return types.LeaderboardEntry{Rank: rank, PlayerID: player, Energy: v, RankName: energy.RankName(v)}
}

// Leaderboards holds one Board per board and benchmark pair.
type Leaderboards struct {
	mu     sync.RWMutex
	boards map[string]*Board
}

// NewLeaderboards creates an empty registry.
func NewLeaderboards() *Leaderboards {
	return &Leaderboards{boards: make(map[string]*Board)}
}

func boardKey(board, benchmark string) string {
	return board + "/" + benchmark
}

func (l *Leaderboards) get(board, benchmark string) (*Board, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.boards[boardKey(board, benchmark)]
	return b, ok
}

func (l *Leaderboards) getOrCreate(board, benchmark string) *Board {
	if b, ok := l.get(board, benchmark); ok {
		return b
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	key := boardKey(board, benchmark)
	b, ok := l.boards[key]
	if !ok {
		b = NewBoard()
		l.boards[key] = b
	}
	return b
}

// UpdateBest pushes a standing into its leaderboard.
func (l *Leaderboards) UpdateBest(ctx context.Context, s model.Standing) (bool, error) {
	return l.getOrCreate(s.Board, s.Benchmark).UpdateBest(ctx, s.UserID, s.Energy)
}

// Rank returns a player's row on a benchmark leaderboard.
func (l *Leaderboards) Rank(ctx context.Context, board, benchmark, player string) (types.LeaderboardEntry, error) {
	b, ok := l.get(board, benchmark)
	if !ok {
		return types.LeaderboardEntry{}, ErrNotFound
	}
	return b.Rank(ctx, player)
}

// TopN returns the best n rows of a benchmark leaderboard. An untouched
// leaderboard is empty.
func (l *Leaderboards) TopN(ctx context.Context, board, benchmark string, n int) ([]types.LeaderboardEntry, error) {
	b, ok := l.get(board, benchmark)
	if !ok {
		if n < 1 {
			return nil, ErrInvalidLimit
		}
		return []types.LeaderboardEntry{}, nil
	}
	return b.TopN(ctx, n)
}

// Count returns the number of ranked players of a benchmark leaderboard.
func (l *Leaderboards) Count(ctx context.Context, board, benchmark string) int {
	b, ok := l.get(board, benchmark)
	if !ok {
		return 0
	}
	return b.Count(ctx)
}

// Boards lists the keys of every non-empty leaderboard as "board/benchmark".
func (l *Leaderboards) Boards() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.boards))
	for k := range l.boards {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
