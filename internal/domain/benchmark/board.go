package benchmark

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/aimtrack/internal/domain/energy"
)

const boardPrefix = "vt-s"

// Board identifies one season and difficulty, e.g. "vt-s5-intermediate".
type Board struct {
	Season     int
	Difficulty energy.Difficulty
}

func (b Board) String() string {
	return fmt.Sprintf("%s%d-%s", boardPrefix, b.Season, b.Difficulty)
}

// ParseBoard parses the "vt-s{season}-{difficulty}" form. A well-formed board
// naming an unknown difficulty reports ErrDifficultyNotFound.
func ParseBoard(s string) (Board, error) {
	rest, ok := strings.CutPrefix(strings.ToLower(strings.TrimSpace(s)), boardPrefix)
	if !ok {
		return Board{}, fmt.Errorf("%w: %q", ErrInvalidBoard, s)
	}
	seasonPart, diffPart, ok := strings.Cut(rest, "-")
	if !ok || diffPart == "" {
		return Board{}, fmt.Errorf("%w: %q", ErrInvalidBoard, s)
	}
	season, err := strconv.Atoi(seasonPart)
	if err != nil || season <= 0 {
		return Board{}, fmt.Errorf("%w: season %q", ErrInvalidBoard, seasonPart)
	}
	d, err := energy.ParseDifficulty(diffPart)
	if err != nil {
		return Board{}, fmt.Errorf("%w: %q", ErrDifficultyNotFound, diffPart)
	}
	return Board{Season: season, Difficulty: d}, nil
}
