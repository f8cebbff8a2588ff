package benchmark

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

//
// Grade is a school year level, ordered K < 1 < ... < 12.
// The zero value is kindergarten.
//
type Grade int

const (
	GradeK Grade = iota
	Grade1
	Grade2
	Grade3
	Grade4
	Grade5
	Grade6
	Grade7
	Grade8
	Grade9
	Grade10
	Grade11
	Grade12
)

// number of grades in the canonical domain
const gradeCount = int(Grade12) + 1

//
// Grades returns the canonical grade domain in ascending order.
//
func Grades() []Grade {
	gg := make([]Grade, 0, gradeCount)
	for g := GradeK; g <= Grade12; g++ {
		gg = append(gg, g)
	}
	return gg
}

//
// ParseGrade converts a grade label ("K", "k", "1".."12") into a Grade.
//
func ParseGrade(label string) (Grade, error) {
	l := strings.TrimSpace(label)
	if strings.EqualFold(l, "K") {
		return GradeK, nil
	}
	n, err := strconv.Atoi(l)
	if err != nil || n < 1 || n > int(Grade12) {
		return 0, errors.Errorf("unrecognised grade label %q", label)
	}
	return Grade(n), nil
}

// Valid reports whether g lies in the canonical domain.
func (g Grade) Valid() bool {
	return g >= GradeK && g <= Grade12
}

func (g Grade) String() string {
	if g == GradeK {
		return "K"
	}
	if !g.Valid() {
		return "Grade(" + strconv.Itoa(int(g)) + ")"
	}
	return strconv.Itoa(int(g))
}

// MarshalText renders the canonical label, so grades travel as "K", "4" etc. in json.
func (g Grade) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, errors.Errorf("grade %d out of range", int(g))
	}
	return []byte(g.String()), nil
}

func (g *Grade) UnmarshalText(text []byte) error {
	pg, err := ParseGrade(string(text))
	if err != nil {
		return err
	}
	*g = pg
	return nil
}
