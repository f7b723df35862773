package pipeline

import (
	"fmt"

	"github.com/ahrav/go-gradebook/internal/domain"
)

// JoinMarks attaches each mark's test weight and course. A mark whose test
// does not exist fails the join. Test ids must be unique; ValidateTests
// guarantees that, and a repeat here is reported as an invariant violation.
func JoinMarks(marks []domain.Mark, tests []domain.Test) ([]domain.JoinedMark, error) {
	byID := make(map[int64]domain.Test, len(tests))
	for _, t := range tests {
		if _, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("%w: test id %d matches more than one test", domain.ErrInvariant, t.ID)
		}
		byID[t.ID] = t
	}

	joined := make([]domain.JoinedMark, 0, len(marks))
	for _, m := range marks {
		t, ok := byID[m.TestID]
		if !ok {
			return nil, &domain.ReferenceError{Kind: domain.ReferenceTest, ID: m.TestID}
		}
		joined = append(joined, domain.NewJoinedMark(m, t))
	}
	return joined, nil
}
