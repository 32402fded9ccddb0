package sheet

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"dsa-tracker/internal/logging"
)

// Seeder is the repository surface needed to seed default sheets
type Seeder interface {
	ExistsDefault(ctx context.Context, title string) (bool, error)
	Create(ctx context.Context, title, description, sheetType string, problems []Problem) (*Sheet, error)
}

type defaultSheet struct {
	title       string
	description string
	problems    []Problem
}

func defaultSheets() []defaultSheet {
	return []defaultSheet{
		{
			title:       "Blind 75",
			description: "Curated list of 75 essential LeetCode problems",
			problems: []Problem{
				{ID: uuid.New(), Title: "Two Sum", Link: "https://leetcode.com/problems/two-sum/", Difficulty: DifficultyEasy, Topic: "Array"},
				{ID: uuid.New(), Title: "Best Time to Buy and Sell Stock", Link: "https://leetcode.com/problems/best-time-to-buy-and-sell-stock/", Difficulty: DifficultyEasy, Topic: "Array"},
				{ID: uuid.New(), Title: "Valid Parentheses", Link: "https://leetcode.com/problems/valid-parentheses/", Difficulty: DifficultyEasy, Topic: "Stack"},
			},
		},
		{
			title:       "Striver SDE Sheet",
			description: "Striver's SDE Sheet for interview preparation",
			problems: []Problem{
				{ID: uuid.New(), Title: "Set Matrix Zeroes", Link: "https://leetcode.com/problems/set-matrix-zeroes/", Difficulty: DifficultyMedium, Topic: "Array"},
				{ID: uuid.New(), Title: "Merge Intervals", Link: "https://leetcode.com/problems/merge-intervals/", Difficulty: DifficultyMedium, Topic: "Intervals"},
			},
		},
		{
			title:       "Java Revision",
			description: "Important Java DSA problems for quick revision",
			problems: []Problem{
				{ID: uuid.New(), Title: "Reverse Linked List", Link: "https://leetcode.com/problems/reverse-linked-list/", Difficulty: DifficultyEasy, Topic: "Linked List"},
				{ID: uuid.New(), Title: "LRU Cache", Link: "https://leetcode.com/problems/lru-cache/", Difficulty: DifficultyMedium, Topic: "Design"},
			},
		},
	}
}

// SeedDefaults inserts the built-in sheets that are missing from the
// catalog. Existing default sheets are left untouched, so the seed is
// safe to run on every boot.
func SeedDefaults(ctx context.Context, repo Seeder, logger *logging.Logger) error {
	for _, ds := range defaultSheets() {
		exists, err := repo.ExistsDefault(ctx, ds.title)
		if err != nil {
			return fmt.Errorf("failed to check default sheet %q: %w", ds.title, err)
		}
		if exists {
			continue
		}

		if _, err := repo.Create(ctx, ds.title, ds.description, TypeDefault, ds.problems); err != nil {
			return fmt.Errorf("failed to seed default sheet %q: %w", ds.title, err)
		}

		logger.Info("seeded default sheet", "title", ds.title)
	}

	return nil
}
