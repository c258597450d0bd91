package main

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	pgrepo "github.com/aliskhannn/hsk-trainer-bot/internal/infra/postgres/repository"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many words each HSK level has",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, cleanup, err := setup(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		counts, err := pgrepo.NewVocabularyRepository(e.pool).Count(ctx)
		if err != nil {
			return err
		}
		if len(counts) == 0 {
			cmd.Println("The vocabulary table is empty. Run vocabctl import first.")
			return nil
		}

		levels := lo.Keys(counts)
		sort.Ints(levels)
		for _, level := range levels {
			cmd.Println(fmt.Sprintf("HSK %d: %d words", level, counts[level]))
		}
		cmd.Println(fmt.Sprintf("Total: %d words", lo.Sum(lo.Values(counts))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
