package main

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aliskhannn/hsk-trainer-bot/internal/infra/postgres"
	pgrepo "github.com/aliskhannn/hsk-trainer-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/hsk-trainer-bot/internal/repository"
	"github.com/aliskhannn/hsk-trainer-bot/internal/service"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a JSON or YAML dataset into the vocabulary table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, cleanup, err := setup(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		path := importFile
		if path == "" {
			path = e.cfg.Vocabulary.Path
		}

		items, err := repository.LoadVocabulary(path)
		if err != nil {
			return err
		}

		if err := pgrepo.NewVocabularyRepository(e.pool).EnsureSchema(ctx); err != nil {
			return err
		}

		importer := service.NewImportService(
			postgres.NewTransactor(e.pool),
			func(tx pgx.Tx) service.VocabularyWriter {
				return pgrepo.NewVocabularyRepository(tx)
			},
		)

		n, err := importer.Import(ctx, items)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}

		e.log.Info("vocabulary imported", zap.String("file", path), zap.Int("items", n))
		cmd.Printf("Imported %d items from %s\n", n, path)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "dataset to import (default: vocabulary.path from config)")
	rootCmd.AddCommand(importCmd)
}
