package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/phyloreport/internal/database"
	"github.com/nao1215/phyloreport/internal/model"
)

// readDatabase reads the analyses of a snapshot database. With a subject
// only that analysis is read.
func readDatabase(ctx context.Context, path, subject string) ([]*model.Analysis, error) {
	db, err := database.Open(path, database.ReadOnlyOptions())
	if err != nil {
		return nil, err
	}
	defer db.Close()

	subjects := []string{subject}
	if subject == "" {
		if subjects, err = db.Subjects(ctx); err != nil {
			return nil, err
		}
	}

	analyses := make([]*model.Analysis, 0, len(subjects))
	for _, s := range subjects {
		a, err := db.LoadAnalysis(ctx, s)
		if errors.Is(err, database.ErrSubjectNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrSubjectNotFound, s)
		}
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}
	return analyses, nil
}
