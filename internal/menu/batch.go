package menu

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pizzaro/pizzaro-backend/pkg/db"
	pkgerrors "github.com/pizzaro/pizzaro-backend/pkg/errors"
)

// BatchInput queues the menu editor's accumulated changes for a single atomic
// save: all of them land or none do. Products created in the batch may point
// at sections created in the same batch through SectionTempID.
type BatchInput struct {
	CreateSections []BatchSectionCreate
	UpdateSections map[int64]SectionInput
	DeleteSections []int64

	CreateProducts []ProductInput
	UpdateProducts map[int64]ProductInput
	DeleteProducts []int64
}

// BatchSectionCreate pairs a new section with the editor-local key products in
// the same batch use to reference it.
type BatchSectionCreate struct {
	TempID string
	SectionInput
}

// BatchResult reports the ids assigned during the batch.
type BatchResult struct {
	CreatedSectionIDs map[string]int64
	CreatedProductIDs []int64
}

// BatchSave applies the queued changes in one transaction, in the same order
// the editor applies them: section creates, section updates, section deletes,
// then product creates, updates, deletes.
func (s *service) BatchSave(ctx context.Context, input BatchInput) (*BatchResult, error) {
	if batchEmpty(input) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no pending changes")
	}

	result := &BatchResult{CreatedSectionIDs: map[string]int64{}}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		for _, create := range input.CreateSections {
			section, err := buildSection(create.SectionInput)
			if err != nil {
				return err
			}
			created, err := repo.CreateSection(ctx, section)
			if err != nil {
				return err
			}
			if create.TempID != "" {
				result.CreatedSectionIDs[create.TempID] = created.ID
			}
		}

		for id, update := range input.UpdateSections {
			section, err := buildSection(update)
			if err != nil {
				return err
			}
			section.ID = id
			if _, err := repo.UpdateSection(ctx, section); err != nil {
				return err
			}
		}

		for _, id := range input.DeleteSections {
			if err := repo.DeleteSection(ctx, id); err != nil {
				return err
			}
		}

		for _, create := range input.CreateProducts {
			sectionID := create.SectionID
			if create.SectionTempID != "" {
				resolved, ok := result.CreatedSectionIDs[create.SectionTempID]
				if !ok {
					return pkgerrors.New(pkgerrors.CodeValidation,
						fmt.Sprintf("unknown section reference %q", create.SectionTempID))
				}
				sectionID = resolved
			}
			if sectionID <= 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "section id is required")
			}

			product, err := buildProduct(create, sectionID)
			if err != nil {
				return err
			}
			created, err := repo.CreateProduct(ctx, product)
			if err != nil {
				return err
			}
			result.CreatedProductIDs = append(result.CreatedProductIDs, created.ID)
		}

		for id, update := range input.UpdateProducts {
			existing, err := repo.FindProductByID(ctx, id)
			if err != nil {
				return err
			}
			sectionID := update.SectionID
			if sectionID <= 0 {
				sectionID = existing.SectionID
			}
			product, err := buildProduct(update, sectionID)
			if err != nil {
				return err
			}
			product.ID = id
			if update.Position == nil {
				product.Position = existing.Position
			}
			if _, err := repo.UpdateProduct(ctx, product); err != nil {
				return err
			}
		}

		for _, id := range input.DeleteProducts {
			if err := repo.DeleteProduct(ctx, id); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "section slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply menu batch")
	}
	return result, nil
}

func batchEmpty(input BatchInput) bool {
	return len(input.CreateSections) == 0 &&
		len(input.UpdateSections) == 0 &&
		len(input.DeleteSections) == 0 &&
		len(input.CreateProducts) == 0 &&
		len(input.UpdateProducts) == 0 &&
		len(input.DeleteProducts) == 0
}
