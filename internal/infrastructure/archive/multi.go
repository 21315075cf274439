package archive

import (
	"context"
	"errors"

	"github.com/wms/backend/internal/domain/report"
)

// Multi saves to every archive and joins their errors
type Multi []report.Archive

func (m Multi) Save(ctx context.Context, r report.DailyReport) error {
	var errs []error
	for _, a := range m {
		if err := a.Save(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ report.Archive = Multi(nil)
