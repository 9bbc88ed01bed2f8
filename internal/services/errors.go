package services

import (
	"errors"

	"labordash/internal/dashboard"
	"labordash/internal/dataset"
	apierrors "labordash/internal/errors"
)

// ErrNoTable is returned when the source yields no table at all
var ErrNoTable = errors.New("no table loaded")

// mapDataError translates data layer failures into API errors
func mapDataError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return err
	}

	var notFound *dataset.NotFoundError
	switch {
	case errors.As(err, &notFound):
		return apierrors.DataUnavailable(notFound.Error(), err)
	case errors.Is(err, dataset.ErrFileNotFound):
		return apierrors.DataUnavailable(err.Error(), err)
	case dataset.IsCorrupted(err):
		return apierrors.DataCorrupted(err.Error(), err)
	}

	var selErr *dashboard.SelectionError
	if errors.As(err, &selErr) {
		return apierrors.InvalidSelection(selErr.Field, selErr.Value)
	}

	return apierrors.NewInternalError("failed to prepare dashboard data", err)
}
